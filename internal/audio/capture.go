package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000
	// Channels is the capture channel count.
	Channels = 1

	fragmentSizeBytes = 640 // 20ms @ 16kHz mono s16
)

// Capture accumulates one dictation take of s16le PCM from a Pulse source.
// It is the io.Writer handed to the Pulse record stream.
type Capture struct {
	source Source

	client *pulse.Client
	stream *pulse.RecordStream
	detach func() bool

	mu       sync.Mutex
	take     bytes.Buffer
	accepted int64
	closed   bool
}

// StartCapture opens a record stream on src and keeps it running until Stop
// is called or ctx ends.
func StartCapture(ctx context.Context, src Source) (*Capture, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}

	target, err := client.SourceByID(src.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", src.ID, err)
	}

	capture := &Capture{source: src, client: client}
	stream, err := client.NewRecord(
		pulse.NewWriter(capture, pulseproto.FormatInt16LE),
		pulse.RecordSource(target),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("kikitori dictation"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture.mu.Lock()
	capture.stream = stream
	stream.Start()
	capture.detach = context.AfterFunc(ctx, func() { _ = capture.Stop() })
	capture.mu.Unlock()

	return capture, nil
}

// Source returns the source being captured.
func (c *Capture) Source() Source {
	return c.source
}

// BytesCaptured reports how many PCM bytes the take has accepted, including
// any later discarded.
func (c *Capture) BytesCaptured() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted
}

// PCM returns a copy of the take so far.
func (c *Capture) PCM() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.take.Bytes())
}

// Stop ends the take and releases the Pulse connection. Later calls are no-ops.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	stream, client, detach := c.stream, c.client, c.detach
	c.mu.Unlock()

	if detach != nil {
		detach()
	}
	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	if client != nil {
		client.Close()
	}
	return nil
}

// Discard drops the buffered take, e.g. after a cancelled dictation.
func (c *Capture) Discard() {
	c.mu.Lock()
	c.take.Reset()
	c.mu.Unlock()
}

// Write appends one Pulse fragment. Once the take is stopped it reports
// io.EOF so the stream stops delivering.
func (c *Capture) Write(fragment []byte) (int, error) {
	if len(fragment) == 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, io.EOF
	}
	c.take.Write(fragment)
	c.accepted += int64(len(fragment))
	return len(fragment), nil
}
