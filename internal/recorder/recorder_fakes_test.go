package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rbright/kikitori/internal/failure"
)

type stubPlatform struct {
	supported  map[string]bool
	acquireErr error
	encodeErr  error
	finishErr  error
	substitute string
	fragments  [][]byte

	acquires atomic.Int32
	releases atomic.Int32

	mu       sync.Mutex
	encoders []*stubEncoder
}

func (p *stubPlatform) Acquire(context.Context) (Device, error) {
	p.acquires.Add(1)
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return &stubDevice{platform: p}, nil
}

func (p *stubPlatform) Supports(mimeType string) bool {
	return p.supported[mimeType]
}

func (p *stubPlatform) lastEncoder() *stubEncoder {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.encoders) == 0 {
		return nil
	}
	return p.encoders[len(p.encoders)-1]
}

type stubDevice struct {
	platform *stubPlatform
}

func (*stubDevice) Name() string { return "stub mic" }

func (d *stubDevice) Encode(mimeType string) (Encoder, error) {
	if d.platform.encodeErr != nil {
		return nil, d.platform.encodeErr
	}
	if d.platform.substitute != "" {
		mimeType = d.platform.substitute
	}
	enc := &stubEncoder{
		mimeType:  mimeType,
		ch:        make(chan []byte, 16),
		fragments: d.platform.fragments,
		finishErr: d.platform.finishErr,
	}
	d.platform.mu.Lock()
	d.platform.encoders = append(d.platform.encoders, enc)
	d.platform.mu.Unlock()
	return enc, nil
}

func (d *stubDevice) Release() error {
	d.platform.releases.Add(1)
	return nil
}

type stubEncoder struct {
	mimeType  string
	ch        chan []byte
	fragments [][]byte
	finishErr error
	finished  atomic.Int32
	once      sync.Once
}

func (e *stubEncoder) Fragments() <-chan []byte { return e.ch }
func (e *stubEncoder) MIMEType() string         { return e.mimeType }

func (e *stubEncoder) push(fragment []byte) {
	e.ch <- fragment
}

func (e *stubEncoder) Finish(context.Context) error {
	e.finished.Add(1)
	e.once.Do(func() {
		for _, fragment := range e.fragments {
			e.ch <- fragment
		}
		close(e.ch)
	})
	return e.finishErr
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) DeviceFailed(_ context.Context, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, fmt.Sprintf("%s: %v", failure.KindOf(err), err))
}

var errPermissionDenied = errors.New("permission denied")
