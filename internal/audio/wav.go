package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// MIMEWAV is the only container the Pulse platform encodes natively.
const MIMEWAV = "audio/wav"

// EncodeWAV wraps s16le PCM in a RIFF/WAVE container without touching disk.
func EncodeWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	out := &memFile{}
	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samplesFromPCM(pcm),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav header: %w", err)
	}
	return out.data, nil
}

// memFile is the io.WriteSeeker the encoder needs to patch chunk sizes.
type memFile struct {
	data []byte
	pos  int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	n := copy(m.data[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.pos)
	case io.SeekEnd:
		base = int64(len(m.data))
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("seek: negative position %d", next)
	}
	m.pos = int(next)
	return next, nil
}

func samplesFromPCM(pcm []byte) []int {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return samples
}

// pcmSource is the part of Capture the encoder depends on.
type pcmSource interface {
	Stop() error
	PCM() []byte
}

// wavEncoder buffers the whole take and emits one WAV fragment on Finish.
type wavEncoder struct {
	source     pcmSource
	sampleRate int
	channels   int

	fragments chan []byte
	once      sync.Once
	err       error
}

func newWAVEncoder(source pcmSource, sampleRate, channels int) *wavEncoder {
	return &wavEncoder{
		source:     source,
		sampleRate: sampleRate,
		channels:   channels,
		fragments:  make(chan []byte, 1),
	}
}

func (e *wavEncoder) Fragments() <-chan []byte { return e.fragments }

func (e *wavEncoder) MIMEType() string { return MIMEWAV }

func (e *wavEncoder) Finish(_ context.Context) error {
	e.once.Do(func() {
		defer close(e.fragments)

		if err := e.source.Stop(); err != nil {
			e.err = fmt.Errorf("stop capture: %w", err)
			return
		}
		data, err := EncodeWAV(e.source.PCM(), e.sampleRate, e.channels)
		if err != nil {
			e.err = err
			return
		}
		e.fragments <- data
	})
	return e.err
}
