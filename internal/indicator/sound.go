package indicator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
)

type cue int

const (
	cueStart cue = iota + 1
	cueStop
	cueComplete
	cueCancel
	cueFailure
)

const (
	cueRate    = 16000
	cueVolume  = 0.2
	noteGap    = 20 * time.Millisecond
	rampLength = 5 * time.Millisecond
)

// note is one sine tone within a cue.
type note struct {
	hz     float64
	length time.Duration
}

// Rising cues mark the start and success of an attempt, falling ones its end
// without a transcript.
var cueNotes = map[cue][]note{
	cueStart:    {{hz: 660, length: 70 * time.Millisecond}, {hz: 990, length: 70 * time.Millisecond}},
	cueStop:     {{hz: 740, length: 110 * time.Millisecond}},
	cueComplete: {{hz: 784, length: 60 * time.Millisecond}, {hz: 1047, length: 90 * time.Millisecond}},
	cueCancel:   {{hz: 523, length: 70 * time.Millisecond}, {hz: 392, length: 90 * time.Millisecond}},
	cueFailure:  {{hz: 311, length: 110 * time.Millisecond}, {hz: 233, length: 160 * time.Millisecond}},
}

// cuePlayer plays cues one at a time off the caller's goroutine.
type cuePlayer struct {
	enabled bool
	output  func([]int16) error
	onError func(error)

	mu sync.Mutex
}

func newCuePlayer(enabled bool, onError func(error)) *cuePlayer {
	return &cuePlayer{enabled: enabled, output: playPulse, onError: onError}
}

func (p *cuePlayer) play(kind cue) {
	if p == nil || !p.enabled {
		return
	}
	notes, ok := cueNotes[kind]
	if !ok {
		return
	}
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.output(render(notes)); err != nil && p.onError != nil {
			p.onError(err)
		}
	}()
}

// render turns notes into mono s16 samples separated by short silences.
func render(notes []note) []int16 {
	var pcm []int16
	for i, n := range notes {
		if i > 0 {
			pcm = append(pcm, make([]int16, sampleCount(noteGap))...)
		}
		pcm = append(pcm, tone(n)...)
	}
	return pcm
}

// tone ramps in and out linearly so the speaker does not click.
func tone(n note) []int16 {
	count := sampleCount(n.length)
	if count == 0 || n.hz <= 0 {
		return nil
	}
	ramp := min(sampleCount(rampLength), count/2)

	out := make([]int16, count)
	for i := range out {
		gain := cueVolume
		if edge := min(i, count-1-i); edge < ramp {
			gain *= float64(edge) / float64(ramp)
		}
		phase := 2 * math.Pi * n.hz * float64(i) / cueRate
		out[i] = int16(math.Round(math.Sin(phase) * gain * math.MaxInt16))
	}
	return out
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueRate))
}

// playPulse blocks until samples have drained through the default sink.
func playPulse(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(notifyTitle),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect to pulse: %w", err)
	}
	defer client.Close()

	remaining := samples
	source := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, remaining)
		remaining = remaining[n:]
		if len(remaining) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(source,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("kikitori cue"),
	)
	if err != nil {
		return fmt.Errorf("open cue playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}
