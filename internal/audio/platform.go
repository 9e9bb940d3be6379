package audio

import (
	"context"
	"log/slog"

	"github.com/rbright/kikitori/internal/recorder"
)

// Platform captures from Pulse sources chosen by audio.input/audio.fallback.
type Platform struct {
	Input    string
	Fallback string
	Logger   *slog.Logger
}

// Acquire selects a source and starts capturing from it.
func (p *Platform) Acquire(ctx context.Context) (recorder.Device, error) {
	selection, err := SelectSource(ctx, p.Input, p.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && p.Logger != nil {
		p.Logger.Warn("audio source fallback", "warning", selection.Warning)
	}

	// The stream lives until Release, not until the acquiring request returns.
	capture, err := StartCapture(context.WithoutCancel(ctx), selection.Source)
	if err != nil {
		return nil, err
	}
	return &pulseDevice{capture: capture}, nil
}

// Supports reports whether mimeType can be produced without substitution.
func (p *Platform) Supports(mimeType string) bool {
	return mimeType == MIMEWAV
}

type pulseDevice struct {
	capture *Capture
}

func (d *pulseDevice) Name() string {
	src := d.capture.Source()
	if src.Description != "" {
		return src.Description
	}
	return src.ID
}

// Encode always produces WAV; other requested containers are substituted.
func (d *pulseDevice) Encode(string) (recorder.Encoder, error) {
	return newWAVEncoder(d.capture, SampleRate, Channels), nil
}

func (d *pulseDevice) Release() error {
	err := d.capture.Stop()
	d.capture.Discard()
	return err
}
