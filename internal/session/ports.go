package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPipelineUnavailable means the controller has nothing to record with.
	ErrPipelineUnavailable = errors.New("recording and transcription pipeline not configured")
	// ErrEmptyTranscript means the backend heard no speech.
	ErrEmptyTranscript = errors.New("no speech recognized; check microphone input or mute state")
)

// Transcriber records one take and turns it into text.
type Transcriber interface {
	Start(context.Context) error
	StopAndTranscribe(context.Context) (StopResult, error)
	Cancel(context.Context) error
	// Elapsed is the whole seconds recorded so far.
	Elapsed() int
}

// StopResult is what one finished take produced.
type StopResult struct {
	Transcript     string
	AudioDevice    string
	MIMEType       string
	BytesCaptured  int64
	ElapsedSeconds int
	BackendLatency time.Duration
}

// Committer hands a transcript to the user, unmodified.
type Committer interface {
	Commit(context.Context, string) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(context.Context, string) error

func (f CommitFunc) Commit(ctx context.Context, transcript string) error {
	return f(ctx, transcript)
}

// unwired stands in for a missing Transcriber and refuses to record.
type unwired struct{}

func (unwired) Start(context.Context) error { return ErrPipelineUnavailable }

func (unwired) StopAndTranscribe(context.Context) (StopResult, error) {
	return StopResult{}, ErrPipelineUnavailable
}

func (unwired) Cancel(context.Context) error { return nil }

func (unwired) Elapsed() int { return 0 }
