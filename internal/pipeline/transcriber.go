// Package pipeline wires the recorder, transcription client, and runtime
// config into the session-facing Transcriber.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rbright/kikitori/internal/audio"
	"github.com/rbright/kikitori/internal/config"
	"github.com/rbright/kikitori/internal/recorder"
	"github.com/rbright/kikitori/internal/session"
	"github.com/rbright/kikitori/internal/transcribe"
)

// Option customizes a Transcriber.
type Option func(*Transcriber)

// WithPlatform replaces the PulseAudio capture platform.
func WithPlatform(platform recorder.Platform) Option {
	return func(t *Transcriber) { t.platform = platform }
}

// WithBackend replaces the backend chosen from backend.provider.
func WithBackend(backend transcribe.Backend) Option {
	return func(t *Transcriber) { t.backend = backend }
}

// WithNotifier routes capture notices (microphone denied) to notifier.
func WithNotifier(notifier recorder.Notifier) Option {
	return func(t *Transcriber) { t.notifier = notifier }
}

// WithCredential replaces the environment lookup of the backend credential.
func WithCredential(lookup func() string) Option {
	return func(t *Transcriber) { t.credential = lookup }
}

// Transcriber owns one recorder and forwards each finished artifact to the
// transcription client exactly once.
type Transcriber struct {
	cfg    config.Config
	logger *slog.Logger

	platform   recorder.Platform
	backend    transcribe.Backend
	notifier   recorder.Notifier
	credential func() string

	recorder *recorder.Recorder
	client   *transcribe.Client
}

// NewTranscriber constructs a pipeline transcriber from runtime config.
func NewTranscriber(cfg config.Config, logger *slog.Logger, opts ...Option) (*Transcriber, error) {
	t := &Transcriber{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(t)
	}

	if t.platform == nil {
		t.platform = &audio.Platform{
			Input:    cfg.Audio.Input,
			Fallback: cfg.Audio.Fallback,
			Logger:   logger,
		}
	}
	if t.backend == nil {
		backend, err := NewBackend(cfg.Backend)
		if err != nil {
			return nil, err
		}
		t.backend = backend
	}
	if t.credential == nil {
		t.credential = func() string { return config.Credential(cfg) }
	}

	t.recorder = recorder.New(
		t.platform,
		recorder.WithLogger(logger),
		recorder.WithNotifier(t.notifier),
		recorder.WithPreferences(cfg.Audio.Formats),
	)
	t.client = transcribe.NewClient(t.backend, logger)
	return t, nil
}

// Start acquires the microphone and begins recording.
func (t *Transcriber) Start(ctx context.Context) error {
	return t.recorder.Start(ctx)
}

// StopAndTranscribe finalizes the recording and transcribes its artifact.
func (t *Transcriber) StopAndTranscribe(ctx context.Context) (session.StopResult, error) {
	artifact, err := t.recorder.Stop(ctx)
	result := session.StopResult{
		AudioDevice:    t.recorder.DeviceName(),
		MIMEType:       artifact.MIMEType,
		BytesCaptured:  int64(len(artifact.Data)),
		ElapsedSeconds: t.recorder.Elapsed(),
	}
	if err != nil {
		if errors.Is(err, recorder.ErrNotRecording) {
			return result, session.ErrPipelineUnavailable
		}
		return result, err
	}

	t.writeDebugArtifact(artifact)

	text, latency, err := t.TranscribeArtifact(ctx, artifact)
	result.BackendLatency = latency
	if err != nil {
		return result, err
	}
	result.Transcript = text
	return result, nil
}

// TranscribeArtifact sends one artifact with the configured credential,
// instruction, and timeout.
func (t *Transcriber) TranscribeArtifact(ctx context.Context, artifact recorder.Artifact) (string, time.Duration, error) {
	if timeout := t.cfg.Backend.TimeoutMS; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
		defer cancel()
	}

	started := time.Now()
	text, err := t.client.Transcribe(ctx, transcribe.Request{
		Credential:  t.credential(),
		Artifact:    artifact,
		Instruction: t.cfg.Transcribe.Instruction,
	})
	return text, time.Since(started), err
}

// Cancel discards the active recording. Cancelling while idle is not an error.
func (t *Transcriber) Cancel(context.Context) error {
	if err := t.recorder.Cancel(); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
		return err
	}
	return nil
}

// Elapsed returns whole seconds recorded in the current session.
func (t *Transcriber) Elapsed() int {
	return t.recorder.Elapsed()
}

// Close releases any held device.
func (t *Transcriber) Close() error {
	return t.recorder.Close()
}

func (t *Transcriber) logWarn(message string, args ...any) {
	if t.logger == nil {
		return
	}
	t.logger.Warn(message, args...)
}
