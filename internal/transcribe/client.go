// Package transcribe sends one finalized audio artifact to a generative
// backend and returns its text verbatim.
package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/recorder"
)

// DefaultInstruction is sent whenever the caller leaves the instruction blank.
// Its wording is part of the backend contract; do not paraphrase it.
const DefaultInstruction = `あなたは専門用語の速記者です。
余計なボケやツッコミ、論評をかまさずに、その専門分野のターミノロジーを踏まえて、一字一句そのまま文字起こししてください。
コメントや解説、要約は一切不要です。音声の内容をそのまま正確に書き起こしてください。`

const missingCredentialMessage = "API key is required for transcription"

// InlineAudio is the transport-encoded artifact: standard base64 text plus its container tag.
type InlineAudio struct {
	MIMEType string
	Data     string
}

// Invocation is the single backend call built for one request.
type Invocation struct {
	Credential  string
	Instruction string
	Audio       InlineAudio
}

// Backend performs one content-generation call and returns the response text.
type Backend interface {
	Generate(ctx context.Context, inv Invocation) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, inv Invocation) (string, error)

// Generate calls f.
func (f BackendFunc) Generate(ctx context.Context, inv Invocation) (string, error) {
	return f(ctx, inv)
}

// Request is one transcription attempt.
type Request struct {
	Credential  string
	Artifact    recorder.Artifact
	Instruction string
}

// Client validates, encodes, and forwards requests to a Backend.
type Client struct {
	backend Backend
	logger  *slog.Logger
}

// NewClient builds a Client over backend.
func NewClient(backend Backend, logger *slog.Logger) *Client {
	return &Client{backend: backend, logger: logger}
}

// Transcribe converts req into text. Errors are always *failure.Error.
func (c *Client) Transcribe(ctx context.Context, req Request) (string, error) {
	if req.Credential == "" {
		return "", failure.New(failure.MissingCredential, missingCredentialMessage)
	}

	audio, err := Encode(req.Artifact)
	if err != nil {
		return "", err
	}

	inv := Invocation{
		Credential:  req.Credential,
		Instruction: ResolveInstruction(req.Instruction),
		Audio:       audio,
	}

	c.log("transcription request",
		"credential_set", true,
		"mime_type", audio.MIMEType,
		"bytes", len(req.Artifact.Data),
		"custom_instruction", inv.Instruction != DefaultInstruction,
	)

	started := time.Now()
	text, err := c.backend.Generate(ctx, inv)
	latency := time.Since(started)
	if err != nil {
		c.log("transcription failed", "latency_ms", latency.Milliseconds(), "error", err.Error())
		return "", backendFailure(err)
	}

	c.log("transcription completed", "latency_ms", latency.Milliseconds(), "chars", len(text))
	return text, nil
}

// ResolveInstruction trims instruction and substitutes DefaultInstruction when blank.
func ResolveInstruction(instruction string) string {
	if trimmed := strings.TrimSpace(instruction); trimmed != "" {
		return trimmed
	}
	return DefaultInstruction
}

// backendFailure keeps a backend's own classification and labels the rest BackendError.
func backendFailure(err error) error {
	var ferr *failure.Error
	if errors.As(err, &ferr) {
		return ferr
	}
	return failure.Wrap(failure.BackendError, err)
}

func (c *Client) log(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, args...)
}
