// Package whisper implements a transcription backend on the OpenAI audio API.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/transcribe"
)

// DefaultModel is the OpenAI transcription model.
const DefaultModel = openai.Whisper1

// Backend issues one transcription request per invocation.
type Backend struct {
	Model   string
	BaseURL string
}

// New returns a backend for model, falling back to DefaultModel.
func New(model, baseURL string) *Backend {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Backend{Model: model, BaseURL: baseURL}
}

// Generate uploads the audio with the instruction as the transcription prompt.
func (b *Backend) Generate(ctx context.Context, inv transcribe.Invocation) (string, error) {
	data, err := inv.Audio.Decode()
	if err != nil {
		return "", failure.Wrap(failure.EncodingError, err)
	}

	cfg := openai.DefaultConfig(inv.Credential)
	if b.BaseURL != "" {
		cfg.BaseURL = b.BaseURL
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.Model,
		FilePath: "recording" + Extension(inv.Audio.MIMEType),
		Reader:   bytes.NewReader(data),
		Prompt:   inv.Instruction,
	})
	if err != nil {
		return "", describe(err)
	}
	return resp.Text, nil
}

// Extension maps a container MIME type to the file extension the API expects.
func Extension(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		base = mimeType
	}
	if m := mimetype.Lookup(base); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if _, sub, ok := strings.Cut(base, "/"); ok && sub != "" {
		return "." + strings.TrimPrefix(sub, "x-")
	}
	return ".wav"
}

func describe(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &failure.Error{
			Kind:    failure.BackendError,
			Message: fmt.Sprintf("openai %d: %s", apiErr.HTTPStatusCode, apiErr.Message),
			Err:     err,
		}
	}
	return fmt.Errorf("openai create transcription: %w", err)
}
