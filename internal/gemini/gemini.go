// Package gemini implements the default transcription backend on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/transcribe"
)

const (
	// DefaultModel is the generative model used for transcription.
	DefaultModel = "gemini-3-pro-preview"
	// APIVersion is the Gemini API surface the model is served from.
	APIVersion = "v1beta"
)

// Backend issues one generateContent call per invocation.
type Backend struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a backend for model, falling back to DefaultModel.
func New(model, baseURL string) *Backend {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Backend{Model: model, BaseURL: baseURL}
}

// Generate sends the instruction and inline audio as a single user turn.
func (b *Backend) Generate(ctx context.Context, inv transcribe.Invocation) (string, error) {
	data, err := inv.Audio.Decode()
	if err != nil {
		return "", failure.Wrap(failure.EncodingError, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     inv.Credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: b.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    b.BaseURL,
			APIVersion: APIVersion,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(inv.Instruction),
			genai.NewPartFromBytes(data, inv.Audio.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, b.model(), contents, nil)
	if err != nil {
		return "", describe(err)
	}
	if err := blocked(resp); err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (b *Backend) model() string {
	if b.Model == "" {
		return DefaultModel
	}
	return b.Model
}

// blocked reports a refused prompt or a candidate that ended without a usable answer.
func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return failure.New(failure.BackendError, "gemini returned an empty response")
	}
	if feedback := resp.PromptFeedback; feedback != nil && feedback.BlockReason != "" {
		return failure.New(failure.BackendError, withDetail(
			fmt.Sprintf("gemini blocked the request: %s", feedback.BlockReason),
			feedback.BlockReasonMessage,
		))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return failure.New(failure.BackendError, "gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop, genai.FinishReasonMaxTokens:
		return nil
	}
	return failure.New(failure.BackendError, withDetail(
		fmt.Sprintf("gemini stopped the response: %s", candidate.FinishReason),
		candidate.FinishMessage,
	))
}

func withDetail(message, detail string) string {
	if detail = strings.TrimSpace(detail); detail != "" {
		return message + " (" + detail + ")"
	}
	return message
}

// describe keeps the service's own message when the API reported one.
func describe(err error) error {
	if apiErr, ok := asAPIError(err); ok && apiErr.Message != "" {
		return &failure.Error{
			Kind:    failure.BackendError,
			Message: fmt.Sprintf("gemini %d: %s", apiErr.Code, apiErr.Message),
			Err:     err,
		}
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

// asAPIError matches both the value and pointer forms the SDK may return.
func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}
