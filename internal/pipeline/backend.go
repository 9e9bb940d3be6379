package pipeline

import (
	"fmt"

	"github.com/rbright/kikitori/internal/config"
	"github.com/rbright/kikitori/internal/gemini"
	"github.com/rbright/kikitori/internal/transcribe"
	"github.com/rbright/kikitori/internal/whisper"
)

// NewBackend returns the transcription backend named by backend.provider.
func NewBackend(cfg config.BackendConfig) (transcribe.Backend, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return gemini.New(cfg.Model, cfg.BaseURL), nil
	case config.ProviderOpenAI:
		return whisper.New(cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported backend provider %q", cfg.Provider)
	}
}
