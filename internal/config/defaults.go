package config

import "strings"

const (
	defaultGeminiKeyEnv = "GOOGLE_API_KEY"
	defaultOpenAIKeyEnv = "OPENAI_API_KEY"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
			Formats:  []string{"audio/webm", "audio/mp4", "audio/wav"},
		},
		Backend: BackendConfig{
			Provider:  ProviderGemini,
			TimeoutMS: 120000,
		},
		Paste: PasteConfig{Enable: true, Shortcut: "CTRL,V"},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        IndicatorHypr,
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
	}
}

// KeyEnv returns the environment variable holding the credential,
// defaulting by provider when api_key_env is unset.
func (b BackendConfig) KeyEnv() string {
	if env := strings.TrimSpace(b.APIKeyEnv); env != "" {
		return env
	}
	if strings.EqualFold(strings.TrimSpace(b.Provider), ProviderOpenAI) {
		return defaultOpenAIKeyEnv
	}
	return defaultGeminiKeyEnv
}
