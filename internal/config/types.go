// Package config resolves, parses, validates, and defaults kikitori configuration.
package config

// Config is the fully materialized runtime configuration.
type Config struct {
	Audio      AudioConfig
	Backend    BackendConfig
	Transcribe TranscribeConfig
	Paste      PasteConfig
	Indicator  IndicatorConfig
	Clipboard  CommandConfig
	PasteCmd   CommandConfig
	Debug      DebugConfig
}

// AudioConfig controls input-source selection and container preference.
type AudioConfig struct {
	Input    string
	Fallback string
	Formats  []string
}

// Backend providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// BackendConfig selects and addresses the transcription backend.
// The credential itself is never stored here; only the variable naming it.
type BackendConfig struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKeyEnv string
	TimeoutMS int
}

// TranscribeConfig controls the request sent with each artifact.
type TranscribeConfig struct {
	Instruction string
}

// PasteConfig controls post-commit paste behavior.
type PasteConfig struct {
	Enable   bool
	Shortcut string
}

// Indicator backends.
const (
	IndicatorHypr    = "hypr"
	IndicatorDesktop = "desktop"
)

// IndicatorConfig controls the on-screen notice and the synthesized cues.
// ErrorTimeoutMS is the base display time for failure notices.
type IndicatorConfig struct {
	Enable         bool
	Backend        string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
