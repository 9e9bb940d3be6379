package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// credentialShaped matches values that look like an API key rather than a variable name.
var credentialShaped = regexp.MustCompile(`^(AIza[0-9A-Za-z_\-]{20,}|sk-[0-9A-Za-z_\-]{16,})$`)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	switch cfg.Backend.Provider {
	case ProviderGemini, ProviderOpenAI:
	case "":
		return nil, fmt.Errorf("backend.provider must not be empty")
	default:
		return nil, fmt.Errorf("backend.provider must be one of: %s, %s", ProviderGemini, ProviderOpenAI)
	}
	if cfg.Backend.TimeoutMS < 0 {
		return nil, fmt.Errorf("backend.timeout_ms must be >= 0")
	}
	if raw := cfg.Backend.BaseURL; raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("backend.base_url must be an absolute URL")
		}
		if parsed.Scheme != "https" && !isLoopback(parsed.Hostname()) {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("backend.base_url %q is not https; the credential will be sent in clear text", raw)})
		}
	}
	if credentialShaped.MatchString(cfg.Backend.APIKeyEnv) {
		return nil, fmt.Errorf("backend.api_key_env must name an environment variable, not contain the key itself")
	}
	if cfg.Backend.TimeoutMS == 0 {
		warnings = append(warnings, Warning{Message: "backend.timeout_ms=0 disables the transcription timeout"})
	}

	if len(cfg.Audio.Formats) == 0 {
		return nil, fmt.Errorf("audio.formats must list at least one container")
	}
	for _, format := range cfg.Audio.Formats {
		if !strings.HasPrefix(format, "audio/") {
			return nil, fmt.Errorf("audio.formats entry %q must be an audio/* MIME type", format)
		}
	}

	switch cfg.Indicator.Backend {
	case IndicatorHypr, IndicatorDesktop:
	case "":
		return nil, fmt.Errorf("indicator.backend must not be empty")
	default:
		return nil, fmt.Errorf("indicator.backend must be one of: %s, %s", IndicatorHypr, IndicatorDesktop)
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if cfg.Clipboard.Raw != "" && len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd is configured but empty")
	}
	if cfg.Paste.Enable && cfg.PasteCmd.Raw != "" && len(cfg.PasteCmd.Argv) == 0 {
		return nil, fmt.Errorf("paste_cmd is configured but empty")
	}
	if cfg.Paste.Enable && len(cfg.PasteCmd.Argv) == 0 && strings.TrimSpace(cfg.Paste.Shortcut) == "" {
		return nil, fmt.Errorf("paste.shortcut must not be empty when paste.enable=true and paste_cmd is unset")
	}

	if cfg.Debug.EnableAudioDump {
		warnings = append(warnings, Warning{Message: "debug.audio_dump is enabled; recordings are written to the state directory"})
	}

	return warnings, nil
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
