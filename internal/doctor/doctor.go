// Package doctor runs runtime readiness diagnostics for config, tools, audio, and the backend.
package doctor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/rbright/kikitori/internal/audio"
	"github.com/rbright/kikitori/internal/config"
)

var defaultEndpoints = map[string]string{
	config.ProviderGemini: "https://generativelanguage.googleapis.com/",
	config.ProviderOpenAI: "https://api.openai.com/v1",
}

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))

	if len(cfg.Config.Clipboard.Argv) > 0 {
		checks = append(checks, checkCommand(cfg.Config.Clipboard.Argv, "clipboard_cmd"))
	} else {
		checks = append(checks, checkSystemClipboard())
	}

	var hyprctlUsers []string
	if cfg.Config.Paste.Enable {
		if len(cfg.Config.PasteCmd.Argv) > 0 {
			checks = append(checks, checkCommand(cfg.Config.PasteCmd.Argv, "paste_cmd"))
		} else {
			hyprctlUsers = append(hyprctlUsers, "default paste")
		}
	}
	if cfg.Config.Indicator.Enable && cfg.Config.Indicator.Backend == config.IndicatorHypr {
		hyprctlUsers = append(hyprctlUsers, "hypr indicator")
	}
	if len(hyprctlUsers) > 0 {
		checks = append(checks, checkBinary("hyprctl", "used by "+strings.Join(hyprctlUsers, " and ")))
	}

	checks = append(checks, checkCredential(cfg.Config))
	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkBackendEndpoint(cfg.Config))

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkSystemClipboard reports whether atotto/clipboard found a clipboard tool.
func checkSystemClipboard() Check {
	if clipboard.Unsupported {
		return Check{Name: "clipboard", Pass: false, Message: "no system clipboard utility found; set clipboard_cmd"}
	}
	return Check{Name: "clipboard", Pass: true, Message: "system clipboard available"}
}

// checkCredential reports whether the credential variable is set. The value
// is never printed.
func checkCredential(cfg config.Config) Check {
	env := cfg.Backend.KeyEnv()
	if config.Credential(cfg) == "" {
		return Check{Name: "backend.credential", Pass: false, Message: fmt.Sprintf("%s is not set", env)}
	}
	return Check{Name: "backend.credential", Pass: true, Message: fmt.Sprintf("%s is set", env)}
}

// checkAudioSelection runs live source selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectSource(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.source", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Source.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.source", Pass: true, Message: message}
}

// checkBackendEndpoint confirms the backend host answers HTTP at all.
// Any status counts as reachable; only transport failures fail the check.
func checkBackendEndpoint(cfg config.Config) Check {
	name := fmt.Sprintf("backend.%s", cfg.Backend.Provider)
	endpoint := strings.TrimSpace(cfg.Backend.BaseURL)
	if endpoint == "" {
		endpoint = defaultEndpoints[cfg.Backend.Provider]
	}
	if endpoint == "" {
		return Check{Name: name, Pass: false, Message: "no endpoint for provider"}
	}

	client := http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(endpoint)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	return Check{Name: name, Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, endpoint)}
}
