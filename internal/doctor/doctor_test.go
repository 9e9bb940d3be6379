package doctor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/kikitori/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "wayland")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.EqualFold(v, "wayland") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "clipboard_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-bin")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-bin", "--arg"}, "clipboard_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "clipboard_cmd command is available")
}

func TestCheckBackendEndpointAnyStatusIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Backend.BaseURL = server.URL

	check := checkBackendEndpoint(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "backend.gemini", check.Name)
	require.Contains(t, check.Message, "HTTP 404")
}

func TestCheckBackendEndpointTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	cfg := config.Default()
	cfg.Backend.Provider = config.ProviderOpenAI
	cfg.Backend.BaseURL = url

	check := checkBackendEndpoint(cfg)
	require.False(t, check.Pass)
	require.Equal(t, "backend.openai", check.Name)
	require.Contains(t, check.Message, "request failed")
}

func TestCheckBackendEndpointUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Provider = "deepgram"

	check := checkBackendEndpoint(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no endpoint")
}

func TestCheckCredentialNeverPrintsValue(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.APIKeyEnv = "KIKITORI_DOCTOR_KEY"

	t.Setenv("KIKITORI_DOCTOR_KEY", "super-secret-value")
	check := checkCredential(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "KIKITORI_DOCTOR_KEY is set", check.Message)
	require.NotContains(t, check.Message, "super-secret-value")

	t.Setenv("KIKITORI_DOCTOR_KEY", " ")
	check = checkCredential(cfg)
	require.False(t, check.Pass)
	require.Equal(t, "KIKITORI_DOCTOR_KEY is not set", check.Message)
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(config.Default())
	require.False(t, check.Pass)
	require.Equal(t, "audio.source", check.Name)
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestRunUsesPasteCmdOverrideCheck(t *testing.T) {
	binDir := t.TempDir()
	fakePaste := filepath.Join(binDir, "fake-paste")
	require.NoError(t, os.WriteFile(fakePaste, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")

	cfg := config.Default()
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{Raw: fakePaste, Argv: []string{"fake-paste"}}
	cfg.Indicator.Backend = config.IndicatorDesktop
	cfg.Backend.BaseURL = "http://127.0.0.1:1"

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.NotEmpty(t, report.Checks)

	var sawPasteCmd, sawHypr bool
	for _, check := range report.Checks {
		if check.Name == "fake-paste" {
			sawPasteCmd = true
		}
		if check.Name == "hyprctl" {
			sawHypr = true
		}
	}
	require.True(t, sawPasteCmd)
	require.False(t, sawHypr)
}

func TestRunUsesHyprctlWhenPasteCmdUnset(t *testing.T) {
	binDir := t.TempDir()
	fakeHypr := filepath.Join(binDir, "hyprctl")
	require.NoError(t, os.WriteFile(fakeHypr, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")

	cfg := config.Default()
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{}
	cfg.Backend.BaseURL = "http://127.0.0.1:1"

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg, Exists: true})
	require.NotEmpty(t, report.Checks)
	require.Equal(t, `loaded "/tmp/config.jsonc"`, report.Checks[0].Message)

	hyprctl := findCheck(t, report, "hyprctl")
	require.True(t, hyprctl.Pass)
	require.Contains(t, hyprctl.Message, "used by default paste and hypr indicator")
}

func TestRunChecksHyprctlForIndicatorAlone(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	cfg := config.Default()
	cfg.Paste.Enable = false
	cfg.Backend.BaseURL = "http://127.0.0.1:1"

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	hyprctl := findCheck(t, report, "hyprctl")
	require.False(t, hyprctl.Pass)
	require.False(t, report.OK())
}

func findCheck(t *testing.T, report Report, name string) Check {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	require.Failf(t, "check not found", "no %q check in %v", name, report.Checks)
	return Check{}
}

func TestRunReportsMissingConfigAndClipboardFallback(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := config.Default()
	cfg.Paste.Enable = false
	cfg.Backend.BaseURL = "http://127.0.0.1:1"

	report := Run(config.Loaded{Path: "/tmp/missing.jsonc", Config: cfg})
	require.False(t, report.OK())
	require.Contains(t, report.Checks[0].Message, "not found; using defaults")

	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	require.Contains(t, names, "clipboard")
	require.Contains(t, names, "backend.credential")
	require.Contains(t, names, "audio.source")
	require.Contains(t, names, "backend.gemini")
	require.NotContains(t, report.String(), "GOOGLE_API_KEY=")
}
