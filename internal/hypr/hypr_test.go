package hypr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFocusedWindowAndMonitor(t *testing.T) {
	stubHyprctl(t, `
case "$*" in
  "-j activewindow") echo '{"address":" 0xabc ","class":" ghostty "}' ;;
  "-j monitors") echo '[{"name":"HDMI-A-1","focused":false},{"name":" DP-1 ","focused":true}]' ;;
esac
`)

	window, err := FocusedWindow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Window{Address: "0xabc", Class: "ghostty"}, window)

	monitor, err := FocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "DP-1", monitor)
}

func TestFocusedMonitorFallsBackToFirstOutput(t *testing.T) {
	stubHyprctl(t, `echo '[{"name":"eDP-1","focused":false},{"name":"HDMI-A-1","focused":false}]'`)

	monitor, err := FocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eDP-1", monitor)
}

func TestFocusedMonitorWithoutOutputsFails(t *testing.T) {
	stubHyprctl(t, `echo '[]'`)

	_, err := FocusedMonitor(context.Background())
	require.ErrorContains(t, err, "no monitors")
}

func TestFocusedWindowWithoutAddress(t *testing.T) {
	stubHyprctl(t, `echo '{"address":"","class":"brave"}'`)

	_, err := FocusedWindow(context.Background())
	require.ErrorIs(t, err, ErrNoWindow)
}

func TestFocusedWindowRejectsMalformedJSON(t *testing.T) {
	stubHyprctl(t, `echo 'not json'`)

	_, err := FocusedWindow(context.Background())
	require.ErrorContains(t, err, "decode hyprctl activewindow")
}

func TestNoticeAndDismissDispatch(t *testing.T) {
	calls := stubHyprctl(t, `printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"`)

	require.NoError(t, Notify(context.Background(), Notice{
		Icon:     IconError,
		Duration: 1600 * time.Millisecond,
		Text:     "音声認識エラー",
	}))
	require.NoError(t, Dismiss(context.Background()))

	require.Equal(t, []string{
		"--quiet dispatch notify 3 1600 rgb(89b4fa) 音声認識エラー",
		"--quiet dispatch dismissnotify",
	}, calls())
}

func TestSendShortcutTargetsWindow(t *testing.T) {
	calls := stubHyprctl(t, `printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"`)

	require.NoError(t, SendShortcut(context.Background(), " CTRL,V ", Window{Address: "0xabc"}))
	require.Equal(t, []string{"--quiet dispatch sendshortcut CTRL,V,address:0xabc"}, calls())
}

func TestSendShortcutValidatesInputs(t *testing.T) {
	require.ErrorContains(t, SendShortcut(context.Background(), " ", Window{Address: "0xabc"}), "must not be empty")
	require.ErrorIs(t, SendShortcut(context.Background(), "CTRL,V", Window{}), ErrNoWindow)
}

func TestHyprctlFailureIncludesOutput(t *testing.T) {
	stubHyprctl(t, `echo 'boom from hyprctl' >&2; exit 1`)

	err := Dismiss(context.Background())
	require.ErrorContains(t, err, "boom from hyprctl")
}

func TestAvailableFollowsPath(t *testing.T) {
	stubHyprctl(t, "exit 0")
	require.True(t, Available())

	t.Setenv("PATH", t.TempDir())
	require.False(t, Available())
}

// stubHyprctl puts a fake hyprctl on PATH and returns a reader for the
// argument lines it appended to HYPR_ARGS_FILE.
func stubHyprctl(t *testing.T, body string) func() []string {
	t.Helper()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)

	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprctl"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	return func() []string {
		data, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}
}
