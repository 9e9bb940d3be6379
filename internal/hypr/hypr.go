// Package hypr drives Hyprland through hyprctl: notices, focus lookup, and
// the shortcut dispatch used to paste a transcript.
package hypr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Icon selects the glyph hyprctl notify draws next to a notice.
type Icon int

// Icons understood by hyprctl notify.
const (
	IconWarning Icon = 0
	IconInfo    Icon = 1
	IconError   Icon = 3
	IconOK      Icon = 5
)

// Notice is one hyprctl notify payload.
type Notice struct {
	Icon     Icon
	Duration time.Duration
	Color    string
	Text     string
}

// Window is the focused client a paste shortcut is sent to.
type Window struct {
	Address string `json:"address"`
	Class   string `json:"class"`
}

// ErrNoWindow reports that nothing has keyboard focus.
var ErrNoWindow = errors.New("no focused window")

const defaultColor = "rgb(89b4fa)"

// Available reports whether hyprctl is on PATH.
func Available() bool {
	_, err := exec.LookPath("hyprctl")
	return err == nil
}

// Notify shows n in Hyprland's notification overlay.
func Notify(ctx context.Context, n Notice) error {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = defaultColor
	}
	return dispatch(ctx, "notify",
		strconv.Itoa(int(n.Icon)),
		strconv.FormatInt(n.Duration.Milliseconds(), 10),
		color,
		n.Text,
	)
}

// Dismiss clears every notice in the overlay.
func Dismiss(ctx context.Context) error {
	return dispatch(ctx, "dismissnotify")
}

// FocusedWindow returns the client that currently has keyboard focus.
func FocusedWindow(ctx context.Context) (Window, error) {
	var w Window
	if err := query(ctx, "activewindow", &w); err != nil {
		return Window{}, err
	}
	w.Address = strings.TrimSpace(w.Address)
	w.Class = strings.TrimSpace(w.Class)
	if w.Address == "" {
		return Window{}, ErrNoWindow
	}
	return w, nil
}

// FocusedMonitor returns the focused output, or the first one when none reports focus.
func FocusedMonitor(ctx context.Context) (string, error) {
	var monitors []struct {
		Name    string `json:"name"`
		Focused bool   `json:"focused"`
	}
	if err := query(ctx, "monitors", &monitors); err != nil {
		return "", err
	}
	if len(monitors) == 0 {
		return "", errors.New("hyprctl reported no monitors")
	}
	name := monitors[0].Name
	for _, m := range monitors {
		if m.Focused {
			name = m.Name
			break
		}
	}
	return strings.TrimSpace(name), nil
}

// SendShortcut presses shortcut (for example "CTRL,V") inside w.
func SendShortcut(ctx context.Context, shortcut string, w Window) error {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return errors.New("shortcut must not be empty")
	}
	if w.Address == "" {
		return ErrNoWindow
	}
	return dispatch(ctx, "sendshortcut", shortcut+",address:"+w.Address)
}

func dispatch(ctx context.Context, args ...string) error {
	_, err := hyprctl(ctx, append([]string{"--quiet", "dispatch"}, args...)...)
	return err
}

func query(ctx context.Context, target string, into any) error {
	out, err := hyprctl(ctx, "-j", target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, into); err != nil {
		return fmt.Errorf("decode hyprctl %s: %w", target, err)
	}
	return nil
}

func hyprctl(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err == nil {
		return out, nil
	}
	if detail := strings.TrimSpace(string(out)); detail != "" {
		return nil, fmt.Errorf("hyprctl %s: %w: %s", strings.Join(args, " "), err, detail)
	}
	return nil, fmt.Errorf("hyprctl %s: %w", strings.Join(args, " "), err)
}
