package output

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rbright/kikitori/internal/hypr"
)

// pipeTo runs argv with input on stdin and waits for it to exit.
func pipeTo(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return errors.New("command argv cannot be empty")
	}

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, detail)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// focusRetries covers the window focus settling after the notice overlay.
const (
	focusRetries    = 5
	focusRetryDelay = 10 * time.Millisecond
)

// pasteShortcut presses shortcut in the focused Hyprland window.
func pasteShortcut(ctx context.Context, shortcut string) error {
	window, err := focusedWindow(ctx, focusRetries, focusRetryDelay)
	if err != nil {
		return err
	}
	return hypr.SendShortcut(ctx, shortcut, window)
}

func focusedWindow(ctx context.Context, attempts int, delay time.Duration) (hypr.Window, error) {
	window, err := backoff.Retry(ctx, func() (hypr.Window, error) {
		return hypr.FocusedWindow(ctx)
	}, backoff.WithBackOff(backoff.NewConstantBackOff(delay)), backoff.WithMaxTries(uint(max(attempts, 1))))
	if err != nil {
		if ctx.Err() != nil {
			return hypr.Window{}, err
		}
		return hypr.Window{}, fmt.Errorf("find focused window: %w", err)
	}
	return window, nil
}
