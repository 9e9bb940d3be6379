// Package output delivers a finished transcript to the desktop: the clipboard
// always, and the focused window when paste is enabled.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"

	"github.com/rbright/kikitori/internal/config"
)

const (
	clipboardTimeout = 2 * time.Second
	pasteTimeout     = 2 * time.Second
)

// systemClipboard is swapped in tests.
var systemClipboard = clipboard.WriteAll

// Committer writes transcripts exactly as the backend returned them.
type Committer struct {
	logger    *slog.Logger
	clipboard func(context.Context, string) error
	paste     func(context.Context) error
}

// NewCommitter picks the clipboard and paste targets from cfg.
func NewCommitter(cfg config.Config, logger *slog.Logger) *Committer {
	c := &Committer{logger: logger, clipboard: writeSystemClipboard}
	if argv := cfg.Clipboard.Argv; len(argv) > 0 {
		c.clipboard = func(ctx context.Context, text string) error {
			return pipeTo(ctx, argv, text)
		}
	}

	switch {
	case !cfg.Paste.Enable:
	case len(cfg.PasteCmd.Argv) > 0:
		argv := cfg.PasteCmd.Argv
		c.paste = func(ctx context.Context) error { return pipeTo(ctx, argv, "") }
	default:
		shortcut := cfg.Paste.Shortcut
		c.paste = func(ctx context.Context) error { return pasteShortcut(ctx, shortcut) }
	}
	return c
}

// Commit places text on the clipboard byte for byte, then pastes it.
//
// Empty text is not committed. A clipboard failure fails the commit; a paste
// failure is logged only, since the transcript is already on the clipboard.
func (c *Committer) Commit(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	clipCtx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	err := c.clipboard(clipCtx, text)
	cancel()
	if err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}

	if c.paste == nil {
		return nil
	}
	pasteCtx, cancel := context.WithTimeout(ctx, pasteTimeout)
	defer cancel()
	if err := c.paste(pasteCtx); err != nil && c.logger != nil {
		c.logger.Error("paste failed; transcript left on clipboard", "error", err.Error())
	}
	return nil
}

func writeSystemClipboard(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return systemClipboard(text)
}
