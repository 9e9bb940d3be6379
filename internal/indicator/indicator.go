// Package indicator shows the dictation lifecycle on the desktop and plays
// short audio cues for it.
package indicator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/rbright/kikitori/internal/config"
	"github.com/rbright/kikitori/internal/failure"
	"github.com/rbright/kikitori/internal/hypr"
	"github.com/rbright/kikitori/internal/session"
)

const (
	notifyTitle           = "kikitori"
	progressDuration      = 5 * time.Minute
	defaultFailureTimeout = 1600 * time.Millisecond
	dispatchTimeout       = 400 * time.Millisecond

	colorRecording    = "rgb(89b4fa)"
	colorTranscribing = "rgb(cba6f7)"
	colorFailure      = "rgb(f38ba8)"
)

// desktopNotify is swapped in tests.
var desktopNotify = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Notifier renders session events as Hyprland or freedesktop notices.
// It also reports microphone failures for the recorder.
type Notifier struct {
	cfg    config.IndicatorConfig
	logger *slog.Logger
	text   messages
	cues   *cuePlayer

	mu      sync.Mutex
	monitor string
}

// New builds a Notifier whose text follows the user's locale.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		logger: logger,
		text:   messagesFromEnv(),
	}
	n.cues = newCuePlayer(cfg.SoundEnable, func(err error) { n.debug("audio cue failed", err) })
	return n
}

// Recording announces that the microphone is live.
func (n *Notifier) Recording(ctx context.Context) {
	n.cues.play(cueStart)
	if !n.cfg.Enable {
		return
	}
	n.rememberMonitor(ctx)
	n.show(ctx, hypr.Notice{Icon: hypr.IconInfo, Duration: progressDuration, Color: colorRecording, Text: n.text.recording})
}

// Transcribing announces that the recording was handed to the backend.
func (n *Notifier) Transcribing(ctx context.Context) {
	n.cues.play(cueStop)
	if !n.cfg.Enable {
		return
	}
	n.show(ctx, hypr.Notice{Icon: hypr.IconInfo, Duration: progressDuration, Color: colorTranscribing, Text: n.text.transcribing})
}

// Committed confirms the transcript reached the clipboard.
func (n *Notifier) Committed(context.Context) {
	n.cues.play(cueComplete)
}

// Cancelled confirms the recording was thrown away.
func (n *Notifier) Cancelled(context.Context) {
	n.cues.play(cueCancel)
}

// Failed explains why an attempt ended. Failures are shown even when the
// progress indicator is disabled.
func (n *Notifier) Failed(ctx context.Context, stage session.Stage, err error) {
	n.cues.play(cueFailure)
	n.show(ctx, hypr.Notice{
		Icon:     hypr.IconError,
		Duration: n.failureDuration(failure.KindOf(err)),
		Color:    colorFailure,
		Text:     n.failureText(stage, err),
	})
}

// DeviceFailed reports a microphone that could not be opened.
func (n *Notifier) DeviceFailed(ctx context.Context, err error) {
	n.Failed(ctx, session.StageStart, err)
}

// Hide clears the progress notice.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable || n.backend() != config.IndicatorHypr {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	n.debug("dismiss notice failed", hypr.Dismiss(ctx))
}

// FocusedMonitor returns the monitor that had focus when recording began.
func (n *Notifier) FocusedMonitor() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.monitor
}

// failureText prefers the failure's own message so backend errors reach the
// user unchanged.
func (n *Notifier) failureText(stage session.Stage, err error) string {
	var ferr *failure.Error
	if errors.As(err, &ferr) && strings.TrimSpace(ferr.Message) != "" {
		return ferr.Message
	}
	if errors.Is(err, session.ErrEmptyTranscript) {
		return n.text.noSpeech
	}
	switch stage {
	case session.StageStart:
		return n.text.startFailed
	case session.StageCommit:
		return n.text.commitFailed
	default:
		return n.text.transcribeFailed
	}
}

// failureDuration keeps notices that need the user to fix something on
// screen longer.
func (n *Notifier) failureDuration(kind failure.Kind) time.Duration {
	base := time.Duration(n.cfg.ErrorTimeoutMS) * time.Millisecond
	if base <= 0 {
		base = defaultFailureTimeout
	}
	switch kind {
	case failure.DeviceUnavailable, failure.MissingCredential:
		return 3 * base
	default:
		return base
	}
}

func (n *Notifier) show(ctx context.Context, notice hypr.Notice) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	var err error
	if n.backend() == config.IndicatorDesktop {
		err = desktopNotify(notifyTitle, notice.Text)
	} else {
		err = hypr.Notify(ctx, notice)
	}
	n.debug("show notice failed", err)
}

func (n *Notifier) rememberMonitor(ctx context.Context) {
	n.mu.Lock()
	known := n.monitor != ""
	n.mu.Unlock()
	if known || n.backend() != config.IndicatorHypr {
		return
	}

	monitor, err := hypr.FocusedMonitor(ctx)
	if err != nil {
		n.debug("focused monitor lookup failed", err)
		return
	}
	n.mu.Lock()
	n.monitor = monitor
	n.mu.Unlock()
}

func (n *Notifier) backend() string {
	return strings.ToLower(strings.TrimSpace(n.cfg.Backend))
}

func (n *Notifier) debug(msg string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(msg, "error", err.Error())
}
