package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/kikitori/internal/session"
)

// printTranscript writes text unmodified, terminating the line when needed.
func (r Runner) printTranscript(text string) {
	if text == "" {
		return
	}
	fmt.Fprint(r.Stdout, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(r.Stdout)
	}
}

// logSessionResult records one dictation attempt. The transcript itself is
// never logged, only its length.
func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("state", string(result.State)),
		slog.Bool("cancelled", result.Cancelled),
		slog.Time("started_at", result.StartedAt),
		slog.Int64("duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds()),
		slog.Group("audio",
			slog.String("device", result.AudioDevice),
			slog.String("mime_type", result.MIMEType),
			slog.Int64("bytes", result.BytesCaptured),
			slog.Int("seconds", result.ElapsedSeconds),
		),
		slog.Int("transcript_length", len(result.Transcript)),
		slog.Int64("backend_latency_ms", result.BackendLatency.Milliseconds()),
		slog.String("focused_monitor", result.FocusedMonitor),
	}

	if result.Err == nil {
		logger.LogAttrs(context.Background(), slog.LevelInfo, "session complete", attrs...)
		return
	}
	attrs = append(attrs,
		slog.String("failed_stage", string(result.FailedStage)),
		slog.String("failure_kind", string(result.FailureKind)),
		slog.String("error", result.Err.Error()),
	)
	logger.LogAttrs(context.Background(), slog.LevelError, "session failed", attrs...)
}
