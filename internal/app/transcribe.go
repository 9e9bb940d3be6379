package app

import (
	"context"

	"github.com/rbright/kikitori/internal/pipeline"
)

// transcribeFile sends an existing recording through the configured backend
// and prints the text without committing it.
func (r Runner) transcribeFile(ctx context.Context, inv invocation) int {
	path := inv.parsed.File
	artifact, err := pipeline.LoadArtifact(path)
	if err != nil {
		return r.fail(err)
	}

	transcriber, err := pipeline.NewTranscriber(inv.cfg(), inv.logger, r.pipelineOptions()...)
	if err != nil {
		return r.fail(err)
	}
	defer func() { _ = transcriber.Close() }()

	text, latency, err := transcriber.TranscribeArtifact(ctx, artifact)
	inv.logger.Info("file transcription",
		"path", path,
		"mime_type", artifact.MIMEType,
		"bytes", len(artifact.Data),
		"backend_latency_ms", latency.Milliseconds(),
		"ok", err == nil,
	)
	if err != nil {
		return r.fail(err)
	}
	r.printTranscript(text)
	return exitOK
}
