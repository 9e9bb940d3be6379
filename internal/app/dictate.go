package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rbright/kikitori/internal/indicator"
	"github.com/rbright/kikitori/internal/ipc"
	"github.com/rbright/kikitori/internal/output"
	"github.com/rbright/kikitori/internal/pipeline"
	"github.com/rbright/kikitori/internal/session"
)

const (
	claimStatusTimeout = 180 * time.Millisecond
	claimAttempts     = 9
)

// toggle stops a running dictation, or starts one and owns it until the
// transcript is committed.
func (r Runner) toggle(ctx context.Context, inv invocation) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return r.fail(err)
	}

	resp, reached, err := ipc.Forward(ctx, socketPath, ipc.CommandToggle, forwardTimeout)
	if reached {
		return r.answer(resp, err)
	}

	listener, err := ipc.Claim(ctx, socketPath, ipc.ClaimOptions{
		StatusTimeout: claimStatusTimeout,
		Attempts:     claimAttempts,
		OnStale: func(path string) {
			inv.logger.Warn("removed stale owner socket", "path", path)
		},
	})
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		// Another toggle became the owner between our forward and claim.
		resp, _, err = ipc.Forward(ctx, socketPath, ipc.CommandToggle, forwardTimeout)
		return r.answer(resp, err)
	}
	if err != nil {
		return r.fail(err)
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	return r.dictate(ctx, inv, listener)
}

// dictate runs one recording session while serving stop, cancel, and status
// on listener.
func (r Runner) dictate(ctx context.Context, inv invocation, listener net.Listener) int {
	cfg := inv.cfg()
	notices := indicator.New(cfg.Indicator, inv.logger)

	transcriber, err := pipeline.NewTranscriber(cfg, inv.logger, r.pipelineOptions(pipeline.WithNotifier(notices))...)
	if err != nil {
		return r.fail(err)
	}
	defer func() { _ = transcriber.Close() }()

	controller := session.NewController(inv.logger, transcriber, output.NewCommitter(cfg, inv.logger), notices)

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	served := make(chan error, 1)
	go func() { served <- ipc.Serve(serveCtx, listener, controller) }()

	result := controller.Run(ctx)
	stopServing()
	if err := <-served; err != nil {
		return r.fail(fmt.Errorf("ipc server failed: %w", err))
	}

	logSessionResult(inv.logger, result)
	switch {
	case result.Cancelled:
		fmt.Fprintln(r.Stdout, "cancelled")
		return exitOK
	case result.Err != nil:
		return r.fail(result.Err)
	}
	r.printTranscript(result.Transcript)
	return exitOK
}

func (r Runner) pipelineOptions(extra ...pipeline.Option) []pipeline.Option {
	if r.Backend != nil {
		extra = append(extra, pipeline.WithBackend(r.Backend))
	}
	return extra
}
