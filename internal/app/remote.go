package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rbright/kikitori/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

// status prints the owner's state, or idle when no owner is reachable.
func (r Runner) status(ctx context.Context, _ invocation) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return exitOK
	}

	resp, reached, err := ipc.Forward(ctx, socketPath, ipc.CommandStatus, forwardTimeout)
	switch {
	case !reached:
		fmt.Fprintln(r.Stdout, "idle")
	case err != nil:
		return r.fail(err)
	case resp.State == "":
		fmt.Fprintln(r.Stdout, "idle")
	case resp.Elapsed != "":
		fmt.Fprintf(r.Stdout, "%s %s\n", resp.State, resp.Elapsed)
	default:
		fmt.Fprintln(r.Stdout, resp.State)
	}
	return exitOK
}

// relay hands stop or cancel to the owner, which must exist.
func (r Runner) relay(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return r.fail(err)
	}

	resp, reached, err := ipc.Forward(ctx, socketPath, command, forwardTimeout)
	if !reached {
		return r.fail(fmt.Errorf("no active %s session", binaryName))
	}
	return r.answer(resp, err)
}

func (r Runner) answer(resp ipc.Response, err error) int {
	if err != nil {
		return r.fail(err)
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return exitOK
}
