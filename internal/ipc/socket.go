package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// SocketName is the owner socket file name inside XDG_RUNTIME_DIR.
const SocketName = "kikitori.sock"

// ErrAlreadyRunning reports that another invocation owns the dictation session.
var ErrAlreadyRunning = errors.New("kikitori session already running")

var errStaleSocket = errors.New("stale socket")

// RuntimeSocketPath resolves the owner socket path.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, SocketName), nil
}

// ClaimOptions tunes how Claim treats a socket file that is already present.
type ClaimOptions struct {
	// StatusTimeout bounds the status request sent to a possible owner.
	StatusTimeout time.Duration
	// Attempts caps how many times a stale socket is removed and rebound.
	Attempts uint
	// OnStale runs after a dead owner's socket file is removed.
	OnStale func(path string)
}

// Claim makes the caller the session owner by binding path. A socket left by
// a crashed owner is removed and the bind retried; a live owner yields
// ErrAlreadyRunning. An owner that accepts but never answers is left alone.
func Claim(ctx context.Context, path string, opts ClaimOptions) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	bind := func() (net.Listener, error) {
		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}
		if !isAddrInUse(err) {
			return nil, backoff.Permanent(fmt.Errorf("listen unix %s: %w", path, err))
		}

		alive, checkErr := OwnerAlive(ctx, path, opts.StatusTimeout)
		switch {
		case alive:
			return nil, backoff.Permanent(ErrAlreadyRunning)
		case checkErr != nil:
			return nil, backoff.Permanent(fmt.Errorf("check existing socket %s: %w", path, checkErr))
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, backoff.Permanent(fmt.Errorf("remove stale socket %s: %w", path, err))
		}
		if opts.OnStale != nil {
			opts.OnStale(path)
		}
		return nil, errStaleSocket
	}

	listener, err := backoff.Retry(ctx, bind,
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     25 * time.Millisecond,
			RandomizationFactor: 0.2,
			Multiplier:          2,
			MaxInterval:         200 * time.Millisecond,
		}),
		backoff.WithMaxTries(max(opts.Attempts, 1)),
	)
	if errors.Is(err, errStaleSocket) {
		return nil, fmt.Errorf("claim socket %s: stale socket kept reappearing after %d attempts", path, max(opts.Attempts, 1))
	}
	return listener, err
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
