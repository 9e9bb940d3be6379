// Package app dispatches parsed CLI commands to the runtime components.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/kikitori/internal/cli"
	"github.com/rbright/kikitori/internal/config"
	"github.com/rbright/kikitori/internal/doctor"
	"github.com/rbright/kikitori/internal/ipc"
	"github.com/rbright/kikitori/internal/logging"
	"github.com/rbright/kikitori/internal/transcribe"
	"github.com/rbright/kikitori/internal/version"
)

const binaryName = "kikitori"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Runner executes one CLI invocation.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// Backend overrides the provider selected by config.
	Backend transcribe.Backend
}

// invocation is what every configured command receives.
type invocation struct {
	parsed cli.Parsed
	loaded config.Loaded
	logger *slog.Logger
}

func (inv invocation) cfg() config.Config { return inv.loaded.Config }

var commands = map[cli.Command]func(Runner, context.Context, invocation) int{
	cli.CommandDoctor:     Runner.doctor,
	cli.CommandDevices:    Runner.devices,
	cli.CommandStatus:     Runner.status,
	cli.CommandStop:       func(r Runner, ctx context.Context, _ invocation) int { return r.relay(ctx, ipc.CommandStop) },
	cli.CommandCancel:     func(r Runner, ctx context.Context, _ invocation) int { return r.relay(ctx, ipc.CommandCancel) },
	cli.CommandTranscribe: Runner.transcribeFile,
	cli.CommandToggle:     Runner.toggle,
}

// Execute runs args with a default Runner and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute runs args and returns the process exit code: 0 ok, 1 failure, 2 usage.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return exitUsage
	}

	switch {
	case parsed.ShowHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return exitOK
	case parsed.Command == cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return exitOK
	}

	run, ok := commands[parsed.Command]
	if !ok {
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return exitUsage
	}

	logRuntime, err := logging.New()
	if err != nil {
		return r.fail(fmt.Errorf("setup logging: %w", err))
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	loaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		logger.Error("load config failed", "error", err.Error())
		return r.fail(err)
	}
	r.warn(logger, loaded.Warnings)

	logger.Info("command start",
		"command", parsed.Command,
		"config", loaded.Path,
		"env_loaded", loaded.EnvLoaded,
		"provider", loaded.Config.Backend.Provider,
		"credential_set", config.Credential(loaded.Config) != "",
		"log", logRuntime.Path,
	)
	return run(r, ctx, invocation{parsed: parsed, loaded: loaded, logger: logger})
}

func (r Runner) doctor(_ context.Context, inv invocation) int {
	report := doctor.Run(inv.loaded)
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() {
		return exitOK
	}
	return exitFailure
}

func (r Runner) warn(logger *slog.Logger, warnings []config.Warning) {
	for _, w := range warnings {
		if w.Line > 0 {
			fmt.Fprintf(r.Stderr, "warning: line %d: %s\n", w.Line, w.Message)
		} else {
			fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
}

func (r Runner) fail(err error) int {
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	return exitFailure
}
