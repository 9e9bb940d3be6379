// Package cli parses kikitori command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

type Command string

const (
	CommandToggle     Command = "toggle"
	CommandStop       Command = "stop"
	CommandCancel     Command = "cancel"
	CommandStatus     Command = "status"
	CommandTranscribe Command = "transcribe"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

type commandSpec struct {
	name    Command
	operand string
	summary string
}

// commandTable is ordered as printed in help.
var commandTable = []commandSpec{
	{name: CommandToggle, summary: "Start recording, or stop and transcribe when already recording"},
	{name: CommandStop, summary: "Stop the recording, transcribe it, and copy the text"},
	{name: CommandCancel, summary: "Discard the recording without transcribing"},
	{name: CommandStatus, summary: "Print current state (with elapsed time while recording)"},
	{name: CommandTranscribe, operand: "FILE", summary: "Transcribe an existing audio file and print the text"},
	{name: CommandDevices, summary: "List capture sources"},
	{name: CommandDoctor, summary: "Check configuration, credential, and desktop tools"},
	{name: CommandVersion, summary: "Print version information"},
	{name: CommandHelp, summary: "Show this help"},
}

func lookup(name string) (commandSpec, bool) {
	for _, spec := range commandTable {
		if string(spec.name) == name {
			return spec, true
		}
	}
	return commandSpec{}, false
}

// Parsed is the validated invocation.
type Parsed struct {
	Command    Command
	ConfigPath string
	File       string
	ShowHelp   bool
}

type flagValues struct {
	config  string
	help    bool
	version bool
}

func newFlagSet(values *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("kikitori", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false
	fs.StringVar(&values.config, "config", "", "read configuration from `PATH` (default $XDG_CONFIG_HOME/kikitori/config.jsonc)")
	fs.BoolVarP(&values.help, "help", "h", false, "show help")
	fs.BoolVar(&values.version, "version", false, "show version")
	return fs
}

// Parse validates args into a Parsed invocation. Flags may appear before or
// after the command.
func Parse(args []string) (Parsed, error) {
	var values flagValues
	fs := newFlagSet(&values)
	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}
	if fs.Changed("config") && strings.TrimSpace(values.config) == "" {
		return Parsed{}, errors.New("--config requires a path")
	}

	parsed := Parsed{ConfigPath: values.config}
	switch {
	case values.help:
		parsed.Command, parsed.ShowHelp = CommandHelp, true
		return parsed, nil
	case values.version:
		parsed.Command = CommandVersion
		return parsed, nil
	}

	operands := fs.Args()
	if len(operands) == 0 {
		parsed.Command, parsed.ShowHelp = CommandHelp, true
		return parsed, nil
	}

	spec, ok := lookup(operands[0])
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", operands[0])
	}
	parsed.Command = spec.name
	parsed.ShowHelp = spec.name == CommandHelp

	rest := operands[1:]
	if spec.operand != "" {
		if len(rest) == 0 || strings.TrimSpace(rest[0]) == "" {
			return Parsed{}, fmt.Errorf("%s requires an audio file path", spec.name)
		}
		parsed.File, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q: %s", spec.name, strings.Join(rest, " "))
	}
	return parsed, nil
}

// HelpText renders usage for binaryName.
func HelpText(binaryName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n  %s [--config PATH] <command>\n\nCommands:\n", binaryName)
	for _, spec := range commandTable {
		name := string(spec.name)
		if spec.operand != "" {
			name += " " + spec.operand
		}
		fmt.Fprintf(&b, "  %-16s %s\n", name, spec.summary)
	}
	b.WriteString("\nFlags:\n")
	b.WriteString(newFlagSet(&flagValues{}).FlagUsages())
	return b.String()
}
