package config

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// parseCommand splits a configured command into argv. Commands never run
// through a shell, so pipes, redirects, and command lists are rejected.
func parseCommand(raw string) (CommandConfig, error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return CommandConfig{Raw: raw}, nil
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	argv, err := parser.Parse(line)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("%q: %w", line, err)
	}
	if parser.Position >= 0 {
		return CommandConfig{}, fmt.Errorf("%q: shell operator %q is not supported", line, line[parser.Position:parser.Position+1])
	}
	if len(argv) == 0 {
		argv = nil
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}
