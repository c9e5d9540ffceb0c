// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// InterpreterOptions returns the interpreter options for the program options.
func InterpreterOptions(logger *log.Logger, opts options.Program) ([]interpreter.Option, error) {
	quirks, err := interpreter.ParseQuirks(opts.Quirks)
	if err != nil {
		return nil, fmt.Errorf("parsing quirks: %w", err)
	}

	interpOpts := []interpreter.Option{
		interpreter.WithQuirks(quirks),
	}
	if opts.SeedSet {
		interpOpts = append(interpOpts, interpreter.WithSeed(opts.Seed))
	}
	if opts.Trace {
		interpOpts = append(interpOpts, interpreter.WithLogger(logger))
	}
	return interpOpts, nil
}

// RunnerConfig returns the runner configuration for the program options.
func RunnerConfig(opts options.Program) (runner.Config, error) {
	policy, err := runner.ParsePolicy(opts.OnError)
	if err != nil {
		return runner.Config{}, fmt.Errorf("parsing error policy: %w", err)
	}

	cfg := runner.DefaultConfig()
	cfg.CyclesPerSecond = opts.Speed
	cfg.OnError = policy
	return cfg, nil
}
