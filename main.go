// Package main implements the main entry point for a CHIP-8 interpreter
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/frontend/window"
	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

const name = "retrochip8"

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, name, opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	app.PrintBanner(logger, name, opts.Quiet, version, commit, date)

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Running ROM failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	rom, err := loader.New(logger).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	interpOpts, err := config.InterpreterOptions(logger, opts)
	if err != nil {
		return err
	}
	runnerCfg, err := config.RunnerConfig(opts)
	if err != nil {
		return err
	}

	state := machine.New()
	if err := state.LoadProgram(rom); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	interp := interpreter.New(interpOpts...)
	app.PrintInfo(logger, opts, rom, interp.Quirks())

	r := runner.New(logger, state, interp, runnerCfg)

	switch opts.Frontend {
	case options.FrontendHeadless:
		return runHeadless(ctx, r, state, opts)
	case options.FrontendTerminal:
		return runTerminal(ctx, logger, r)
	default:
		return runWindow(ctx, logger, r, opts)
	}
}

func runHeadless(ctx context.Context, r *runner.Runner, state *machine.State, opts options.Program) error {
	if opts.Cycles == 0 {
		return r.Run(ctx, headless.New(0))
	}

	if err := r.RunCycles(opts.Cycles); err != nil {
		return err
	}
	if !opts.Quiet {
		fmt.Print(headless.Dump(&state.Video))
	}
	return nil
}

func runTerminal(ctx context.Context, logger *log.Logger, r *runner.Runner) error {
	tm := terminal.New(logger, os.Stdin, os.Stdout)
	if err := tm.Start(); err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}
	defer func() {
		if err := tm.Stop(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()

	return r.Run(ctx, tm)
}

func runWindow(ctx context.Context, logger *log.Logger, r *runner.Runner, opts options.Program) error {
	beeper, err := audio.New(opts.Mute)
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer func() {
		if err := beeper.Close(); err != nil {
			logger.Error("Closing audio failed", log.Err(err))
		}
	}()

	return window.New(logger, r, beeper, opts.Scale).Run(ctx)
}
