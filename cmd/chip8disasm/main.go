// Package main implements a CHIP-8 ROM disassembler
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

const name = "chip8disasm"

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, err := cli.ParseDisasmFlags()
	logger := config.CreateLogger(false, opts.Quiet)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, name, opts.Quiet, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	// the listing goes to stdout when no output file is given
	app.PrintBanner(logger, name, opts.Quiet || opts.Output == "", version, commit, date)

	if err := disasmFile(logger, opts); err != nil {
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}

func disasmFile(logger *log.Logger, opts options.Disassembler) error {
	rom, err := loader.New(logger).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	var outputFile io.WriteCloser
	if opts.Output == "" {
		outputFile = nopCloser{os.Stdout}
	} else {
		outputFile, err = os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", opts.Output, err)
		}
	}

	if err := disasm.Disassemble(retroapp.Context(), logger, rom, outputFile, opts.HexComments); err != nil {
		_ = outputFile.Close()
		return err
	}
	if err := outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// nopCloser wraps an io.Writer to add a no-op Close method
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
