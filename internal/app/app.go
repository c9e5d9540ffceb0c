// Package app provides the main application helpers of the interpreter.
package app

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints the application name and build information.
func PrintBanner(logger *log.Logger, name string, quiet bool, version, commit, date string) {
	if quiet {
		return
	}

	logger.Info(name, log.String("version", VersionString(version, commit)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// VersionString returns the version with the shortened commit hash appended.
func VersionString(version, commit string) string {
	if commit == "" {
		return version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}

// PrintInfo prints the information about the ROM and the emulation settings.
func PrintInfo(logger *log.Logger, opts options.Program, rom []byte, quirks interpreter.Quirks) {
	if opts.Quiet {
		return
	}

	logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.String("frontend", opts.Frontend),
		log.Stringer("quirks", quirks),
	)
	if opts.SeedSet {
		logger.Debug("Using fixed random seed", log.String("seed", fmt.Sprint(opts.Seed)))
	}
}
