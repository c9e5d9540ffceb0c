// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses the interpreter command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseFlags(os.Args)
}

func parseFlags(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	usage := "usage: retrochip8 [options] <ROM file>"

	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil {
		return opts, &UsageError{flags: flags, usage: usage, msg: usageMessage(err)}
	}
	if len(args) == 0 && opts.Input == "" {
		return opts, &UsageError{flags: flags, usage: usage}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if opts.Input == "" {
		opts.Input = args[0]
	}

	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.SeedSet = true
		}
	})
	if opts.Trace {
		opts.Debug = true
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// ParseDisasmFlags parses the disassembler command line flags.
func ParseDisasmFlags() (options.Disassembler, error) {
	return parseDisasmFlags(os.Args)
}

func parseDisasmFlags(osArgs []string) (options.Disassembler, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	usage := "usage: chip8disasm [options] <file to disassemble>"

	var opts options.Disassembler
	var noHexComments bool
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.BoolVar(&noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil {
		return opts, &UsageError{flags: flags, usage: usage, msg: usageMessage(err)}
	}
	if len(args) == 0 {
		return opts, &UsageError{flags: flags, usage: usage}
	}
	if err := validateArgs(args); err != nil {
		return opts, err
	}

	opts.Input = args[0]
	opts.HexComments = !noHexComments
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	usage string
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and the flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("%s\n\n", e.usage)
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

func usageMessage(err error) string {
	if errors.Is(err, flag.ErrHelp) {
		return ""
	}
	return err.Error()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)

	validFrontends := []string{options.FrontendWindow, options.FrontendTerminal, options.FrontendHeadless}
	valid := false
	for _, frontend := range validFrontends {
		if opts.Frontend == frontend {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(validFrontends, ", "))
	}

	switch {
	case opts.Speed <= 0:
		return fmt.Errorf("invalid speed %d: must be positive", opts.Speed)
	case opts.Scale <= 0:
		return fmt.Errorf("invalid scale %d: must be positive", opts.Scale)
	case opts.Cycles < 0:
		return fmt.Errorf("invalid cycle count %d: must not be negative", opts.Cycles)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Frontend, "frontend", options.FrontendWindow, "frontend to use (window/terminal/headless)")
	flags.StringVar(&opts.Quirks, "quirks", "modern", "quirk preset (modern/cosmac/schip) or comma separated list of shift-vy, load-store-inc, jump-vx, logic-vf, clip, key-release")
	flags.StringVar(&opts.OnError, "on-error", "halt", "handling of faulting instructions (halt/skip)")
	flags.IntVar(&opts.Speed, "speed", 700, "instructions executed per second, averaged over each second")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, random if not given")
	flags.IntVar(&opts.Scale, "scale", 10, "pixel scale of the window")
	flags.IntVar(&opts.Cycles, "cycles", 0, "number of instructions to execute with the headless frontend, 0 runs until interrupted")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound output")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
