// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"frontend" usage:"frontend: window, terminal, headless" default:"window"`
	Quirks   string `flag:"quirks" usage:"quirk preset (modern, cosmac, schip) or comma separated quirk list" default:"modern"`
	OnError  string `flag:"on-error" usage:"handling of faulting instructions: halt, skip" default:"halt"`
	Mute     bool   `flag:"mute" usage:"disable sound output"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction, implies -debug"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// Emulation contains the machine timing options.
type Emulation struct {
	Speed  int    `flag:"speed" usage:"instructions executed per second, averaged over each second" default:"700"`
	Seed   uint64 `flag:"seed" usage:"random number generator seed (default: random)"`
	Scale  int    `flag:"scale" usage:"window pixel scale" default:"10"`
	Cycles int    `flag:"cycles" usage:"number of instructions to execute with the headless frontend, 0 runs until interrupted"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	Emulation

	SeedSet bool // seed was given on the command line
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Input       string
	Output      string
	HexComments bool
	Quiet       bool
}
