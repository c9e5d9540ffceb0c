// Package runner drives an interpreter in real time: it steps the machine at
// the configured speed, decrements the timers at 60 Hz and exchanges input,
// video and sound with a frontend.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnknownPolicy is returned for an unsupported error policy name.
var ErrUnknownPolicy = errors.New("unknown error policy")

// Policy defines how the runner handles a failing step.
type Policy uint8

const (
	// PolicyHalt stops execution and returns the step error.
	PolicyHalt Policy = iota
	// PolicySkip logs the step error and continues after the faulting instruction.
	PolicySkip
)

func (p Policy) String() string {
	switch p {
	case PolicyHalt:
		return "halt"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy returns the policy for the name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "halt":
		return PolicyHalt, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyHalt, fmt.Errorf("%w '%s'", ErrUnknownPolicy, name)
	}
}

// Frontend exchanges input, video and sound with the user.
type Frontend interface {
	Keys() [machine.KeyCount]bool
	Render(video *[machine.ScreenSize]byte) error
	Beep(on bool)
	Closed() bool
}

// Config contains the runner settings.
type Config struct {
	CyclesPerSecond int // instructions executed per second
	TimerHz         int // timer decrement rate and frame rate
	OnError         Policy
}

// DefaultConfig returns the default runner settings.
func DefaultConfig() Config {
	return Config{
		CyclesPerSecond: 700,
		TimerHz:         60,
		OnError:         PolicyHalt,
	}
}

// Runner drives an interpreter against a machine state.
type Runner struct {
	logger *log.Logger
	state  *machine.State
	interp *interpreter.Interpreter
	cfg    Config

	cycles  uint64 // executed steps
	skipped uint64 // faulting instructions skipped
	budget  int    // step remainder carried across frames, in TimerHz units
}

// New returns a new runner. Zero config values are replaced by defaults.
func New(logger *log.Logger, state *machine.State, interp *interpreter.Interpreter, cfg Config) *Runner {
	def := DefaultConfig()
	if cfg.CyclesPerSecond <= 0 {
		cfg.CyclesPerSecond = def.CyclesPerSecond
	}
	if cfg.TimerHz <= 0 {
		cfg.TimerHz = def.TimerHz
	}

	return &Runner{
		logger: logger,
		state:  state,
		interp: interp,
		cfg:    cfg,
	}
}

// nextFrameSteps returns the number of steps to execute in the next timer
// period. The division remainder is carried over so that TimerHz frames
// execute exactly CyclesPerSecond steps.
func (r *Runner) nextFrameSteps() int {
	r.budget += r.cfg.CyclesPerSecond
	steps := r.budget / r.cfg.TimerHz
	r.budget -= steps * r.cfg.TimerHz
	return steps
}

// Cycles returns the number of executed steps.
func (r *Runner) Cycles() uint64 {
	return r.cycles
}

// Skipped returns the number of faulting instructions that were skipped.
func (r *Runner) Skipped() uint64 {
	return r.skipped
}

// Step executes a single instruction and applies the error policy.
func (r *Runner) Step() (interpreter.Status, error) {
	status, err := r.interp.Step(r.state)
	if err == nil {
		r.cycles++
		return status, nil
	}

	var stepErr *interpreter.StepError
	if !errors.As(err, &stepErr) || r.cfg.OnError != PolicySkip || isFetchError(stepErr) {
		return status, fmt.Errorf("step %d: %w", r.cycles, err)
	}

	r.logger.Warn("Skipping faulting instruction",
		log.Hex("pc", stepErr.PC),
		log.Hex("opcode", stepErr.Opcode),
		log.Err(stepErr.Err))
	r.state.PC = stepErr.PC + 2
	r.cycles++
	r.skipped++
	return interpreter.StatusExecuted, nil
}

// isFetchError returns true if the program counter left memory, no
// instruction exists that could be skipped.
func isFetchError(err *interpreter.StepError) bool {
	return errors.Is(err.Err, interpreter.ErrMemoryOverrun) && int(err.PC)+1 >= machine.MemorySize
}

// Frame runs the steps of one timer period and ticks the timers once.
// Stepping stops early while the program waits for a key.
func (r *Runner) Frame() error {
	for range r.nextFrameSteps() {
		status, err := r.Step()
		if err != nil {
			return err
		}
		if status == interpreter.StatusWaitingForKey {
			break
		}
	}

	r.state.TickTimers()
	return nil
}

// Update exchanges the state with the frontend and runs one frame.
func (r *Runner) Update(frontend Frontend) error {
	r.state.SetKeys(frontend.Keys())

	if err := r.Frame(); err != nil {
		return err
	}

	if r.state.Redraw {
		if err := frontend.Render(&r.state.Video); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
		r.state.Redraw = false
	}

	frontend.Beep(r.state.SoundTimer > 0)
	return nil
}

// Run updates the machine with the timer frequency until the context is
// cancelled, the frontend is closed or a step fails.
func (r *Runner) Run(ctx context.Context, frontend Frontend) error {
	r.logger.Info("Running program",
		log.Int("speed", r.cfg.CyclesPerSecond),
		log.Stringer("on-error", r.cfg.OnError),
		log.Stringer("quirks", r.interp.Quirks()))

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TimerHz))
	defer ticker.Stop()
	defer frontend.Beep(false)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running program: %w", ctx.Err())
		case <-ticker.C:
		}

		if frontend.Closed() {
			r.logger.Debug("Frontend closed", log.Int("cycles", int(r.cycles)))
			return nil
		}

		if err := r.Update(frontend); err != nil {
			return err
		}
	}
}

// RunCycles executes exactly n steps without real time pacing, the timers
// are ticked TimerHz times per CyclesPerSecond steps.
func (r *Runner) RunCycles(n int) error {
	cps, hz := r.cfg.CyclesPerSecond, r.cfg.TimerHz
	for i := range n {
		if _, err := r.Step(); err != nil {
			return err
		}
		for range (i+1)*hz/cps - i*hz/cps {
			r.state.TickTimers()
		}
	}
	return nil
}
