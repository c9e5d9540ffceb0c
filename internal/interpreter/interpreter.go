// Package interpreter implements the CHIP-8 fetch-decode-execute cycle.
//
// An Interpreter executes one instruction per Step call against a
// machine.State. It never blocks: the key wait instruction Fx0A reports
// StatusWaitingForKey and leaves the program counter on the instruction so
// the host decides when to step again.
package interpreter

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrMemoryOverrun is returned when a fetch or an index based memory
	// access would leave the 4KB address space.
	ErrMemoryOverrun = errors.New("memory overrun")
	// ErrStackOverflow is returned by a call with all 16 stack slots in use.
	ErrStackOverflow = machine.ErrStackOverflow
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = machine.ErrStackUnderflow
)

// StepError describes a failed step. The machine state is unchanged when
// it is returned.
type StepError struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16 // fetched opcode, zero if the fetch itself failed
	Err    error
}

func (e *StepError) Error() string {
	if errors.Is(e.Err, ErrMemoryOverrun) && e.Opcode == 0 {
		return fmt.Sprintf("fetching instruction at $%04X: %s", e.PC, e.Err)
	}
	return fmt.Sprintf("executing opcode $%04X at $%03X: %s", e.Opcode, e.PC, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Status reports the outcome of a step.
type Status uint8

const (
	// StatusExecuted means the instruction was executed and the program advanced.
	StatusExecuted Status = iota
	// StatusWaitingForKey means Fx0A is waiting and the program did not advance.
	StatusWaitingForKey
	// StatusFault means the step failed and returned an error.
	StatusFault
)

func (s Status) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusWaitingForKey:
		return "waiting for key"
	case StatusFault:
		return "fault"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithQuirks sets the quirk behaviors.
func WithQuirks(q Quirks) Option {
	return func(it *Interpreter) {
		it.quirks = q
	}
}

// WithSeed makes the random number instruction reproducible.
func WithSeed(seed uint64) Option {
	return func(it *Interpreter) {
		it.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// WithLogger enables instruction tracing at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(it *Interpreter) {
		it.logger = logger
	}
}

// Interpreter executes CHIP-8 instructions.
type Interpreter struct {
	quirks Quirks
	rng    *rand.Rand
	logger *log.Logger

	waiting bool
	waitKey int // key pressed during a release wait, -1 if none
}

// New returns a new interpreter. Without WithSeed the random number
// generator is seeded non-deterministically.
func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		waitKey: -1,
	}
	for _, opt := range opts {
		opt(it)
	}
	if it.rng == nil {
		it.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return it
}

// Quirks returns the configured quirk behaviors.
func (it *Interpreter) Quirks() Quirks {
	return it.quirks
}

// Waiting returns true while a key wait instruction has not completed.
func (it *Interpreter) Waiting() bool {
	return it.waiting
}

// Reset clears the key wait state. It should be called together with a
// machine state reset.
func (it *Interpreter) Reset() {
	it.waiting = false
	it.waitKey = -1
}

// Step fetches, decodes and executes a single instruction.
// On error the machine state is left unchanged.
func (it *Interpreter) Step(s *machine.State) (Status, error) {
	pc := s.PC
	if int(pc)+1 >= machine.MemorySize {
		return StatusFault, &StepError{PC: pc, Err: ErrMemoryOverrun}
	}
	opcode := uint16(s.Memory[pc])<<8 | uint16(s.Memory[pc+1])

	ins, err := Decode(opcode)
	if err != nil {
		return StatusFault, &StepError{PC: pc, Opcode: opcode, Err: err}
	}
	if err := it.validate(s, ins); err != nil {
		return StatusFault, &StepError{PC: pc, Opcode: opcode, Err: err}
	}

	if it.logger != nil && !it.waiting {
		it.logger.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("instruction", ins.String()))
	}

	s.Opcode = opcode
	s.PC = pc + 2
	return it.execute(s, ins), nil
}

// validate checks every failure condition of the instruction before the
// state is mutated.
func (it *Interpreter) validate(s *machine.State, ins Instruction) error {
	switch ins.Op {
	case OpRET:
		if s.SP == 0 {
			return ErrStackUnderflow
		}
	case OpCALL:
		if int(s.SP) >= machine.StackSize {
			return ErrStackOverflow
		}
	case OpJPV0:
		if int(it.jumpTarget(s, ins)) >= machine.MemorySize {
			return ErrMemoryOverrun
		}
	case OpDRW:
		return checkRange(s.I, int(ins.N))
	case OpLDB:
		return checkRange(s.I, 3)
	case OpLDIV, OpLDVI:
		return checkRange(s.I, int(ins.X)+1)
	}
	return nil
}

// checkRange returns ErrMemoryOverrun if the length bytes starting at the
// address do not fit into memory.
func checkRange(address uint16, length int) error {
	if int(address)+length > machine.MemorySize {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrMemoryOverrun, length, address)
	}
	return nil
}

func (it *Interpreter) jumpTarget(s *machine.State, ins Instruction) uint16 {
	if it.quirks.JumpUsesVX {
		return ins.NNN + uint16(s.V[ins.X])
	}
	return ins.NNN + uint16(s.V[0])
}
