// Package machine provides the CHIP-8 machine state: memory, register file,
// stack, timers, keypad and framebuffer.
//
// The state is plain fixed-capacity data. It is mutated by the interpreter and
// by the host that drives it, and it provides no synchronization.
package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a ROM image does not fit into program memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrInvalidRegister is returned for a register index outside V0-VF.
	ErrInvalidRegister = errors.New("invalid register")
	// ErrInvalidAddress is returned for a memory or framebuffer index out of range.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidKey is returned for a keypad index outside 0-F.
	ErrInvalidKey = errors.New("invalid key")
	// ErrStackOverflow is returned when pushing onto a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when popping from an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// State is the complete execution context of a CHIP-8 machine.
type State struct {
	V      [RegisterCount]byte // general purpose registers V0-VF
	Memory [MemorySize]byte
	I      uint16 // index register
	PC     uint16 // program counter

	Stack [StackSize]uint16
	SP    uint8 // next free stack slot, StackSize when full

	DelayTimer uint8
	SoundTimer uint8

	Keypad [KeyCount]bool
	Video  [ScreenSize]byte // row-major, 1 byte per pixel, 0 or 1

	Opcode uint16 // most recently fetched instruction

	// Redraw is set whenever the framebuffer changes. The host clears it
	// after rendering.
	Redraw bool
}

// New returns a new machine state in its reset condition.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset zeroes the complete state, loads the font and sets the program
// counter to the program start address.
func (s *State) Reset() {
	*s = State{}
	copy(s.Memory[FontStart:], fontSet[:])
	s.PC = ProgramStart
	s.Redraw = true
}

// LoadProgram copies the ROM image into memory at the program start address.
// Memory is left untouched if the image is too large.
func (s *State) LoadProgram(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(rom), MaxProgramSize)
	}
	copy(s.Memory[ProgramStart:], rom)
	return nil
}

// Push stores a return address on the stack.
func (s *State) Push(address uint16) error {
	if int(s.SP) >= StackSize {
		return ErrStackOverflow
	}
	s.Stack[s.SP] = address
	s.SP++
	return nil
}

// Pop removes and returns the most recently pushed return address.
func (s *State) Pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}
	s.SP--
	return s.Stack[s.SP], nil
}

// TickTimers decrements the delay and sound timers toward zero.
// It is meant to be called at 60 Hz independent of the instruction rate.
func (s *State) TickTimers() {
	if s.DelayTimer > 0 {
		s.DelayTimer--
	}
	if s.SoundTimer > 0 {
		s.SoundTimer--
	}
}

// ClearScreen turns all pixels off.
func (s *State) ClearScreen() {
	s.Video = [ScreenSize]byte{}
	s.Redraw = true
}

// TogglePixel flips the pixel at the given on-screen coordinate and reports
// whether it was set before, which is a sprite collision.
func (s *State) TogglePixel(x, y int) bool {
	offset := y*ScreenWidth + x
	collision := s.Video[offset] != 0
	s.Video[offset] ^= 1
	s.Redraw = true
	return collision
}
