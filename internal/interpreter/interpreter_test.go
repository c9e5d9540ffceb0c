package interpreter

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// newState returns a machine state with the given opcodes loaded at the
// program start address.
func newState(t *testing.T, program ...uint16) *machine.State {
	t.Helper()
	s := machine.New()
	rom := make([]byte, 0, 2*len(program))
	for _, word := range program {
		rom = append(rom, byte(word>>8), byte(word))
	}
	assert.NoError(t, s.LoadProgram(rom))
	return s
}

func step(t *testing.T, it *Interpreter, s *machine.State, count int) {
	t.Helper()
	for range count {
		status, err := it.Step(s)
		assert.NoError(t, err)
		assert.Equal(t, StatusExecuted, status)
	}
}

func TestStepScenario(t *testing.T) {
	s := machine.New()
	assert.NoError(t, s.LoadProgram([]byte{0x60, 0x05, 0x61, 0x0A, 0x80, 0x14}))
	it := New(WithSeed(1))

	step(t, it, s, 3)

	assert.Equal(t, byte(15), s.V[0])
	assert.Equal(t, byte(10), s.V[1])
	assert.Equal(t, byte(0), s.V[0xF])
	assert.Equal(t, uint16(0x206), s.PC)
	assert.Equal(t, uint16(0x8014), s.Opcode)
}

func TestStepTracing(t *testing.T) {
	s := newState(t, 0x6042)
	it := New(WithLogger(log.NewTestLogger(t)))

	step(t, it, s, 1)
	assert.Equal(t, byte(0x42), s.V[0])
}

func TestFlowControl(t *testing.T) {
	t.Run("jump", func(t *testing.T) {
		s := newState(t, 0x1234)
		step(t, New(), s, 1)
		assert.Equal(t, uint16(0x234), s.PC)
	})

	t.Run("call and return", func(t *testing.T) {
		// 0x200: CALL 0x206, 0x202: LD V1, 1, 0x204: JP 0x204, 0x206: LD V0, 7, 0x208: RET
		s := newState(t, 0x2206, 0x6101, 0x1204, 0x6007, 0x00EE)
		it := New()

		step(t, it, s, 1)
		assert.Equal(t, uint16(0x206), s.PC)
		assert.Equal(t, uint8(1), s.SP)
		assert.Equal(t, uint16(0x202), s.Stack[0])

		step(t, it, s, 3)
		assert.Equal(t, byte(7), s.V[0])
		assert.Equal(t, byte(1), s.V[1])
		assert.Equal(t, uint16(0x204), s.PC)
		assert.Equal(t, uint8(0), s.SP)
	})

	t.Run("jump with offset", func(t *testing.T) {
		s := newState(t, 0xB300)
		s.V[0] = 0x10
		s.V[3] = 0x20
		step(t, New(), s, 1)
		assert.Equal(t, uint16(0x310), s.PC)
	})

	t.Run("jump with offset quirk", func(t *testing.T) {
		s := newState(t, 0xB300)
		s.V[0] = 0x10
		s.V[3] = 0x20
		step(t, New(WithQuirks(Quirks{JumpUsesVX: true})), s, 1)
		assert.Equal(t, uint16(0x320), s.PC)
	})
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx     byte
		vy     byte
		key    bool
		skip   bool
	}{
		{"SE byte equal", 0x3142, 0x42, 0, false, true},
		{"SE byte different", 0x3142, 0x41, 0, false, false},
		{"SNE byte equal", 0x4142, 0x42, 0, false, false},
		{"SNE byte different", 0x4142, 0x41, 0, false, true},
		{"SE reg equal", 0x5120, 0x10, 0x10, false, true},
		{"SE reg different", 0x5120, 0x10, 0x11, false, false},
		{"SNE reg equal", 0x9120, 0x10, 0x10, false, false},
		{"SNE reg different", 0x9120, 0x10, 0x11, false, true},
		{"SKP pressed", 0xE19E, 0x0A, 0, true, true},
		{"SKP released", 0xE19E, 0x0A, 0, false, false},
		{"SKNP pressed", 0xE1A1, 0x0A, 0, true, false},
		{"SKNP released", 0xE1A1, 0x0A, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.opcode)
			s.V[1] = tt.vx
			s.V[2] = tt.vy
			s.Keypad[0xA] = tt.key

			step(t, New(), s, 1)

			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, s.PC)
		})
	}
}

func TestLoadAndAdd(t *testing.T) {
	s := newState(t, 0x6AFF, 0x7A01, 0x7B10)
	s.V[0xF] = 0x33

	step(t, New(), s, 3)

	assert.Equal(t, byte(0x00), s.V[0xA])
	assert.Equal(t, byte(0x10), s.V[0xB])
	assert.Equal(t, byte(0x33), s.V[0xF])
}

func TestALU(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		quirks Quirks
		vx     byte
		vy     byte
		vf     byte // initial VF
		wantVx byte
		wantVF byte
	}{
		{"LD", 0x8120, Quirks{}, 0x01, 0x99, 0x05, 0x99, 0x05},
		{"OR", 0x8121, Quirks{}, 0xF0, 0x0F, 0x05, 0xFF, 0x05},
		{"OR resets VF", 0x8121, Quirks{LogicResetsVF: true}, 0xF0, 0x0F, 0x05, 0xFF, 0x00},
		{"AND", 0x8122, Quirks{}, 0xF3, 0x3F, 0x05, 0x33, 0x05},
		{"AND resets VF", 0x8122, Quirks{LogicResetsVF: true}, 0xF3, 0x3F, 0x05, 0x33, 0x00},
		{"XOR", 0x8123, Quirks{}, 0xFF, 0x0F, 0x05, 0xF0, 0x05},
		{"ADD no carry", 0x8124, Quirks{}, 0x05, 0x0A, 0x05, 0x0F, 0x00},
		{"ADD carry", 0x8124, Quirks{}, 0xFF, 0x01, 0x00, 0x00, 0x01},
		{"SUB no borrow", 0x8125, Quirks{}, 0x0A, 0x05, 0x00, 0x05, 0x01},
		{"SUB equal", 0x8125, Quirks{}, 0x05, 0x05, 0x00, 0x00, 0x01},
		{"SUB borrow", 0x8125, Quirks{}, 0x05, 0x0A, 0x01, 0xFB, 0x00},
		{"SUBN no borrow", 0x8127, Quirks{}, 0x05, 0x0A, 0x00, 0x05, 0x01},
		{"SUBN borrow", 0x8127, Quirks{}, 0x0A, 0x05, 0x01, 0xFB, 0x00},
		{"SHR odd", 0x8126, Quirks{}, 0x05, 0xF0, 0x00, 0x02, 0x01},
		{"SHR even", 0x8126, Quirks{}, 0x04, 0xF1, 0x01, 0x02, 0x00},
		{"SHR uses VY", 0x8126, Quirks{ShiftUsesVY: true}, 0x04, 0xF1, 0x00, 0x78, 0x01},
		{"SHL msb set", 0x812E, Quirks{}, 0x81, 0x00, 0x00, 0x02, 0x01},
		{"SHL msb clear", 0x812E, Quirks{}, 0x41, 0xFF, 0x01, 0x82, 0x00},
		{"SHL uses VY", 0x812E, Quirks{ShiftUsesVY: true}, 0x01, 0xC0, 0x00, 0x80, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.opcode)
			s.V[1] = tt.vx
			s.V[2] = tt.vy
			s.V[0xF] = tt.vf

			step(t, New(WithQuirks(tt.quirks)), s, 1)

			assert.Equal(t, tt.wantVx, s.V[1])
			assert.Equal(t, tt.wantVF, s.V[0xF])
			assert.Equal(t, tt.vy, s.V[2])
		})
	}
}

func TestALUFlagWrittenLast(t *testing.T) {
	// ADD VF, V1 with carry: the flag overwrites the sum.
	s := newState(t, 0x8F14)
	s.V[0xF] = 0xFF
	s.V[1] = 0x02

	step(t, New(), s, 1)
	assert.Equal(t, byte(1), s.V[0xF])
}

func TestIndexOperations(t *testing.T) {
	t.Run("LD I", func(t *testing.T) {
		s := newState(t, 0xA123)
		step(t, New(), s, 1)
		assert.Equal(t, uint16(0x123), s.I)
	})

	t.Run("ADD I", func(t *testing.T) {
		s := newState(t, 0xF31E)
		s.I = 0xFFF
		s.V[3] = 0x02
		s.V[0xF] = 0x07
		step(t, New(), s, 1)
		assert.Equal(t, uint16(0x1001), s.I)
		assert.Equal(t, byte(0x07), s.V[0xF])
	})

	t.Run("LD F", func(t *testing.T) {
		s := newState(t, 0xF429)
		s.V[4] = 0x0B
		step(t, New(), s, 1)
		assert.Equal(t, uint16(machine.FontStart+0xB*machine.FontGlyphSize), s.I)
	})

	t.Run("LD B", func(t *testing.T) {
		s := newState(t, 0xF533)
		s.V[5] = 156
		s.I = 0x300
		step(t, New(), s, 1)
		assert.Equal(t, [3]byte{1, 5, 6}, [3]byte(s.Memory[0x300:0x303]))
	})
}

func TestLoadStoreRegisters(t *testing.T) {
	for _, increment := range []bool{false, true} {
		quirks := Quirks{LoadStoreIncrementsIndex: increment}

		t.Run("store "+quirks.String(), func(t *testing.T) {
			s := newState(t, 0xF255)
			s.V = [16]byte{0x11, 0x22, 0x33, 0x44}
			s.I = 0x400

			step(t, New(WithQuirks(quirks)), s, 1)

			assert.Equal(t, [4]byte{0x11, 0x22, 0x33, 0x00}, [4]byte(s.Memory[0x400:0x404]))
			wantI := uint16(0x400)
			if increment {
				wantI = 0x403
			}
			assert.Equal(t, wantI, s.I)
		})

		t.Run("load "+quirks.String(), func(t *testing.T) {
			s := newState(t, 0xF265)
			copy(s.Memory[0x400:], []byte{0xAA, 0xBB, 0xCC, 0xDD})
			s.V[3] = 0x01
			s.I = 0x400

			step(t, New(WithQuirks(quirks)), s, 1)

			assert.Equal(t, [4]byte{0xAA, 0xBB, 0xCC, 0x01}, [4]byte(s.V[:4]))
			wantI := uint16(0x400)
			if increment {
				wantI = 0x403
			}
			assert.Equal(t, wantI, s.I)
		})
	}
}

func TestTimers(t *testing.T) {
	s := newState(t, 0x6130, 0xF115, 0xF118, 0xF207)
	it := New()

	step(t, it, s, 3)
	assert.Equal(t, uint8(0x30), s.DelayTimer)
	assert.Equal(t, uint8(0x30), s.SoundTimer)

	s.TickTimers()
	step(t, it, s, 1)
	assert.Equal(t, byte(0x2F), s.V[2])
}

func TestRandom(t *testing.T) {
	program := []uint16{0xC1FF, 0xC20F, 0xC300}

	a := newState(t, program...)
	step(t, New(WithSeed(42)), a, 3)
	b := newState(t, program...)
	step(t, New(WithSeed(42)), b, 3)

	assert.Equal(t, a.V, b.V)
	assert.Equal(t, byte(0), a.V[2]&0xF0)
	assert.Equal(t, byte(0), a.V[3])
}

func TestStackErrors(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		// CALL 0x200 recursively.
		s := newState(t, 0x2200)
		it := New()

		step(t, it, s, machine.StackSize)
		assert.Equal(t, uint8(machine.StackSize), s.SP)

		before := *s
		status, err := it.Step(s)
		assert.Equal(t, StatusFault, status)
		assert.True(t, errors.Is(err, ErrStackOverflow))
		assert.Equal(t, before, *s)

		var stepErr *StepError
		assert.True(t, errors.As(err, &stepErr))
		assert.Equal(t, uint16(0x200), stepErr.PC)
		assert.Equal(t, uint16(0x2200), stepErr.Opcode)
	})

	t.Run("underflow", func(t *testing.T) {
		s := newState(t, 0x00EE)
		before := *s

		status, err := New().Step(s)
		assert.Equal(t, StatusFault, status)
		assert.True(t, errors.Is(err, ErrStackUnderflow))
		assert.Equal(t, before, *s)
	})
}

func TestUnknownOpcode(t *testing.T) {
	for _, opcode := range []uint16{0x0000, 0x0123, 0x5121, 0x8128, 0x912F, 0xE1FF, 0xF1FF} {
		s := newState(t, opcode)
		before := *s

		status, err := New().Step(s)
		assert.Equal(t, StatusFault, status)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.Equal(t, before, *s)
	}
}

func TestMemoryOverrun(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		s := machine.New()
		s.PC = machine.MemorySize - 1
		before := *s

		status, err := New().Step(s)
		assert.Equal(t, StatusFault, status)
		assert.True(t, errors.Is(err, ErrMemoryOverrun))
		assert.Equal(t, before, *s)
	})

	tests := []struct {
		name   string
		opcode uint16
		index  uint16
		v0     byte
	}{
		{"draw", 0xD015, 0xFFC, 0},
		{"bcd", 0xF033, 0xFFE, 0},
		{"store", 0xF355, 0xFFD, 0},
		{"load", 0xFF65, 0xFF1, 0},
		{"jump", 0xBFFF, 0, 0x10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.opcode)
			s.I = tt.index
			s.V[0] = tt.v0
			before := *s

			_, err := New().Step(s)
			assert.True(t, errors.Is(err, ErrMemoryOverrun))
			assert.Equal(t, before, *s)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "executed", StatusExecuted.String())
	assert.Equal(t, "waiting for key", StatusWaitingForKey.String())
	assert.Equal(t, "fault", StatusFault.String())
}
