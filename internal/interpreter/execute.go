package interpreter

import (
	"github.com/retroenv/retrochip8/internal/machine"
)

const flag = machine.FlagRegister

// execute runs an already validated instruction. The program counter
// already points to the next instruction.
func (it *Interpreter) execute(s *machine.State, ins Instruction) Status {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS:
		s.ClearScreen()
	case OpRET:
		s.PC, _ = s.Pop()
	case OpJP:
		s.PC = ins.NNN
	case OpCALL:
		_ = s.Push(s.PC)
		s.PC = ins.NNN
	case OpSEByte:
		skipIf(s, s.V[x] == ins.NN)
	case OpSNEByte:
		skipIf(s, s.V[x] != ins.NN)
	case OpSEReg:
		skipIf(s, s.V[x] == s.V[y])
	case OpLDByte:
		s.V[x] = ins.NN
	case OpADDByte:
		s.V[x] += ins.NN
	case OpSNEReg:
		skipIf(s, s.V[x] != s.V[y])

	case OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSHR, OpSUBN, OpSHL:
		it.executeALU(s, ins)

	case OpLDI:
		s.I = ins.NNN
	case OpJPV0:
		s.PC = it.jumpTarget(s, ins)
	case OpRND:
		s.V[x] = byte(it.rng.Uint32()) & ins.NN
	case OpDRW:
		it.draw(s, ins)
	case OpSKP:
		skipIf(s, s.Keypad[s.V[x]&0xF])
	case OpSKNP:
		skipIf(s, !s.Keypad[s.V[x]&0xF])

	case OpLDVDT:
		s.V[x] = s.DelayTimer
	case OpLDVK:
		return it.waitForKey(s, ins)
	case OpLDDTV:
		s.DelayTimer = s.V[x]
	case OpLDSTV:
		s.SoundTimer = s.V[x]
	case OpADDI:
		s.I += uint16(s.V[x])
	case OpLDF:
		s.I = machine.FontAddress(s.V[x])
	case OpLDB:
		v := s.V[x]
		s.Memory[s.I] = v / 100
		s.Memory[s.I+1] = v / 10 % 10
		s.Memory[s.I+2] = v % 10
	case OpLDIV:
		copy(s.Memory[s.I:], s.V[:x+1])
		if it.quirks.LoadStoreIncrementsIndex {
			s.I += uint16(x) + 1
		}
	case OpLDVI:
		copy(s.V[:x+1], s.Memory[s.I:])
		if it.quirks.LoadStoreIncrementsIndex {
			s.I += uint16(x) + 1
		}
	}
	return StatusExecuted
}

// executeALU runs the 8xyN register operations. Flags are computed from the
// operands and written to VF after the result.
func (it *Interpreter) executeALU(s *machine.State, ins Instruction) {
	x, y := ins.X, ins.Y
	vx, vy := s.V[x], s.V[y]

	switch ins.Op {
	case OpLDReg:
		s.V[x] = vy
	case OpOR:
		s.V[x] = vx | vy
		it.resetLogicFlag(s)
	case OpAND:
		s.V[x] = vx & vy
		it.resetLogicFlag(s)
	case OpXOR:
		s.V[x] = vx ^ vy
		it.resetLogicFlag(s)
	case OpADDReg:
		sum := uint16(vx) + uint16(vy)
		s.V[x] = byte(sum)
		s.V[flag] = boolToByte(sum > 0xFF)
	case OpSUB:
		s.V[x] = vx - vy
		s.V[flag] = boolToByte(vx >= vy)
	case OpSUBN:
		s.V[x] = vy - vx
		s.V[flag] = boolToByte(vy >= vx)
	case OpSHR:
		src := it.shiftSource(vx, vy)
		s.V[x] = src >> 1
		s.V[flag] = src & 0x01
	case OpSHL:
		src := it.shiftSource(vx, vy)
		s.V[x] = src << 1
		s.V[flag] = src >> 7
	}
}

func (it *Interpreter) resetLogicFlag(s *machine.State) {
	if it.quirks.LogicResetsVF {
		s.V[flag] = 0
	}
}

func (it *Interpreter) shiftSource(vx, vy byte) byte {
	if it.quirks.ShiftUsesVY {
		return vy
	}
	return vx
}

// draw XORs an n byte sprite from memory at I onto the framebuffer at
// (Vx, Vy) and sets VF if any set pixel was turned off.
func (it *Interpreter) draw(s *machine.State, ins Instruction) {
	x0 := int(s.V[ins.X]) % machine.ScreenWidth
	y0 := int(s.V[ins.Y]) % machine.ScreenHeight
	s.V[flag] = 0

	collision := false
	for row := range int(ins.N) {
		py := y0 + row
		if py >= machine.ScreenHeight {
			if it.quirks.ClipSprites {
				break
			}
			py %= machine.ScreenHeight
		}

		sprite := s.Memory[int(s.I)+row]
		for col := range 8 {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			px := x0 + col
			if px >= machine.ScreenWidth {
				if it.quirks.ClipSprites {
					break
				}
				px %= machine.ScreenWidth
			}
			if s.TogglePixel(px, py) {
				collision = true
			}
		}
	}

	if collision {
		s.V[flag] = 1
	}
}

// waitForKey implements Fx0A. While no key qualifies the program counter is
// moved back onto the instruction so that the next step executes it again.
func (it *Interpreter) waitForKey(s *machine.State, ins Instruction) Status {
	if it.quirks.WaitForKeyRelease {
		if it.waitKey >= 0 && !s.Keypad[it.waitKey] {
			return it.keyReceived(s, ins, it.waitKey)
		}
		if it.waitKey < 0 {
			if key, ok := firstPressedKey(s); ok {
				it.waitKey = key
			}
		}
	} else if key, ok := firstPressedKey(s); ok {
		return it.keyReceived(s, ins, key)
	}

	it.waiting = true
	s.PC -= 2
	return StatusWaitingForKey
}

func (it *Interpreter) keyReceived(s *machine.State, ins Instruction, key int) Status {
	s.V[ins.X] = byte(key)
	it.waiting = false
	it.waitKey = -1
	return StatusExecuted
}

func firstPressedKey(s *machine.State) (int, bool) {
	for key, pressed := range s.Keypad {
		if pressed {
			return key, true
		}
	}
	return 0, false
}

func skipIf(s *machine.State, condition bool) {
	if condition {
		s.PC += 2
	}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
