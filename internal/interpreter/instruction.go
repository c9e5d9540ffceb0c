package interpreter

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// ErrUnknownOpcode is returned when an opcode does not match any instruction.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Operation identifies one of the 34 CHIP-8 instructions.
type Operation uint8

// CHIP-8 operations, named after their assembly form.
const (
	OpInvalid Operation = iota
	OpCLS               // 00E0
	OpRET               // 00EE
	OpJP                // 1nnn
	OpCALL              // 2nnn
	OpSEByte            // 3xkk
	OpSNEByte           // 4xkk
	OpSEReg             // 5xy0
	OpLDByte            // 6xkk
	OpADDByte           // 7xkk
	OpLDReg             // 8xy0
	OpOR                // 8xy1
	OpAND               // 8xy2
	OpXOR               // 8xy3
	OpADDReg            // 8xy4
	OpSUB               // 8xy5
	OpSHR               // 8xy6
	OpSUBN              // 8xy7
	OpSHL               // 8xyE
	OpSNEReg            // 9xy0
	OpLDI               // Annn
	OpJPV0              // Bnnn
	OpRND               // Cxkk
	OpDRW               // Dxyn
	OpSKP               // Ex9E
	OpSKNP              // ExA1
	OpLDVDT             // Fx07
	OpLDVK              // Fx0A
	OpLDDTV             // Fx15
	OpLDSTV             // Fx18
	OpADDI              // Fx1E
	OpLDF               // Fx29
	OpLDB               // Fx33
	OpLDIV              // Fx55
	OpLDVI              // Fx65

	operationCount
)

// mnemonics maps every operation to its instruction definition.
var mnemonics = [operationCount]*chip8.Instruction{
	OpCLS:     chip8.ClsInst,
	OpRET:     chip8.RetInst,
	OpJP:      chip8.JpInst,
	OpCALL:    chip8.CallInst,
	OpSEByte:  chip8.SeInst,
	OpSNEByte: chip8.SneInst,
	OpSEReg:   chip8.SeInst,
	OpLDByte:  chip8.LdInst,
	OpADDByte: chip8.AddInst,
	OpLDReg:   chip8.LdInst,
	OpOR:      chip8.OrInst,
	OpAND:     chip8.AndInst,
	OpXOR:     chip8.XorInst,
	OpADDReg:  chip8.AddInst,
	OpSUB:     chip8.SubInst,
	OpSHR:     chip8.ShrInst,
	OpSUBN:    chip8.SubnInst,
	OpSHL:     chip8.ShlInst,
	OpSNEReg:  chip8.SneInst,
	OpLDI:     chip8.LdInst,
	OpJPV0:    chip8.JpInst,
	OpRND:     chip8.RndInst,
	OpDRW:     chip8.DrwInst,
	OpSKP:     chip8.SkpInst,
	OpSKNP:    chip8.SknpInst,
	OpLDVDT:   chip8.LdInst,
	OpLDVK:    chip8.LdInst,
	OpLDDTV:   chip8.LdInst,
	OpLDSTV:   chip8.LdInst,
	OpADDI:    chip8.AddInst,
	OpLDF:     chip8.LdInst,
	OpLDB:     chip8.LdInst,
	OpLDIV:    chip8.LdInst,
	OpLDVI:    chip8.LdInst,
}

// Mnemonic returns the assembly mnemonic of the operation.
func (o Operation) Mnemonic() string {
	if o == OpInvalid || o >= operationCount {
		return ""
	}
	return mnemonics[o].Name
}

// Instruction is a decoded CHIP-8 opcode.
type Instruction struct {
	Op     Operation
	Opcode uint16

	X   uint8  // register index, bits 8-11
	Y   uint8  // register index, bits 4-7
	N   uint8  // bottom nibble
	NN  uint8  // bottom byte
	NNN uint16 // bottom 12 bits
}

// Decode splits the opcode into its fields and identifies the operation.
// Unrecognized opcodes return ErrUnknownOpcode.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8(opcode>>8) & 0xF,
		Y:      uint8(opcode>>4) & 0xF,
		N:      uint8(opcode) & 0xF,
		NN:     uint8(opcode),
		NNN:    opcode & 0x0FFF,
	}
	ins.Op = decodeOperation(ins)
	if ins.Op == OpInvalid {
		return ins, ErrUnknownOpcode
	}
	return ins, nil
}

func decodeOperation(ins Instruction) Operation {
	switch ins.Opcode >> 12 {
	case 0x0:
		switch ins.Opcode {
		case 0x00E0:
			return OpCLS
		case 0x00EE:
			return OpRET
		}
	case 0x1:
		return OpJP
	case 0x2:
		return OpCALL
	case 0x3:
		return OpSEByte
	case 0x4:
		return OpSNEByte
	case 0x5:
		if ins.N == 0 {
			return OpSEReg
		}
	case 0x6:
		return OpLDByte
	case 0x7:
		return OpADDByte
	case 0x8:
		return decodeALU(ins.N)
	case 0x9:
		if ins.N == 0 {
			return OpSNEReg
		}
	case 0xA:
		return OpLDI
	case 0xB:
		return OpJPV0
	case 0xC:
		return OpRND
	case 0xD:
		return OpDRW
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return OpSKP
		case 0xA1:
			return OpSKNP
		}
	case 0xF:
		return decodeMisc(ins.NN)
	}
	return OpInvalid
}

func decodeALU(n uint8) Operation {
	switch n {
	case 0x0:
		return OpLDReg
	case 0x1:
		return OpOR
	case 0x2:
		return OpAND
	case 0x3:
		return OpXOR
	case 0x4:
		return OpADDReg
	case 0x5:
		return OpSUB
	case 0x6:
		return OpSHR
	case 0x7:
		return OpSUBN
	case 0xE:
		return OpSHL
	default:
		return OpInvalid
	}
}

func decodeMisc(nn uint8) Operation {
	switch nn {
	case 0x07:
		return OpLDVDT
	case 0x0A:
		return OpLDVK
	case 0x15:
		return OpLDDTV
	case 0x18:
		return OpLDSTV
	case 0x1E:
		return OpADDI
	case 0x29:
		return OpLDF
	case 0x33:
		return OpLDB
	case 0x55:
		return OpLDIV
	case 0x65:
		return OpLDVI
	default:
		return OpInvalid
	}
}

// String returns the instruction in assembly form, the mnemonic followed
// by its operands. Unknown opcodes are printed as a data word.
func (ins Instruction) String() string {
	name := ins.Op.Mnemonic()
	if name == "" {
		return fmt.Sprintf(".word $%04X", ins.Opcode)
	}
	if params := ins.params(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// params formats the instruction operands.
func (ins Instruction) params() string {
	switch ins.Op {
	case OpJP, OpCALL:
		return fmt.Sprintf("$%03X", ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case OpSHR, OpSHL, OpSKP, OpSKNP:
		return fmt.Sprintf("V%X", ins.X)
	case OpLDI:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case OpDRW:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	case OpLDVDT:
		return fmt.Sprintf("V%X, DT", ins.X)
	case OpLDVK:
		return fmt.Sprintf("V%X, K", ins.X)
	case OpLDDTV:
		return fmt.Sprintf("DT, V%X", ins.X)
	case OpLDSTV:
		return fmt.Sprintf("ST, V%X", ins.X)
	case OpADDI:
		return fmt.Sprintf("I, V%X", ins.X)
	case OpLDF:
		return fmt.Sprintf("F, V%X", ins.X)
	case OpLDB:
		return fmt.Sprintf("B, V%X", ins.X)
	case OpLDIV:
		return fmt.Sprintf("[I], V%X", ins.X)
	case OpLDVI:
		return fmt.Sprintf("V%X, [I]", ins.X)
	default:
		return ""
	}
}

// IsSkip returns true if the instruction conditionally skips the next one.
func (ins Instruction) IsSkip() bool {
	name := ins.Op.Mnemonic()
	return name != "" && chip8.SkipInstructions.Contains(name)
}
