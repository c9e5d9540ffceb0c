// Package disasm implements a CHIP-8 disassembler that follows the execution
// flow of a ROM image to separate code from data.
package disasm

import (
	"context"
	"fmt"

	"github.com/retroenv/retrochip8/internal/interpreter"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const opcodeSize = 2

// Offset describes a single disassembled ROM offset.
type Offset struct {
	Data  []byte
	Code  string // assembly text, empty for data
	Label string

	code    bool
	operand bool // second byte of an instruction
}

// IsCode returns true if the offset was reached by the execution flow.
func (o Offset) IsCode() bool {
	return o.code
}

// Disasm disassembles a CHIP-8 ROM image.
type Disasm struct {
	logger *log.Logger
	rom    []byte

	offsets []Offset

	branchDestinations set.Set[uint16] // set of all addresses that are jumped to
	callDestinations   set.Set[uint16] // set of all addresses that are called

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the ROM image.
func New(logger *log.Logger, rom []byte) (*Disasm, error) {
	if len(rom) > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", machine.ErrProgramTooLarge, len(rom))
	}

	offsets := make([]Offset, len(rom))
	for i := range offsets {
		offsets[i].Data = rom[i : i+1]
	}

	return &Disasm{
		logger:              logger,
		rom:                 rom,
		offsets:             offsets,
		branchDestinations:  set.New[uint16](),
		callDestinations:    set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}, nil
}

// Lookup finds the CHIP-8 opcode definition matching the 16 bit word.
func Lookup(word uint16) (chip8.Opcode, bool) {
	nibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(nibble)] {
		if op.Info.Mask&word == op.Info.Value {
			return op, op.Instruction != nil
		}
	}
	return chip8.Opcode{}, false
}

// Process follows the execution flow from the program start and returns
// the disassembled offsets, indexed by ROM offset.
func (dis *Disasm) Process(ctx context.Context) ([]Offset, error) {
	dis.addAddressToParse(machine.ProgramStart)

	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}

	dis.processJumpDestinations()
	return dis.offsets, nil
}

// addAddressToParse queues an address for parsing if it is inside the ROM
// and has not been queued before.
func (dis *Disasm) addAddressToParse(address uint16) {
	index := int(address) - machine.ProgramStart
	if index < 0 || index+opcodeSize > len(dis.rom) {
		return
	}
	if dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) processOffset(address uint16) {
	index := int(address) - machine.ProgramStart
	offsetInfo := &dis.offsets[index]
	if offsetInfo.code || offsetInfo.operand {
		return
	}

	word := uint16(dis.rom[index])<<8 | uint16(dis.rom[index+1])
	op, ok := Lookup(word)
	if !ok {
		// an unknown instruction is considered to be data
		dis.logger.Debug("Unknown opcode in execution flow",
			log.Hex("address", address),
			log.Hex("opcode", word))
		return
	}
	next := &dis.offsets[index+1]
	if next.code {
		// the instruction overlaps an already parsed one, keep the first one
		return
	}

	offsetInfo.code = true
	offsetInfo.Data = dis.rom[index : index+opcodeSize]
	next.operand = true

	ins, err := interpreter.Decode(word)
	if err != nil {
		// defined by the instruction set but not executed by the interpreter
		offsetInfo.Code = fmt.Sprintf("%s $%03X", op.Instruction.Name, word&0x0FFF)
		dis.addAddressToParse(address + opcodeSize)
		return
	}
	offsetInfo.Code = ins.String()
	dis.handleControlFlow(address, ins)
}

// handleControlFlow queues the addresses that can be executed after the
// instruction.
func (dis *Disasm) handleControlFlow(address uint16, ins interpreter.Instruction) {
	next := address + opcodeSize

	switch {
	case ins.Op == interpreter.OpJP:
		dis.branchDestinations.Add(ins.NNN)
		dis.addAddressToParse(ins.NNN)

	case ins.Op == interpreter.OpCALL:
		dis.callDestinations.Add(ins.NNN)
		dis.addAddressToParse(ins.NNN)
		dis.addAddressToParse(next)

	case ins.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + opcodeSize)

	case ins.Op == interpreter.OpRET, ins.Op == interpreter.OpJPV0:
		// target depends on runtime state

	default:
		dis.addAddressToParse(next)
	}
}
