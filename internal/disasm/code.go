package disasm

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

const (
	funcNaming       = "_func_%04x"
	labelNaming      = "_label_%04x"
	startLabel       = "Start"
	dataBytesPerLine = 16
)

// processJumpDestinations assigns label names to all jump and call targets
// and rewrites the referencing instructions to use them.
func (dis *Disasm) processJumpDestinations() {
	destinations := make([]uint16, 0, len(dis.branchDestinations)+len(dis.callDestinations))
	for dest := range dis.branchDestinations {
		destinations = append(destinations, dest)
	}
	for dest := range dis.callDestinations {
		if !dis.branchDestinations.Contains(dest) {
			destinations = append(destinations, dest)
		}
	}
	slices.Sort(destinations)

	if len(dis.offsets) > 0 {
		dis.offsets[0].Label = startLabel
	}

	for _, address := range destinations {
		index := int(address) - machine.ProgramStart
		if index < 0 || index >= len(dis.offsets) {
			continue
		}
		offsetInfo := &dis.offsets[index]
		if offsetInfo.Label != "" || offsetInfo.operand {
			continue
		}
		if dis.callDestinations.Contains(address) {
			offsetInfo.Label = fmt.Sprintf(funcNaming, address)
		} else {
			offsetInfo.Label = fmt.Sprintf(labelNaming, address)
		}
	}

	for i := range dis.offsets {
		offsetInfo := &dis.offsets[i]
		if !offsetInfo.code {
			continue
		}
		word := uint16(offsetInfo.Data[0])<<8 | uint16(offsetInfo.Data[1])
		switch word >> 12 {
		case 0x1, 0x2:
			target := int(word&0x0FFF) - machine.ProgramStart
			if target >= 0 && target < len(dis.offsets) && dis.offsets[target].Label != "" {
				name, _, _ := strings.Cut(offsetInfo.Code, " ")
				offsetInfo.Code = fmt.Sprintf("%s %s", name, dis.offsets[target].Label)
			}
		}
	}
}

// Write writes the disassembled offsets as assembly source.
func Write(w io.Writer, offsets []Offset, hexComments bool) error {
	for i := 0; i < len(offsets); {
		offsetInfo := offsets[i]

		if offsetInfo.Label != "" {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return fmt.Errorf("writing line: %w", err)
				}
			}
			if _, err := fmt.Fprintf(w, "%s:\n", offsetInfo.Label); err != nil {
				return fmt.Errorf("writing label: %w", err)
			}
		}

		if !offsetInfo.code {
			count := dataRunLength(offsets, i)
			if err := writeData(w, offsets, i, count); err != nil {
				return err
			}
			i += count
			continue
		}

		line := "  " + offsetInfo.Code
		if hexComments {
			address := machine.ProgramStart + i
			line = fmt.Sprintf("%-32s ; $%04X %02X %02X", line, address, offsetInfo.Data[0], offsetInfo.Data[1])
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing code line: %w", err)
		}
		i += len(offsetInfo.Data)
	}
	return nil
}

// dataRunLength returns the number of consecutive data bytes starting at
// the index, a run ends at code or at a label.
func dataRunLength(offsets []Offset, start int) int {
	end := start + 1
	for end < len(offsets) && !offsets[end].code && offsets[end].Label == "" {
		end++
	}
	return end - start
}

// writeData bundles data bytes to print dataBytesPerLine bytes per line.
func writeData(w io.Writer, offsets []Offset, start, count int) error {
	for i := 0; i < count; {
		toWrite := min(count-i, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("  .byte ")
		for j := range toWrite {
			if j > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(buf, "$%02x", offsets[start+i+j].Data[0])
		}

		if _, err := fmt.Fprintln(w, buf.String()); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}
		i += toWrite
	}
	return nil
}

// Disassemble follows the execution flow of the ROM image and writes the
// assembly listing.
func Disassemble(ctx context.Context, logger *log.Logger, rom []byte, w io.Writer, hexComments bool) error {
	dis, err := New(logger, rom)
	if err != nil {
		return fmt.Errorf("initializing disassembler: %w", err)
	}

	offsets, err := dis.Process(ctx)
	if err != nil {
		return fmt.Errorf("processing ROM: %w", err)
	}
	return Write(w, offsets, hexComments)
}
