package machine

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
//
// The display buffer (64x32 pixels) and stack are maintained
// separately from the 4KB main memory address space.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where CHIP-8 programs are loaded
	// and begin execution.
	ProgramStart = 0x200

	// MaxProgramSize is the largest ROM image that fits into program space.
	MaxProgramSize = MemorySize - ProgramStart

	// FontStart is the memory address of the built-in hexadecimal font.
	FontStart = 0x50

	// FontGlyphSize is the number of bytes of a single font glyph.
	FontGlyphSize = 5
)

// Register file, stack and peripheral dimensions.
const (
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	// FlagRegister is the index of VF, used as carry, borrow and collision flag.
	FlagRegister = 0xF

	ScreenWidth  = 64
	ScreenHeight = 32
	ScreenSize   = ScreenWidth * ScreenHeight
)

// fontSet contains the 16 hexadecimal digit sprites 0-F, 5 bytes each.
var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Font returns a copy of the built-in font data.
func Font() [len(fontSet)]byte {
	return fontSet
}

// FontAddress returns the memory address of the glyph for the given hex digit.
// Only the low nibble of the digit is used.
func FontAddress(digit byte) uint16 {
	return FontStart + uint16(digit&0xF)*FontGlyphSize
}
