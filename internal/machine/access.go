package machine

import "fmt"

// Register returns the value of register Vx.
func (s *State) Register(x int) (byte, error) {
	if x < 0 || x >= RegisterCount {
		return 0, fmt.Errorf("%w: V%d", ErrInvalidRegister, x)
	}
	return s.V[x], nil
}

// SetRegister sets the value of register Vx.
func (s *State) SetRegister(x int, value byte) error {
	if x < 0 || x >= RegisterCount {
		return fmt.Errorf("%w: V%d", ErrInvalidRegister, x)
	}
	s.V[x] = value
	return nil
}

// ReadMemory returns the byte at the given address.
func (s *State) ReadMemory(address int) (byte, error) {
	if address < 0 || address >= MemorySize {
		return 0, fmt.Errorf("%w: $%04X", ErrInvalidAddress, address)
	}
	return s.Memory[address], nil
}

// WriteMemory sets the byte at the given address.
func (s *State) WriteMemory(address int, value byte) error {
	if address < 0 || address >= MemorySize {
		return fmt.Errorf("%w: $%04X", ErrInvalidAddress, address)
	}
	s.Memory[address] = value
	return nil
}

// Key returns whether the hexadecimal key is pressed.
func (s *State) Key(key int) (bool, error) {
	if key < 0 || key >= KeyCount {
		return false, fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	return s.Keypad[key], nil
}

// SetKey sets the pressed state of the hexadecimal key.
func (s *State) SetKey(key int, pressed bool) error {
	if key < 0 || key >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	s.Keypad[key] = pressed
	return nil
}

// SetKeys replaces the complete keypad state.
func (s *State) SetKeys(keys [KeyCount]bool) {
	s.Keypad = keys
}

// Pixel returns whether the framebuffer pixel at the row-major index is set.
func (s *State) Pixel(index int) (bool, error) {
	if index < 0 || index >= ScreenSize {
		return false, fmt.Errorf("%w: pixel %d", ErrInvalidAddress, index)
	}
	return s.Video[index] != 0, nil
}

// PixelAt returns whether the pixel at the coordinate is set, coordinates
// wrap around the screen edges.
func (s *State) PixelAt(x, y int) bool {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight
	return s.Video[y*ScreenWidth+x] != 0
}
