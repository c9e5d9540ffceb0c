package interpreter

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestClearScreen(t *testing.T) {
	s := newState(t, 0x00E0)
	s.Video[10] = 1
	s.Video[machine.ScreenSize-1] = 1
	s.Redraw = false

	step(t, New(), s, 1)

	assert.Equal(t, [machine.ScreenSize]byte{}, s.Video)
	assert.True(t, s.Redraw)
}

func TestDrawCollision(t *testing.T) {
	// LD I, font 0; DRW V0, V1, 5; DRW V0, V1, 5
	s := newState(t, 0xF029, 0xD015, 0xD015)
	s.V[0] = 0
	s.V[1] = 0
	it := New()

	step(t, it, s, 2)
	assert.Equal(t, byte(0), s.V[0xF])
	// top row of glyph 0 is 0xF0
	for x := range 4 {
		assert.True(t, s.PixelAt(x, 0))
	}
	assert.False(t, s.PixelAt(4, 0))

	step(t, it, s, 1)
	assert.Equal(t, byte(1), s.V[0xF])
	assert.Equal(t, [machine.ScreenSize]byte{}, s.Video)
}

func TestDrawNoCollisionClearsFlag(t *testing.T) {
	s := newState(t, 0xD011)
	s.I = 0x300
	s.Memory[0x300] = 0x80
	s.V[0xF] = 1

	step(t, New(), s, 1)
	assert.Equal(t, byte(0), s.V[0xF])
	assert.True(t, s.PixelAt(0, 0))
}

func TestDrawWrapAround(t *testing.T) {
	s := newState(t, 0xD121)
	s.I = 0x300
	s.Memory[0x300] = 0xFF
	s.V[1] = 60
	s.V[2] = 5

	step(t, New(), s, 1)

	for x := 60; x < 64; x++ {
		assert.True(t, s.PixelAt(x, 5))
	}
	for x := range 4 {
		assert.True(t, s.PixelAt(x, 5))
	}
	assert.False(t, s.PixelAt(4, 5))
	assert.False(t, s.PixelAt(59, 5))
}

func TestDrawVerticalWrapAround(t *testing.T) {
	s := newState(t, 0xD122)
	s.I = 0x300
	s.Memory[0x300] = 0x80
	s.Memory[0x301] = 0x80
	s.V[1] = 0
	s.V[2] = 31

	step(t, New(), s, 1)

	assert.True(t, s.PixelAt(0, 31))
	assert.True(t, s.PixelAt(0, 0))
}

func TestDrawStartCoordinateWraps(t *testing.T) {
	s := newState(t, 0xD121)
	s.I = 0x300
	s.Memory[0x300] = 0x80
	s.V[1] = 64 + 3
	s.V[2] = 32 + 4

	step(t, New(WithQuirks(Quirks{ClipSprites: true})), s, 1)
	assert.True(t, s.PixelAt(3, 4))
}

func TestDrawClipping(t *testing.T) {
	s := newState(t, 0xD122)
	s.I = 0x300
	s.Memory[0x300] = 0xFF
	s.Memory[0x301] = 0xFF
	s.V[1] = 60
	s.V[2] = 31

	step(t, New(WithQuirks(Quirks{ClipSprites: true})), s, 1)

	for x := 60; x < 64; x++ {
		assert.True(t, s.PixelAt(x, 31))
	}
	for x := range 8 {
		assert.False(t, s.PixelAt(x, 31))
		assert.False(t, s.PixelAt(x, 0))
	}
	assert.False(t, s.PixelAt(60, 0))
}

func TestDrawZeroRows(t *testing.T) {
	s := newState(t, 0xD120)
	s.V[0xF] = 1
	s.Redraw = false

	step(t, New(), s, 1)
	assert.Equal(t, byte(0), s.V[0xF])
	assert.Equal(t, [machine.ScreenSize]byte{}, s.Video)
}
