// Package headless implements a frontend without any user interaction that
// records the rendered frames.
package headless

import (
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

// Frontend is a frontend without a window.
type Frontend struct {
	keys    [machine.KeyCount]bool
	frame   [machine.ScreenSize]byte
	renders int
	beeping bool
	beeps   int

	updates   int
	maxFrames int
}

// New returns a new headless frontend. It reports itself as closed after
// maxFrames updates, a value of 0 never closes it.
func New(maxFrames int) *Frontend {
	return &Frontend{
		maxFrames: maxFrames,
	}
}

// Keys returns the simulated keypad state.
func (f *Frontend) Keys() [machine.KeyCount]bool {
	f.updates++
	return f.keys
}

// SetKey sets the simulated state of a key, keys out of range are ignored.
func (f *Frontend) SetKey(key int, pressed bool) {
	if key >= 0 && key < machine.KeyCount {
		f.keys[key] = pressed
	}
}

// Render stores a copy of the framebuffer.
func (f *Frontend) Render(video *[machine.ScreenSize]byte) error {
	f.frame = *video
	f.renders++
	return nil
}

// Beep records the sound state, every start of a tone is counted.
func (f *Frontend) Beep(on bool) {
	if on && !f.beeping {
		f.beeps++
	}
	f.beeping = on
}

// Closed returns true once the frame limit has been reached.
func (f *Frontend) Closed() bool {
	return f.maxFrames > 0 && f.updates >= f.maxFrames
}

// Renders returns the number of rendered frames.
func (f *Frontend) Renders() int {
	return f.renders
}

// Beeps returns the number of started tones.
func (f *Frontend) Beeps() int {
	return f.beeps
}

// Frame returns the last rendered framebuffer.
func (f *Frontend) Frame() [machine.ScreenSize]byte {
	return f.frame
}

// String returns the last rendered framebuffer as text, set pixels are
// printed as '#'.
func (f *Frontend) String() string {
	return Dump(&f.frame)
}

// Dump returns the framebuffer as text with one line per row.
func Dump(video *[machine.ScreenSize]byte) string {
	var sb strings.Builder
	sb.Grow(machine.ScreenSize + machine.ScreenHeight)

	for y := range machine.ScreenHeight {
		for x := range machine.ScreenWidth {
			if video[y*machine.ScreenWidth+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
