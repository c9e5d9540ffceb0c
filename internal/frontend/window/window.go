//go:build !headless

// Package window implements a desktop window frontend using ebiten.
//
// The CHIP-8 keypad is mapped onto the left side of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

const title = "retrochip8"

var keyMap = [machine.KeyCount]ebiten.Key{
	0x1: ebiten.Key1, 0x2: ebiten.Key2, 0x3: ebiten.Key3, 0xC: ebiten.Key4,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0xD: ebiten.KeyR,
	0x7: ebiten.KeyA, 0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xE: ebiten.KeyF,
	0xA: ebiten.KeyZ, 0x0: ebiten.KeyX, 0xB: ebiten.KeyC, 0xF: ebiten.KeyV,
}

var (
	foreground = color.RGBA{R: 0xff, G: 0xb0, B: 0x00, A: 0xff}
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// Beeper switches the sound output on and off.
type Beeper interface {
	SetActive(on bool)
}

// Window is an ebiten game that drives the runner once per tick.
type Window struct {
	ctx    context.Context
	logger *log.Logger
	runner *runner.Runner
	beeper Beeper
	scale  int

	pixels []byte // RGBA framebuffer
	image  *ebiten.Image
	paused bool
}

// New returns a new window frontend. The runner must be configured for a
// timer rate of 60 Hz, the update rate of ebiten.
func New(logger *log.Logger, r *runner.Runner, beeper Beeper, scale int) *Window {
	w := &Window{
		logger: logger,
		runner: r,
		beeper: beeper,
		scale:  max(1, scale),
		pixels: make([]byte, machine.ScreenSize*4),
	}
	var empty [machine.ScreenSize]byte
	renderPixels(w.pixels, &empty)
	return w
}

// Run opens the window and blocks until it is closed, the context is
// cancelled or the program fails.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	configureWindow(w.scale)

	err := ebiten.RunGame(w)
	w.beeper.SetActive(false)
	if err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// configureWindow sets the window options. Closing is handled by the game
// so that Closed reports the close request.
func configureWindow(scale int) {
	ebiten.SetWindowSize(machine.ScreenWidth*scale, machine.ScreenHeight*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(ebiten.DefaultTPS)
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.Closed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if w.ctx != nil && w.ctx.Err() != nil {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.paused = !w.paused
		w.beeper.SetActive(false)
		if w.paused {
			w.logger.Info("Emulation paused")
		} else {
			w.logger.Info("Emulation resumed")
		}
	}
	if w.paused {
		return nil
	}

	if err := w.runner.Update(w); err != nil {
		return fmt.Errorf("updating machine: %w", err)
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(machine.ScreenWidth, machine.ScreenHeight)
	}
	w.image.WritePixels(w.pixels)
	screen.DrawImage(w.image, nil)
}

// Layout implements ebiten.Game, the framebuffer is scaled to the window.
func (w *Window) Layout(_, _ int) (int, int) {
	return machine.ScreenWidth, machine.ScreenHeight
}

// Keys returns the state of the mapped keyboard keys.
func (w *Window) Keys() [machine.KeyCount]bool {
	var keys [machine.KeyCount]bool
	for i, key := range keyMap {
		keys[i] = ebiten.IsKeyPressed(key)
	}
	return keys
}

// Render converts the framebuffer to the window pixels.
func (w *Window) Render(video *[machine.ScreenSize]byte) error {
	renderPixels(w.pixels, video)
	return nil
}

// Beep switches the tone on or off.
func (w *Window) Beep(on bool) {
	w.beeper.SetActive(on)
}

// Closed returns true when the window is being closed.
func (w *Window) Closed() bool {
	return ebiten.IsWindowBeingClosed()
}

func renderPixels(dst []byte, video *[machine.ScreenSize]byte) {
	for i, pixel := range video {
		c := background
		if pixel != 0 {
			c = foreground
		}
		offset := i * 4
		dst[offset] = c.R
		dst[offset+1] = c.G
		dst[offset+2] = c.B
		dst[offset+3] = c.A
	}
}
