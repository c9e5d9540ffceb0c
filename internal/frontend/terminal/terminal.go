// Package terminal implements a text frontend that renders the framebuffer
// with Unicode half blocks and reads the keypad from a raw mode terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// HoldFrames is the number of frames a key stays pressed after it was
// received, terminals do not report key releases.
const HoldFrames = 6

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

var keyMap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Terminal is a frontend running in a text terminal.
type Terminal struct {
	logger *log.Logger
	in     io.Reader
	out    *bufio.Writer

	input chan byte
	hold  [machine.KeyCount]int

	closed  atomic.Bool
	beeping bool

	fd       int
	oldState *term.State
	start    sync.Once
}

// New returns a new terminal frontend reading from in and rendering to out.
func New(logger *log.Logger, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		logger: logger,
		in:     in,
		out:    bufio.NewWriter(out),
		input:  make(chan byte, 64),
		fd:     -1,
	}
}

// Start switches the input terminal to raw mode and starts reading keys.
// Inputs that are not a terminal are read as they are.
func (t *Terminal) Start() error {
	var err error
	t.start.Do(func() {
		if file, ok := t.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			t.fd = int(file.Fd())
			t.oldState, err = term.MakeRaw(t.fd)
			if err != nil {
				err = fmt.Errorf("setting terminal raw mode: %w", err)
				return
			}
		}

		// hide cursor and clear screen
		_, _ = t.out.WriteString("\x1b[?25l\x1b[2J")
		go t.readInput()
	})
	return err
}

// Stop restores the terminal state. The input reader is left blocked until
// the process exits.
func (t *Terminal) Stop() error {
	_, _ = t.out.WriteString("\x1b[?25h\r\n")
	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("flushing terminal output: %w", err)
	}
	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(t.fd, t.oldState); err != nil {
		return fmt.Errorf("restoring terminal state: %w", err)
	}
	t.oldState = nil
	return nil
}

func (t *Terminal) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := t.in.Read(buf)
		for _, b := range buf[:n] {
			t.input <- b
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.logger.Error("Reading terminal input failed", log.Err(err))
			}
			return
		}
	}
}

// Keys processes the received input and returns the keypad state.
func (t *Terminal) Keys() [machine.KeyCount]bool {
	for i := range t.hold {
		if t.hold[i] > 0 {
			t.hold[i]--
		}
	}

	for drained := false; !drained; {
		select {
		case b := <-t.input:
			t.handleInput(b)
		default:
			drained = true
		}
	}

	var keys [machine.KeyCount]bool
	for i, frames := range t.hold {
		keys[i] = frames > 0
	}
	return keys
}

func (t *Terminal) handleInput(b byte) {
	switch b {
	case keyCtrlC, keyEscape:
		t.closed.Store(true)
		return
	}

	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	if key, ok := keyMap[b]; ok {
		t.hold[key] = HoldFrames
	}
}

// Render draws the framebuffer using one character for two pixel rows.
func (t *Terminal) Render(video *[machine.ScreenSize]byte) error {
	_, _ = t.out.WriteString("\x1b[H")

	for y := 0; y < machine.ScreenHeight; y += 2 {
		for x := range machine.ScreenWidth {
			top := video[y*machine.ScreenWidth+x] != 0
			bottom := video[(y+1)*machine.ScreenWidth+x] != 0
			_, _ = t.out.WriteString(halfBlock(top, bottom))
		}
		_, _ = t.out.WriteString("\r\n")
	}

	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}

// Beep rings the terminal bell when a tone starts.
func (t *Terminal) Beep(on bool) {
	if on && !t.beeping {
		_, _ = t.out.WriteString("\a")
	}
	t.beeping = on
}

// Closed returns true after Ctrl+C or Escape was pressed.
func (t *Terminal) Closed() bool {
	return t.closed.Load()
}
