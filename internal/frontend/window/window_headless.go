//go:build headless

package window

import (
	"context"
	"errors"

	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// ErrNotAvailable is returned when the binary was built without window support.
var ErrNotAvailable = errors.New("window frontend not available in headless build")

// Beeper switches the sound output on and off.
type Beeper interface {
	SetActive(on bool)
}

// Window is a placeholder for builds without window support.
type Window struct{}

// New returns a window that can not be run.
func New(_ *log.Logger, _ *runner.Runner, _ Beeper, _ int) *Window {
	return &Window{}
}

// Run returns ErrNotAvailable.
func (w *Window) Run(_ context.Context) error {
	return ErrNotAvailable
}
