//go:build !headless

package window

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/set"
)

func TestKeyMapUnique(t *testing.T) {
	keys := set.New[ebiten.Key]()
	for _, key := range keyMap {
		assert.False(t, keys.Contains(key))
		keys.Add(key)
	}
	assert.Equal(t, ebiten.KeyX, keyMap[0x0])
	assert.Equal(t, ebiten.KeyV, keyMap[0xF])
}

func TestRenderPixels(t *testing.T) {
	var video [machine.ScreenSize]byte
	video[1] = 1
	pixels := make([]byte, machine.ScreenSize*4)

	renderPixels(pixels, &video)

	assert.Equal(t, [4]byte{background.R, background.G, background.B, background.A}, [4]byte(pixels[0:4]))
	assert.Equal(t, [4]byte{foreground.R, foreground.G, foreground.B, foreground.A}, [4]byte(pixels[4:8]))
}

func TestConfigureWindowHandlesClosing(t *testing.T) {
	configureWindow(10)
	assert.True(t, ebiten.IsWindowClosingHandled())
	assert.Equal(t, ebiten.DefaultTPS, ebiten.TPS())
}
