//go:build !headless

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a tone while the sound timer is active.
type Beeper struct {
	tone   *Tone
	player *oto.Player
}

// New creates a beeper that plays through the default audio device. A muted
// beeper does not open an audio device and ignores all calls.
func New(mute bool) (*Beeper, error) {
	if mute {
		return &Beeper{}, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	tone := NewTone(SampleRate, Frequency, volume)
	player := ctx.NewPlayer(tone)
	player.Play()

	return &Beeper{
		tone:   tone,
		player: player,
	}, nil
}

// SetActive switches the tone on or off.
func (b *Beeper) SetActive(on bool) {
	if b.tone == nil {
		return
	}
	b.tone.SetActive(on)
}

// Close stops the audio output.
func (b *Beeper) Close() error {
	if b.player == nil {
		return nil
	}
	b.tone.SetActive(false)
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
