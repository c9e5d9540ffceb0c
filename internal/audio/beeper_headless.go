//go:build headless

package audio

// Beeper is a silent beeper.
type Beeper struct {
	tone *Tone
}

// New returns a beeper that only tracks the tone state.
func New(_ bool) (*Beeper, error) {
	return &Beeper{tone: NewTone(SampleRate, Frequency, volume)}, nil
}

// SetActive switches the silent tone on or off.
func (b *Beeper) SetActive(on bool) {
	b.tone.SetActive(on)
}

// Close does nothing.
func (b *Beeper) Close() error {
	return nil
}
