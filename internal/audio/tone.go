package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const bytesPerSample = 4 // float32, mono

// Tone generates a square wave as little endian float32 mono samples. It
// produces silence while inactive.
type Tone struct {
	step   float64 // phase increment per sample
	volume float32
	phase  float64

	active atomic.Bool
}

// NewTone returns a new inactive square wave generator.
func NewTone(sampleRate int, frequency float64, volume float32) *Tone {
	return &Tone{
		step:   frequency / float64(sampleRate),
		volume: volume,
	}
}

// SetActive switches the tone on or off. It is safe to call concurrently
// with Read.
func (t *Tone) SetActive(on bool) {
	t.active.Store(on)
}

// Active returns whether the tone is switched on.
func (t *Tone) Active() bool {
	return t.active.Load()
}

// Read fills p with complete samples.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) - len(p)%bytesPerSample
	active := t.active.Load()

	for i := 0; i < n; i += bytesPerSample {
		var sample float32
		if active {
			sample = t.volume
			if t.phase >= 0.5 {
				sample = -t.volume
			}
			t.phase += t.step
			if t.phase >= 1 {
				t.phase -= 1
			}
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
	}

	if !active {
		t.phase = 0
	}
	return n, nil
}
