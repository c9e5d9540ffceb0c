// Package audio implements the sound output of the CHIP-8 beeper.
//
// Builds with the headless tag contain a beeper that never opens an audio
// device.
package audio

const (
	// SampleRate is the output sample rate in Hz.
	SampleRate = 44100
	// Frequency is the beeper tone frequency in Hz.
	Frequency = 440
	volume    = 0.2
)
