package analysis

import (
	"math"
	"sync"
)

const (
	fftSize = 1024
	// Byte spectra map magnitude dB into this window; anything below
	// the floor reads as 0, anything above the ceiling saturates at 255.
	minDecibels = -100.0
	maxDecibels = -30.0
)

// Analyzer is the audio-analysis facility behind the Sampler contract.
// Playback code streams decoded PCM into it from the decode goroutine;
// the frame loop pulls byte-magnitude spectra out. Initialization is
// deferred until the first play action and is idempotent.
type Analyzer struct {
	mu         sync.Mutex
	window     [fftSize]float64 // mono samples, ring order
	w          int
	filled     int
	sampleRate int
	active     bool

	// scratch buffers reused across Sample calls
	re   [fftSize]float64
	im   [fftSize]float64
	bins [fftSize / 2]byte
}

// NewAnalyzer returns an uninitialized analyzer; Sample reports
// unavailable until Initialize is called.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Initialize records the PCM sample rate and arms the analyzer.
// Calling it again is a no-op.
func (a *Analyzer) Initialize(sampleRate int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sampleRate != 0 || sampleRate <= 0 {
		return
	}
	a.sampleRate = sampleRate
	a.active = true
}

// IsInitialized reports whether Initialize has run.
func (a *Analyzer) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sampleRate != 0
}

// SetActive marks the audio source as playing or paused. While
// inactive, Sample reports unavailable and the pipeline falls back to
// decay-only updates.
func (a *Analyzer) SetActive(active bool) {
	a.mu.Lock()
	a.active = active
	a.mu.Unlock()
}

// WritePCM feeds interleaved 16-bit little-endian stereo PCM into the
// analysis window, mixing to mono. Safe to call from the decode
// goroutine while the frame loop samples.
func (a *Analyzer) WritePCM(p []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+3 < len(p); i += 4 {
		l := int16(uint16(p[i]) | uint16(p[i+1])<<8)
		r := int16(uint16(p[i+2]) | uint16(p[i+3])<<8)
		a.window[a.w] = (float64(l) + float64(r)) / 65536.0
		a.w = (a.w + 1) % fftSize
		if a.filled < fftSize {
			a.filled++
		}
	}
}

// Sample implements Sampler: it returns a fresh byte-magnitude
// spectrum of the most recent analysis window, or reports unavailable
// when the analyzer is uninitialized or the source is paused. Never
// panics on an uninitialized facility.
func (a *Analyzer) Sample() (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sampleRate == 0 || !a.active || a.filled < fftSize {
		return Snapshot{}, false
	}

	// Copy the ring in time order and window it.
	for i := 0; i < fftSize; i++ {
		a.re[i] = a.window[(a.w+i)%fftSize] * hann(i, fftSize)
		a.im[i] = 0
	}
	fft(a.re[:], a.im[:])

	scale := 2.0 / float64(fftSize)
	for i := range a.bins {
		mag := math.Hypot(a.re[i], a.im[i]) * scale
		a.bins[i] = magnitudeByte(mag)
	}

	out := make([]byte, len(a.bins))
	copy(out, a.bins[:])
	return Snapshot{Bins: out, SampleRate: a.sampleRate, BinCount: len(out)}, true
}

// magnitudeByte compresses a linear magnitude into the 0–255 dB scale.
func magnitudeByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	if db <= minDecibels {
		return 0
	}
	if db >= maxDecibels {
		return 255
	}
	return byte((db - minDecibels) / (maxDecibels - minDecibels) * 255)
}
