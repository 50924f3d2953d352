package analysis

// Smoothing coefficients. The active pair gives a fast attack (under
// ~0.3 s at frame rate); the fade pair lets the signals settle to
// near-silence within about a dozen ticks after audio stops.
const (
	levelRetain = 0.84
	levelAttack = 0.16
	bassRetain  = 0.72
	bassAttack  = 0.28
	levelFade   = 0.92
	bassFade    = 0.9
)

// Smoother holds the exponentially smoothed loudness and bass signals.
// Both stay in 0–1 for inputs in 0–1 (convex combinations).
type Smoother struct {
	Level float64
	Bass  float64
}

// Advance folds a fresh band reading into the smoothed signals.
func (s *Smoother) Advance(e BandEnergy) {
	s.Level = s.Level*levelRetain + e.Body*levelAttack
	s.Bass = s.Bass*bassRetain + e.Bass*bassAttack
}

// Fade decays both signals toward zero for a tick with no audio.
func (s *Smoother) Fade() {
	s.Level *= levelFade
	s.Bass *= bassFade
}
