package analysis

// ReactiveState is the published snapshot visual consumers read each
// tick. It is replaced wholesale once per tick; consumers must treat
// it as read-only.
type ReactiveState struct {
	Level          float64
	Bass           float64
	Pulse          float64
	PointerX       float64
	PointerY       float64
	ScrollMomentum float64
	Accent         string
}

// Interaction carries the between-tick inputs (pointer offset, scroll
// momentum, active accent color) into the next snapshot.
type Interaction struct {
	PointerX       float64
	PointerY       float64
	ScrollMomentum float64
	Accent         string
}

// Pipeline runs the per-tick signal chain: sample the spectrum, extract
// band energies, smooth, detect beats, and publish a fresh state. One
// instance owns all retained signal state; Step must only be called
// from the frame loop.
type Pipeline struct {
	sampler  Sampler
	smoother Smoother
	detector Detector
	state    ReactiveState
	active   bool
}

// NewPipeline creates a pipeline reading spectra from the given sampler.
func NewPipeline(s Sampler) *Pipeline {
	return &Pipeline{sampler: s}
}

// Step advances the pipeline by one tick at the given timestamp
// (seconds since start) and returns the new published state.
func (p *Pipeline) Step(now float64, in Interaction) ReactiveState {
	// Baseline pulse decay runs before the availability branch so the
	// envelope keeps releasing even when playback stops mid-decay.
	p.detector.Decay()

	snap, ok := p.sampler.Sample()
	if ok {
		p.smoother.Advance(ExtractBands(snap))
		p.detector.Observe(p.smoother.Bass, now)
	} else {
		p.smoother.Fade()
	}
	p.active = ok

	p.state = ReactiveState{
		Level:          p.smoother.Level,
		Bass:           p.smoother.Bass,
		Pulse:          p.detector.Pulse,
		PointerX:       in.PointerX,
		PointerY:       in.PointerY,
		ScrollMomentum: in.ScrollMomentum,
		Accent:         in.Accent,
	}
	return p.state
}

// State returns the snapshot published by the most recent Step.
func (p *Pipeline) State() ReactiveState { return p.state }

// Active reports whether the last tick had a live audio source.
func (p *Pipeline) Active() bool { return p.active }

// Meter derives the status-indicator level from the current signals,
// clamped so a minimum sliver stays visible even at rest.
func Meter(level, pulse float64, active bool) float64 {
	v := level*1.15 + pulse*0.35
	if active {
		v = level*1.4 + pulse*0.5
	}
	if v < 0.03 {
		v = 0.03
	}
	if v > 1 {
		v = 1
	}
	return v
}

// MeterOpacity maps a meter level to an indicator opacity.
func MeterOpacity(meter float64) float64 {
	return 0.2 + 0.8*meter
}
