package analysis

import (
	"math"
	"testing"
)

// stubSampler yields a fixed snapshot while active.
type stubSampler struct {
	snap   Snapshot
	active bool
}

func (s *stubSampler) Sample() (Snapshot, bool) {
	if !s.active {
		return Snapshot{}, false
	}
	return s.snap, true
}

func bassHeavySnapshot() Snapshot {
	// Bass-band bins pinned at 255, everything else silent.
	bins := make([]byte, 512)
	for i := 0; i < 3; i++ {
		bins[i] = 255
	}
	return Snapshot{Bins: bins, SampleRate: 48000, BinCount: 512}
}

func TestPipelineSustainedBassTriggersThenGates(t *testing.T) {
	src := &stubSampler{snap: bassHeavySnapshot(), active: true}
	p := NewPipeline(src)

	const dt = 0.2
	var fired []float64
	for i := 1; i <= 60; i++ {
		now := float64(i) * dt
		state := p.Step(now, Interaction{})
		// A trigger snaps the pulse to exactly 1; every other tick
		// multiplies it by a factor below one.
		if state.Pulse == 1 {
			fired = append(fired, now)
		}
	}

	if len(fired) < 2 {
		t.Fatalf("expected an initial trigger plus a renewed one, got %d: %v", len(fired), fired)
	}
	// The first trigger lands within the first few ticks, once the
	// smoothed bass outruns its own rolling average.
	if fired[0] > 1.0 {
		t.Fatalf("first trigger at %vs, want within the first few ticks", fired[0])
	}
	for i := 1; i < len(fired); i++ {
		if gap := fired[i] - fired[i-1]; gap < 0.17 {
			t.Fatalf("triggers %v apart, refractory gate demands >= 0.17s", gap)
		}
	}
}

func TestPipelineUnavailableSourceDecays(t *testing.T) {
	src := &stubSampler{snap: bassHeavySnapshot(), active: true}
	p := NewPipeline(src)

	now := 0.0
	for i := 0; i < 30; i++ {
		now += 1.0 / 60
		p.Step(now, Interaction{})
	}
	if !p.Active() {
		t.Fatal("pipeline should report an active source")
	}

	src.active = false
	prev := p.State()
	for i := 0; i < 20; i++ {
		now += 1.0 / 60
		state := p.Step(now, Interaction{})
		if p.Active() {
			t.Fatal("pipeline should report the source unavailable")
		}
		if want := prev.Level * 0.92; !close(state.Level, want) {
			t.Fatalf("tick %d: level = %v, want %v (0.92 fade)", i, state.Level, want)
		}
		if want := prev.Bass * 0.9; !close(state.Bass, want) {
			t.Fatalf("tick %d: bass = %v, want %v (0.9 fade)", i, state.Bass, want)
		}
		if want := prev.Pulse * 0.9; !close(state.Pulse, want) {
			t.Fatalf("tick %d: pulse = %v, want %v (baseline decay only)", i, state.Pulse, want)
		}
		prev = state
	}
}

func TestPipelineCarriesInteraction(t *testing.T) {
	p := NewPipeline(&stubSampler{})
	state := p.Step(0.1, Interaction{
		PointerX:       0.25,
		PointerY:       -0.5,
		ScrollMomentum: 12,
		Accent:         "#00AEFF",
	})
	if state.PointerX != 0.25 || state.PointerY != -0.5 || state.ScrollMomentum != 12 || state.Accent != "#00AEFF" {
		t.Fatalf("interaction not carried into state: %+v", state)
	}
}

func TestMeterClamp(t *testing.T) {
	cases := []struct {
		level, pulse float64
		active       bool
	}{
		{0, 0, false},
		{0, 0, true},
		{1, 1, true},
		{1, 1, false},
		{0.5, 0.2, true},
		{math.MaxFloat64, math.MaxFloat64, true},
	}
	for _, c := range cases {
		m := Meter(c.level, c.pulse, c.active)
		if m < 0.03 || m > 1 {
			t.Fatalf("Meter(%v, %v, %v) = %v, want within [0.03, 1]", c.level, c.pulse, c.active, m)
		}
	}
	if m := Meter(0, 0, true); m != 0.03 {
		t.Fatalf("resting meter = %v, want floor 0.03", m)
	}
	if op := MeterOpacity(0.03); op <= 0.2 || op > 1 {
		t.Fatalf("MeterOpacity(0.03) = %v, want in (0.2, 1]", op)
	}
}
