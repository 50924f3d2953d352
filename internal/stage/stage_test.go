package stage

import (
	"testing"

	"github.com/olivier-w/strobe/internal/analysis"
)

type silentSampler struct{}

func (silentSampler) Sample() (analysis.Snapshot, bool) { return analysis.Snapshot{}, false }

// recordScene logs every Render call it receives.
type recordScene struct {
	name   string
	calls  []renderCall
	themes []Theme
}

type renderCall struct {
	t     float64
	state analysis.ReactiveState
	w, h  int
}

func (s *recordScene) Name() string { return s.name }
func (s *recordScene) Render(t float64, state analysis.ReactiveState, w, h int) {
	s.calls = append(s.calls, renderCall{t: t, state: state, w: w, h: h})
}
func (s *recordScene) View() string        { return s.name }
func (s *recordScene) ApplyTheme(th Theme) { s.themes = append(s.themes, th) }

// panicScene blows up on every Render.
type panicScene struct{ recordScene }

func (s *panicScene) Render(float64, analysis.ReactiveState, int, int) {
	panic("scene failure")
}

func newTestStage() *Stage {
	return New(analysis.NewPipeline(silentSampler{}))
}

func TestStageBroadcastsIdenticalStateInOrder(t *testing.T) {
	st := newTestStage()
	a := &recordScene{name: "a"}
	b := &recordScene{name: "b"}
	c := &recordScene{name: "c"}
	st.Register(a, Theme{Accent: "#111111"})
	st.Register(b, Theme{Accent: "#222222"})
	st.Register(c, Theme{Accent: "#333333"})
	st.SetSize(80, 24)

	state := st.Tick(1.5)
	for _, sc := range []*recordScene{a, b, c} {
		if len(sc.calls) != 1 {
			t.Fatalf("scene %s rendered %d times, want 1", sc.name, len(sc.calls))
		}
		call := sc.calls[0]
		if call.t != 1.5 {
			t.Fatalf("scene %s saw timestamp %v, want 1.5", sc.name, call.t)
		}
		if call.state != state {
			t.Fatalf("scene %s saw state %+v, want %+v", sc.name, call.state, state)
		}
		if call.w != 80 || call.h != 24 {
			t.Fatalf("scene %s saw size %dx%d, want 80x24", sc.name, call.w, call.h)
		}
	}
}

func TestStagePanickingSceneIsolated(t *testing.T) {
	st := newTestStage()
	before := &recordScene{name: "before"}
	after := &recordScene{name: "after"}
	st.Register(before, Theme{})
	st.Register(&panicScene{recordScene{name: "boom"}}, Theme{})
	st.Register(after, Theme{})

	st.Tick(0.1)
	st.Tick(0.2)
	if len(before.calls) != 2 || len(after.calls) != 2 {
		t.Fatalf("neighbors rendered %d/%d times, want 2/2", len(before.calls), len(after.calls))
	}
}

func TestStageNilSceneBecomesNoop(t *testing.T) {
	st := newTestStage()
	st.Register(nil, Theme{Accent: "#FF0000"})
	live := &recordScene{name: "live"}
	st.Register(live, Theme{})

	st.Tick(0.1)
	if len(live.calls) != 1 {
		t.Fatalf("scene after the nil slot rendered %d times, want 1", len(live.calls))
	}
	if st.SceneCount() != 2 {
		t.Fatalf("SceneCount() = %d, want 2", st.SceneCount())
	}
	if st.View() != "" {
		t.Fatalf("no-op view = %q, want empty", st.View())
	}
}

func TestStageThemeAppliedOnlyOnActivation(t *testing.T) {
	st := newTestStage()
	a := &recordScene{name: "a"}
	b := &recordScene{name: "b"}
	st.Register(a, Theme{Accent: "#0A0A0A"})
	st.Register(b, Theme{Accent: "#0B0B0B"})

	if len(a.themes) != 1 {
		t.Fatalf("first scene got %d theme applications on register, want 1", len(a.themes))
	}
	if len(b.themes) != 0 {
		t.Fatalf("inactive scene got %d theme applications, want 0", len(b.themes))
	}

	st.Tick(0.1)
	st.Tick(0.2)
	if len(a.themes) != 1 {
		t.Fatal("ticking re-applied the active theme")
	}

	st.CycleScene()
	if len(b.themes) != 1 || b.themes[0].Accent != "#0B0B0B" {
		t.Fatalf("cycled scene themes = %v, want its own accent once", b.themes)
	}
	if st.ActiveName() != "b" {
		t.Fatalf("ActiveName() = %q, want b", st.ActiveName())
	}

	st.CycleScene()
	if len(a.themes) != 2 {
		t.Fatalf("re-activated scene has %d theme applications, want 2", len(a.themes))
	}
}

func TestStageAccentFollowsActiveScene(t *testing.T) {
	st := newTestStage()
	st.Register(&recordScene{name: "a"}, Theme{Accent: "#111111"})
	b := &recordScene{name: "b"}
	st.Register(b, Theme{Accent: "#222222"})

	st.CycleScene()
	state := st.Tick(0.1)
	if state.Accent != "#222222" {
		t.Fatalf("state.Accent = %q, want the active scene's accent", state.Accent)
	}
	if b.calls[0].state.Accent != "#222222" {
		t.Fatalf("scene saw accent %q, want #222222", b.calls[0].state.Accent)
	}
}

func TestStageScrollMomentum(t *testing.T) {
	st := newTestStage()
	sc := &recordScene{name: "a"}
	st.Register(sc, Theme{})

	st.AddScroll(-10)
	st.AddScroll(10)
	state := st.Tick(0.1)
	accumulated := 20.0
	want := accumulated * momentumDecay
	if state.ScrollMomentum != want {
		t.Fatalf("momentum after one tick = %v, want %v", state.ScrollMomentum, want)
	}

	// Absolute displacement accumulates up to the cap.
	for i := 0; i < 40; i++ {
		st.AddScroll(-5)
	}
	state = st.Tick(0.2)
	if state.ScrollMomentum > momentumCap {
		t.Fatalf("momentum %v exceeds cap %v", state.ScrollMomentum, momentumCap)
	}

	// With no further input it bleeds toward zero.
	prev := state.ScrollMomentum
	for i := 0; i < 200; i++ {
		state = st.Tick(0.3 + float64(i)*0.1)
		if state.ScrollMomentum > prev {
			t.Fatal("momentum grew without input")
		}
		prev = state.ScrollMomentum
	}
	if prev > 0.01 {
		t.Fatalf("momentum still %v after 200 idle ticks", prev)
	}
}

func TestStagePointerClamped(t *testing.T) {
	st := newTestStage()
	st.Register(&recordScene{name: "a"}, Theme{})

	st.SetPointer(3, -7)
	state := st.Tick(0.1)
	if state.PointerX != 0.5 || state.PointerY != -0.5 {
		t.Fatalf("pointer = (%v, %v), want clamped to (0.5, -0.5)", state.PointerX, state.PointerY)
	}

	st.SetPointer(-0.25, 0.25)
	state = st.Tick(0.2)
	if state.PointerX != -0.25 || state.PointerY != 0.25 {
		t.Fatalf("pointer = (%v, %v), want (-0.25, 0.25)", state.PointerX, state.PointerY)
	}
}

func TestStageMeterBounds(t *testing.T) {
	st := newTestStage()
	st.Register(&recordScene{name: "a"}, Theme{})
	st.Tick(0.1)

	level, opacity := st.Meter()
	if level < 0.03 || level > 1 {
		t.Fatalf("meter level = %v, want within [0.03, 1]", level)
	}
	if opacity < 0.2 || opacity > 1 {
		t.Fatalf("meter opacity = %v, want within [0.2, 1]", opacity)
	}
}
