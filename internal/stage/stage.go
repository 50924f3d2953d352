// Package stage owns the per-frame update-and-broadcast turn: it runs
// the analysis pipeline once per display refresh and hands the
// resulting state to every registered scene in a fixed order.
package stage

import (
	"github.com/olivier-w/strobe/internal/analysis"
)

// Scroll momentum accumulates wheel displacement and bleeds off each
// tick on the same timescale as the audio-absent level fade.
const (
	momentumCap   = 48.0
	momentumDecay = 0.92
)

// Scene is the minimal capability a visual consumer exposes: accept a
// timestamp plus the current reactive state, and produce a view.
// ApplyTheme is invoked only when the scene becomes the active visual
// context, never per tick.
type Scene interface {
	Name() string
	Render(t float64, state analysis.ReactiveState, width, height int)
	View() string
	ApplyTheme(Theme)
}

type entry struct {
	scene Scene
	theme Theme
}

// Stage drives the tick loop. Exactly one update-and-broadcast turn
// runs per host refresh; scenes never feed back into the pipeline
// within a turn. All mutation happens on the frame goroutine except
// the interaction setters, which the host dispatches between ticks.
type Stage struct {
	pipeline *analysis.Pipeline
	scenes   []entry
	active   int

	width  int
	height int

	pointerX float64
	pointerY float64
	momentum float64
}

// New creates a stage around the given pipeline with no scenes.
func New(p *analysis.Pipeline) *Stage {
	return &Stage{pipeline: p, active: -1}
}

// Register appends a scene with its theme. A nil scene (a consumer
// whose rendering surface is missing) is replaced by a no-op so the
// remaining scenes and the pipeline are unaffected. The first
// registered scene becomes active and receives its theme.
func (st *Stage) Register(sc Scene, th Theme) {
	if sc == nil {
		sc = Noop{}
	}
	st.scenes = append(st.scenes, entry{scene: sc, theme: th})
	if st.active < 0 {
		st.setActive(0)
	}
}

// Tick runs one full turn at the given timestamp (seconds since
// start): momentum bleed, pipeline step, then every scene's Render
// with the same timestamp and state, in registration order. A panic in
// one scene skips only that scene for the tick.
func (st *Stage) Tick(now float64) analysis.ReactiveState {
	st.momentum *= momentumDecay

	state := st.pipeline.Step(now, analysis.Interaction{
		PointerX:       st.pointerX,
		PointerY:       st.pointerY,
		ScrollMomentum: st.momentum,
		Accent:         st.ActiveTheme().Accent,
	})

	for _, e := range st.scenes {
		renderIsolated(e.scene, now, state, st.width, st.height)
	}
	return state
}

// renderIsolated keeps one scene's failure from stopping the turn.
func renderIsolated(sc Scene, t float64, state analysis.ReactiveState, w, h int) {
	defer func() {
		_ = recover()
	}()
	sc.Render(t, state, w, h)
}

// View returns the active scene's current frame.
func (st *Stage) View() string {
	if st.active < 0 || st.active >= len(st.scenes) {
		return ""
	}
	return st.scenes[st.active].scene.View()
}

// CycleScene activates the next registered scene and applies its theme.
func (st *Stage) CycleScene() {
	if len(st.scenes) == 0 {
		return
	}
	st.setActive((st.active + 1) % len(st.scenes))
}

func (st *Stage) setActive(i int) {
	if i == st.active {
		return
	}
	st.active = i
	e := st.scenes[i]
	e.scene.ApplyTheme(e.theme)
}

// ActiveName returns the active scene's name, or "" with no scenes.
func (st *Stage) ActiveName() string {
	if st.active < 0 {
		return ""
	}
	return st.scenes[st.active].scene.Name()
}

// ActiveTheme returns the active scene's theme.
func (st *Stage) ActiveTheme() Theme {
	if st.active < 0 || st.active >= len(st.scenes) {
		return Theme{}
	}
	return st.scenes[st.active].theme
}

// SceneCount returns the number of registered scenes.
func (st *Stage) SceneCount() int { return len(st.scenes) }

// SetSize records the rendering surface dimensions.
func (st *Stage) SetSize(width, height int) {
	st.width = width
	st.height = height
}

// SetPointer records the pointer offset, normalized to [-0.5, 0.5] on
// both axes. Called by the host between ticks.
func (st *Stage) SetPointer(x, y float64) {
	st.pointerX = clampRange(x, -0.5, 0.5)
	st.pointerY = clampRange(y, -0.5, 0.5)
}

// AddScroll folds a wheel displacement into the momentum accumulator.
func (st *Stage) AddScroll(delta float64) {
	if delta < 0 {
		delta = -delta
	}
	st.momentum += delta
	if st.momentum > momentumCap {
		st.momentum = momentumCap
	}
}

// Meter returns the current status-indicator level and opacity.
func (st *Stage) Meter() (level, opacity float64) {
	s := st.pipeline.State()
	level = analysis.Meter(s.Level, s.Pulse, st.pipeline.Active())
	return level, analysis.MeterOpacity(level)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
