package scene

import (
	"strings"
	"testing"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/stage"
)

func hotState() analysis.ReactiveState {
	return analysis.ReactiveState{
		Level:          0.8,
		Bass:           0.9,
		Pulse:          1,
		PointerX:       0.3,
		PointerY:       -0.2,
		ScrollMomentum: 12,
	}
}

func allScenes() []stage.Scene {
	return []stage.Scene{NewBars(), NewRipple(), NewWave()}
}

func TestScenesRenderRequestedHeight(t *testing.T) {
	for _, sc := range allScenes() {
		sc.ApplyTheme(stage.Theme{Accent: "#3CE074"})
		sc.Render(0.5, hotState(), 80, 12)
		view := sc.View()
		if view == "" {
			t.Fatalf("scene %s rendered an empty frame", sc.Name())
		}
		if got := strings.Count(view, "\n") + 1; got != 12 {
			t.Fatalf("scene %s rendered %d rows, want 12", sc.Name(), got)
		}
	}
}

func TestScenesDegenerateSurface(t *testing.T) {
	for _, sc := range allScenes() {
		sc.ApplyTheme(stage.Theme{Accent: "#3CE074"})
		sc.Render(0.5, hotState(), 0, 0)
		if sc.View() != "" {
			t.Fatalf("scene %s produced output on a zero-size surface", sc.Name())
		}
		sc.Render(0.6, hotState(), 1, 1)
		sc.Render(0.7, hotState(), 80, 24)
		if sc.View() == "" {
			t.Fatalf("scene %s stayed empty after recovering its surface", sc.Name())
		}
	}
}

func TestScenesAdvanceOverTime(t *testing.T) {
	for _, sc := range allScenes() {
		sc.ApplyTheme(stage.Theme{Accent: "#00AEFF"})
		sc.Render(0.1, hotState(), 60, 10)
		first := sc.View()
		for i := 2; i <= 10; i++ {
			sc.Render(float64(i)*0.1, hotState(), 60, 10)
		}
		if sc.View() == first {
			t.Fatalf("scene %s froze: identical frames a second apart", sc.Name())
		}
	}
}

func TestParseHex(t *testing.T) {
	if c := parseHex("#3CE074"); c.R != 0x3C || c.G != 0xE0 || c.B != 0x74 {
		t.Fatalf("parseHex(#3CE074) = %+v", c)
	}
	// Malformed input falls back to off-white rather than failing a frame.
	for _, in := range []string{"", "#12", "nope", "#GGGGGG"} {
		if c := parseHex(in); c.R != 235 || c.G != 235 || c.B != 235 {
			t.Fatalf("parseHex(%q) = %+v, want the off-white fallback", in, c)
		}
	}
}

func TestLerpRGB(t *testing.T) {
	a := rgb{R: 0, G: 100, B: 200}
	b := rgb{R: 200, G: 100, B: 0}
	if got := lerpRGB(a, b, 0); got != a {
		t.Fatalf("lerpRGB(t=0) = %+v, want %+v", got, a)
	}
	if got := lerpRGB(a, b, 1); got != b {
		t.Fatalf("lerpRGB(t=1) = %+v, want %+v", got, b)
	}
	mid := lerpRGB(a, b, 0.5)
	if mid.R != 100 || mid.G != 100 || mid.B != 100 {
		t.Fatalf("lerpRGB(t=0.5) = %+v, want 100/100/100", mid)
	}
}
