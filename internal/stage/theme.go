package stage

import "github.com/olivier-w/strobe/internal/analysis"

// Theme describes one scene's visual context: accent and background
// colors as hex strings plus a short label for the status line.
type Theme struct {
	Accent     string
	Background string
	Label      string
}

// Noop is the null scene: it satisfies the Scene capability while
// rendering nothing, standing in for a consumer whose surface is
// absent.
type Noop struct{}

func (Noop) Name() string                                     { return "none" }
func (Noop) Render(float64, analysis.ReactiveState, int, int) {}
func (Noop) View() string                                     { return "" }
func (Noop) ApplyTheme(Theme)                                 {}
