package scene

import (
	"math"
	"strings"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/stage"
)

// Wave draws a phase-scrolling standing wave. Amplitude follows the
// loudness signal, a second harmonic rides on bass energy, scroll
// momentum speeds the phase up, and a beat pulse whitens the trace.
type Wave struct {
	phase    float64
	lastTime float64
	accent   rgb
	output   string
}

// NewWave creates the wave scene.
func NewWave() *Wave {
	return &Wave{}
}

func (w *Wave) Name() string { return "wave" }

func (w *Wave) ApplyTheme(th stage.Theme) {
	w.accent = parseHex(th.Accent)
}

func (w *Wave) Render(t float64, s analysis.ReactiveState, width, height int) {
	if width < 4 || height < 3 {
		w.output = ""
		return
	}

	dt := t - w.lastTime
	if dt < 0 || dt > 0.5 {
		dt = 1.0 / 30
	}
	w.lastTime = t
	w.phase += dt * (1.5 + s.ScrollMomentum*0.12)

	cols := width - 2
	amp := clamp01(s.Level*1.2+s.Pulse*0.3) * 0.9

	grid := make([][]bool, height)
	for r := range grid {
		grid[r] = make([]bool, cols)
	}

	mid := float64(height-1) / 2
	prev := -1
	for c := range cols {
		x := float64(c) / float64(cols-1)
		y := math.Sin(x*math.Pi*4+w.phase)*amp +
			math.Sin(x*math.Pi*9-w.phase*1.7)*s.Bass*0.4
		// Pointer Y bends the whole trace up or down.
		y += s.PointerY * -0.6
		row := int(math.Round(mid - y*mid))
		if row < 0 {
			row = 0
		}
		if row >= height {
			row = height - 1
		}
		grid[row][c] = true
		// Fill vertical gaps so steep slopes stay connected.
		if prev >= 0 {
			lo, hi := prev, row
			if lo > hi {
				lo, hi = hi, lo
			}
			for r := lo; r <= hi; r++ {
				grid[r][c] = true
			}
		}
		prev = row
	}

	paint := newPainter()
	hot := lerpRGB(w.accent, rgb{R: 255, G: 255, B: 255}, s.Pulse)

	rows := make([]string, height)
	for r := range height {
		var line strings.Builder
		for c := range cols {
			if grid[r][c] {
				dist := math.Abs(float64(r)-mid) / mid
				paint.set(&line, lerpRGB(hot, scaleRGB(w.accent, 0.5), dist))
				line.WriteRune('●')
			} else if r == int(mid) {
				paint.set(&line, scaleRGB(w.accent, 0.25))
				line.WriteRune('·')
			} else {
				line.WriteByte(' ')
			}
		}
		paint.reset(&line)
		rows[r] = line.String()
	}

	w.output = strings.Join(rows, "\n")
}

func (w *Wave) View() string { return w.output }
