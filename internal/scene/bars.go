// Package scene provides the visual consumers driven by the reactive
// state: each one implements stage.Scene and renders the current
// signals as a terminal frame.
package scene

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/stage"
)

const barCount = 24

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// Bars renders a bank of spring-smoothed vertical bars. Bar targets
// are synthesized from the loudness and bass signals with per-bar
// phase offsets; a beat pulse lifts the whole bank and the pointer
// tilts it.
type Bars struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
	accent rgb
	output string
}

// NewBars creates the bars scene.
func NewBars() *Bars {
	return &Bars{
		spring: harmonica.NewSpring(harmonica.FPS(30), 12.0, 0.7),
		pos:    make([]float64, barCount),
		vel:    make([]float64, barCount),
	}
}

func (b *Bars) Name() string { return "bars" }

func (b *Bars) ApplyTheme(th stage.Theme) {
	b.accent = parseHex(th.Accent)
}

func (b *Bars) Render(t float64, s analysis.ReactiveState, width, height int) {
	if width < 4 || height < 1 {
		b.output = ""
		return
	}

	tilt := s.PointerX // -0.5..0.5 shifts the emphasis across the bank
	drift := s.ScrollMomentum / 48.0

	for i := range barCount {
		x := float64(i) / float64(barCount-1)
		phase := t*2.4 + x*math.Pi*3 + drift*6
		wave := 0.5 + 0.5*math.Sin(phase)
		// Bass dominates the low end of the bank, body the rest.
		lowBias := 1 - x
		target := s.Level*wave + s.Bass*lowBias*0.8 + s.Pulse*0.4
		target *= 1 + tilt*(x*2-1)
		p, v := b.spring.Update(b.pos[i], b.vel[i], clamp01(target))
		b.pos[i], b.vel[i] = p, v
	}

	cols := width - 2
	colWidth := cols / barCount
	if colWidth < 1 {
		colWidth = 1
	}
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}

	paint := newPainter()
	hot := lerpRGB(b.accent, rgb{R: 255, G: 255, B: 255}, s.Pulse*0.8)

	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		for i := range barCount {
			if i > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			level := clamp01(b.pos[i]) * float64(height)
			fromBottom := float64(height - 1 - row)
			idx := 0
			if level > fromBottom+1 {
				idx = len(barGlyphs) - 1
			} else if level > fromBottom {
				idx = int((level - fromBottom) * float64(len(barGlyphs)-1))
			}
			if idx > 0 {
				heat := clamp01(b.pos[i])
				paint.set(&line, lerpRGB(scaleRGB(b.accent, 0.45), hot, heat))
			}
			for range colWidth - gap {
				line.WriteRune(barGlyphs[idx])
			}
		}
		paint.reset(&line)
		rows[row] = line.String()
	}

	b.output = strings.Join(rows, "\n")
}

func (b *Bars) View() string { return b.output }
