package scene

import (
	"math"
	"strings"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/stage"
)

const (
	maxRings      = 6
	ringSpeed     = 22.0 // dot-radius units per second
	ringLife      = 1.6  // seconds
	ripplePadDots = 2
)

// Braille dot layout per cell, (col, row) → bit offset.
var rippleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

type ring struct {
	born float64
	x, y float64 // center in dot coordinates at birth
}

// Ripple paints expanding rings on a braille dot canvas. A rising beat
// pulse spawns a ring at the pointer position; ring brightness follows
// the pulse envelope and a faint bass halo breathes at the center.
type Ripple struct {
	rings     []ring
	prevPulse float64
	accent    rgb
	output    string
}

// NewRipple creates the ripple scene.
func NewRipple() *Ripple {
	return &Ripple{}
}

func (rp *Ripple) Name() string { return "ripple" }

func (rp *Ripple) ApplyTheme(th stage.Theme) {
	rp.accent = parseHex(th.Accent)
}

func (rp *Ripple) Render(t float64, s analysis.ReactiveState, width, height int) {
	if width < 4 || height < 2 {
		rp.output = ""
		return
	}

	cols := width - 2
	dotCols := cols * 2
	dotRows := height * 4

	cx := (0.5 + s.PointerX) * float64(dotCols-1)
	cy := (0.5 + s.PointerY) * float64(dotRows-1)

	// A hard reset to 1 only happens on a detected beat, so a rising
	// pulse is the trigger signal.
	if s.Pulse > rp.prevPulse {
		rp.rings = append(rp.rings, ring{born: t, x: cx, y: cy})
		if len(rp.rings) > maxRings {
			rp.rings = rp.rings[len(rp.rings)-maxRings:]
		}
	}
	rp.prevPulse = s.Pulse

	// Drop expired rings.
	live := rp.rings[:0]
	for _, r := range rp.rings {
		if t-r.born < ringLife {
			live = append(live, r)
		}
	}
	rp.rings = live

	dots := make([]float64, dotCols*dotRows)
	for _, r := range rp.rings {
		age := t - r.born
		radius := ripplePadDots + age*ringSpeed
		fade := 1 - age/ringLife
		stampRing(dots, dotCols, dotRows, r.x, r.y, radius, fade)
	}
	// Bass halo around the pointer.
	if s.Bass > 0.02 {
		stampDisc(dots, dotCols, dotRows, cx, cy, 2+s.Bass*6, s.Bass*0.7)
	}

	paint := newPainter()
	bright := lerpRGB(rp.accent, rgb{R: 255, G: 255, B: 255}, s.Pulse*0.6)

	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		for col := range cols {
			var pattern uint
			cellGlow := 0.0
			for dx := range 2 {
				for dy := range 4 {
					d := dots[(row*4+dy)*dotCols+col*2+dx]
					if d > 0.08 {
						pattern |= 1 << rippleBits[dx][dy]
						if d > cellGlow {
							cellGlow = d
						}
					}
				}
			}
			if pattern != 0 {
				paint.set(&line, lerpRGB(scaleRGB(rp.accent, 0.35), bright, clamp01(cellGlow)))
			}
			line.WriteRune(rune(0x2800 + pattern))
		}
		paint.reset(&line)
		rows[row] = line.String()
	}

	rp.output = strings.Join(rows, "\n")
}

func (rp *Ripple) View() string { return rp.output }

// stampRing accumulates a one-dot-thick circle into the dot field.
func stampRing(dots []float64, dotCols, dotRows int, cx, cy, radius, strength float64) {
	steps := int(2 * math.Pi * radius)
	if steps < 8 {
		steps = 8
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		// Terminal cells are about twice as tall as wide; squash the
		// vertical radius so rings look round.
		x := int(cx + radius*math.Cos(a))
		y := int(cy + radius*math.Sin(a)*0.9)
		if x < 0 || x >= dotCols || y < 0 || y >= dotRows {
			continue
		}
		idx := y*dotCols + x
		if strength > dots[idx] {
			dots[idx] = strength
		}
	}
}

// stampDisc fills a solid disc with strength falling off toward the rim.
func stampDisc(dots []float64, dotCols, dotRows int, cx, cy, radius, strength float64) {
	r := int(radius) + 1
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Hypot(float64(dx), float64(dy)/0.9)
			if d > radius {
				continue
			}
			x, y := int(cx)+dx, int(cy)+dy
			if x < 0 || x >= dotCols || y < 0 || y >= dotRows {
				continue
			}
			v := strength * (1 - d/radius)
			idx := y*dotCols + x
			if v > dots[idx] {
				dots[idx] = v
			}
		}
	}
}
