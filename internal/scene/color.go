package scene

import (
	"fmt"
	"math"
	"os"
	"strings"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type rgb struct {
	R, G, B uint8
}

// detectProfile picks a color depth from the environment. Scenes render
// on the single frame goroutine, so the result is cached without locks.
var profileCached *colorProfile

func detectProfile() colorProfile {
	if profileCached != nil {
		return *profileCached
	}
	p := colorANSI16
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		p = colorNone
	} else {
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			p = colorTrueColor
		case strings.Contains(term, "256color"):
			p = colorANSI256
		case term == "", term == "dumb":
			p = colorNone
		}
	}
	profileCached = &p
	return p
}

// parseHex decodes "#RRGGBB" accent strings; bad input yields white so
// a mistyped theme still renders.
func parseHex(s string) rgb {
	var c rgb
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err == nil {
			return c
		}
	}
	return rgb{R: 235, G: 235, B: 235}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpRGB(a, b rgb, t float64) rgb {
	t = clamp01(t)
	return rgb{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

// scaleRGB darkens a color toward black; t=1 keeps it unchanged.
func scaleRGB(c rgb, t float64) rgb {
	t = clamp01(t)
	return rgb{
		R: uint8(float64(c.R) * t),
		G: uint8(float64(c.G) * t),
		B: uint8(float64(c.B) * t),
	}
}

// painter writes ANSI color sequences into a frame, skipping repeats of
// the current color. One painter lives per rendered frame.
type painter struct {
	profile colorProfile
	current uint32
}

func newPainter() painter {
	return painter{profile: detectProfile(), current: ^uint32(0)}
}

func (p *painter) set(sb *strings.Builder, c rgb) {
	if p.profile == colorNone {
		return
	}
	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if key == p.current {
		return
	}
	sb.WriteString(sequence(p.profile, c))
	p.current = key
}

func (p *painter) reset(sb *strings.Builder) {
	if p.profile == colorNone || p.current == ^uint32(0) {
		return
	}
	sb.WriteString("\x1b[0m")
	p.current = ^uint32(0)
}

var ansi16Palette = []rgb{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}

func sequence(profile colorProfile, c rgb) string {
	switch profile {
	case colorTrueColor:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		return fmt.Sprintf("\x1b[38;5;%dm", 16+36*r+6*g+b)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, p := range ansi16Palette {
			dr := float64(c.R) - float64(p.R)
			dg := float64(c.G) - float64(p.G)
			db := float64(c.B) - float64(p.B)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				bestDist = d
				best = i
			}
		}
		return fmt.Sprintf("\x1b[%dm", 30+best)
	default:
		return ""
	}
}
