package theme

import (
	"fmt"
	"strings"

	"git.lost.host/meutraa/vox/internal/game"
)

type DefaultTheme struct{}

type color struct{ R, G, B uint8 }

const (
	donSym     = "●"
	kaSym      = "○"
	rollSym    = "◎"
	sightSym   = "⛶"
	sightHit   = "🞑"
	healthFull = "█"
	healthLow  = "░"
)

var (
	donColor  = color{236, 30, 0}
	kaColor   = color{0, 118, 236}
	rollColor = color{236, 195, 0}

	verdictText = map[game.Verdict]string{
		game.Perfect: "\033[38;5;153mPerfect\033[0m",
		game.Good:    "\033[1;32mGood\033[0m",
		game.Bad:     "\033[1;33mBad\033[0m",
		game.Miss:    "\033[1;31mMiss\033[0m",
	}

	// off-beat notes render dimmer, by subdivision like stepmania themes
	denomDim = map[int]float64{1: 1.0, 2: 0.9, 4: 0.8, 8: 0.7, 16: 0.6, -1: 0.5}
)

func paint(c color, dim float64, sym string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m",
		uint8(float64(c.R)*dim), uint8(float64(c.G)*dim), uint8(float64(c.B)*dim), sym)
}

func (t *DefaultTheme) Note(action game.Action, denom int, roll bool) string {
	dim, ok := denomDim[denom]
	if !ok {
		dim = 0.5
	}
	if roll {
		return paint(rollColor, dim, rollSym)
	}
	if action == game.Ka {
		return paint(kaColor, dim, kaSym)
	}
	return paint(donColor, dim, donSym)
}

func (t *DefaultTheme) Sight() string {
	return sightSym
}

func (t *DefaultTheme) SightHit(action game.Action) string {
	if action == game.Ka {
		return paint(kaColor, 1.0, sightHit)
	}
	return paint(donColor, 1.0, sightHit)
}

func (t *DefaultTheme) Verdict(v game.Verdict) string {
	return verdictText[v]
}

func (t *DefaultTheme) HealthBar(health, width int) string {
	if width < 1 {
		width = 1
	}
	filled := health * width / game.MaxHealth
	var b strings.Builder
	switch {
	case health > 60:
		b.WriteString("\033[1;32m")
	case health > 25:
		b.WriteString("\033[1;33m")
	default:
		b.WriteString("\033[1;31m")
	}
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString(healthFull)
		} else {
			b.WriteString(healthLow)
		}
	}
	b.WriteString("\033[0m")
	return b.String()
}
