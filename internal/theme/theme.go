package theme

import "git.lost.host/meutraa/vox/internal/game"

// Theme maps game entities to terminal glyphs. Strings may carry ANSI
// color; the renderer treats them as opaque cells.
type Theme interface {
	Note(action game.Action, denom int, roll bool) string
	Sight() string
	SightHit(action game.Action) string
	Verdict(v game.Verdict) string
	HealthBar(health, width int) string
}
