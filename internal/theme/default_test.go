package theme

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/vox/internal/game"
)

func TestNotesAreDistinct(t *testing.T) {
	th := &DefaultTheme{}
	seen := map[string]string{}
	for _, test := range []struct {
		name   string
		action game.Action
		roll   bool
	}{
		{"don", game.Don, false},
		{"ka", game.Ka, false},
		{"roll", game.Don, true},
	} {
		glyph := th.Note(test.action, 1, test.roll)
		if other, dup := seen[glyph]; dup {
			t.Errorf("%v and %v share glyph %q", test.name, other, glyph)
		}
		seen[glyph] = test.name
	}
}

func TestOffBeatNotesAreDimmer(t *testing.T) {
	th := &DefaultTheme{}
	onBeat := th.Note(game.Don, 1, false)
	offGrid := th.Note(game.Don, -1, false)
	if onBeat == offGrid {
		t.Error("subdivision should change the note color")
	}
	if th.Note(game.Don, 99, false) != offGrid {
		t.Error("unknown subdivisions should render like off-grid notes")
	}
}

func TestVerdictTextForEveryTier(t *testing.T) {
	th := &DefaultTheme{}
	for v := game.Verdict(0); v < game.NumVerdicts; v++ {
		text := th.Verdict(v)
		if !strings.Contains(text, v.String()) {
			t.Errorf("verdict %v renders as %q", v, text)
		}
	}
}

var healthBarTests = []struct {
	health      int
	filled      int
	colorPrefix string
}{
	{100, 10, "\033[1;32m"},
	{61, 6, "\033[1;32m"},
	{60, 6, "\033[1;33m"},
	{26, 2, "\033[1;33m"},
	{25, 2, "\033[1;31m"},
	{0, 0, "\033[1;31m"},
}

func TestHealthBar(t *testing.T) {
	th := &DefaultTheme{}
	for _, test := range healthBarTests {
		bar := th.HealthBar(test.health, 10)
		if !strings.HasPrefix(bar, test.colorPrefix) {
			t.Errorf("health %d: bar %q has the wrong color", test.health, bar)
		}
		if got := strings.Count(bar, healthFull); got != test.filled {
			t.Errorf("health %d: %d cells filled, want %d", test.health, got, test.filled)
		}
		if got := strings.Count(bar, healthLow); got != 10-test.filled {
			t.Errorf("health %d: %d cells empty, want %d", test.health, got, 10-test.filled)
		}
	}
}
