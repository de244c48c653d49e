package testdata

import (
	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/parser"
)

// Chart is a small valid beatmap covering taps and a roll.
const Chart = `#TITLE:Fixture;
#AUDIO:fixture.ogg;
#TEMPO:120;
#DIFFICULTY:test;
#NOTES:
// intro
1000 don
1500 ka
2000 don
2500 ka
3000 don
4000 roll don 4 125
5000 ka
`

func Beatmap() (*game.Beatmap, error) {
	p := parser.DefaultParser{}
	return p.ParseBytes("fixture.vox", []byte(Chart))
}
