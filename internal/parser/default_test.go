package parser_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/parser"
	"git.lost.host/meutraa/vox/internal/testdata"
)

func parse(t *testing.T, chart string) (*game.Beatmap, error) {
	t.Helper()
	p := parser.DefaultParser{}
	return p.ParseBytes("test.vox", []byte(chart))
}

func TestParseFixture(t *testing.T) {
	bm, err := testdata.Beatmap()
	require.NoError(t, err)

	assert.Equal(t, "Fixture", bm.Title)
	assert.Equal(t, "fixture.ogg", bm.Audio)
	assert.Equal(t, "test", bm.Difficulty)
	assert.Equal(t, 120.0, bm.Tempo)

	// 5 taps, a 4 hit roll, and a final ka
	require.Len(t, bm.Notes, 10)
	assert.Equal(t, 5*time.Second, bm.Duration())

	for i := 1; i < len(bm.Notes); i++ {
		assert.LessOrEqual(t, bm.Notes[i-1].Time, bm.Notes[i].Time, "notes must stay ordered")
	}

	rolls := 0
	for _, n := range bm.Notes {
		if n.Roll {
			rolls++
		}
	}
	assert.Equal(t, 4, rolls)
}

func TestOffsetShiftsNotes(t *testing.T) {
	bm, err := parse(t, `#OFFSET:500;
#NOTES:
1000 don
2000 roll ka 2 100
`)
	require.NoError(t, err)
	require.Len(t, bm.Notes, 3)
	assert.Equal(t, 1500*time.Millisecond, bm.Notes[0].Time)
	assert.Equal(t, 2500*time.Millisecond, bm.Notes[1].Time)
	assert.Equal(t, 2600*time.Millisecond, bm.Notes[2].Time)
}

func TestRollInterleavesWithLaterLines(t *testing.T) {
	bm, err := parse(t, `#NOTES:
1000 roll don 3 400
1500 ka
`)
	require.NoError(t, err)
	require.Len(t, bm.Notes, 4)

	times := make([]time.Duration, len(bm.Notes))
	for i, n := range bm.Notes {
		times[i] = n.Time
	}
	assert.Equal(t, []time.Duration{
		1000 * time.Millisecond,
		1400 * time.Millisecond,
		1500 * time.Millisecond,
		1800 * time.Millisecond,
	}, times)
	assert.Equal(t, game.Ka, bm.Notes[2].Action)
}

func TestDenomFollowsTempo(t *testing.T) {
	bm, err := parse(t, `#TEMPO:120;
#NOTES:
500 don
750 ka
1000 don
1063 ka
`)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.Notes[0].Denom)  // on the beat
	assert.Equal(t, 2, bm.Notes[1].Denom)  // half beat
	assert.Equal(t, 1, bm.Notes[2].Denom)
	assert.Equal(t, -1, bm.Notes[3].Denom) // off grid
}

var errorTests = []struct {
	name       string
	chart      string
	line       int
	validation bool
}{
	{
		"backwards time",
		"#NOTES:\n2000 don\n1000 ka\n",
		3, true,
	},
	{
		"negative time",
		"#NOTES:\n-100 don\n",
		2, true,
	},
	{
		"duplicate from roll expansion",
		"#NOTES:\n1000 roll don 2 500\n1500 don\n",
		3, true,
	},
	{
		"no notes",
		"#TITLE:Empty;\n#NOTES:\n",
		3, true,
	},
	{
		"zero tempo",
		"#TEMPO:0;\n#NOTES:\n1000 don\n",
		1, true,
	},
	{
		"unknown action",
		"#NOTES:\n1000 boom\n",
		2, false,
	},
	{
		"unterminated header",
		"#TITLE:Oops\n#NOTES:\n1000 don\n",
		1, false,
	},
	{
		"unknown header",
		"#SPEED:2;\n#NOTES:\n1000 don\n",
		1, false,
	},
	{
		"missing notes section",
		"#TITLE:Empty;\n",
		2, false,
	},
	{
		"bad roll arity",
		"#NOTES:\n1000 roll don 4\n",
		2, false,
	},
	{
		"zero roll interval",
		"#NOTES:\n1000 roll don 4 0\n",
		2, false,
	},
	{
		"trailing fields",
		"#NOTES:\n1000 don extra\n",
		2, false,
	},
}

func TestErrors(t *testing.T) {
	for _, test := range errorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parse(t, test.chart)
			require.Error(t, err)

			if test.validation {
				var verr *parser.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, test.line, verr.Line)
				assert.Equal(t, "test.vox", verr.Path)
			} else {
				var perr *parser.ParseError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, test.line, perr.Line)
			}
			assert.Contains(t, err.Error(), "test.vox:")
		})
	}
}

func TestErrorTypesAreDistinct(t *testing.T) {
	_, err := parse(t, "#NOTES:\n1000 boom\n")
	var verr *parser.ValidationError
	assert.False(t, errors.As(err, &verr), "a syntax error is not a validation error")
}
