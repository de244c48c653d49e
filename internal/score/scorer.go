package score

import (
	"time"

	"git.lost.host/meutraa/vox/internal/game"
)

// Scorer persists the judgment log of finished sessions and replays
// them. This is a collaborator of the core loop, never on the hot path.
type Scorer interface {
	Init() error
	Deinit()

	// Save the input log and final tally of one session
	Save(beatmap *game.Beatmap, inputs []game.InputEvent, result game.State) error

	// Load all previous sessions for this beatmap
	Load(beatmap *game.Beatmap) ([]History, error)

	// Replay reruns a stored input log through a fresh judgement engine
	Replay(beatmap *game.Beatmap, history History, windows game.Windows) game.State
}

// History is one stored session.
type History struct {
	Sum      string
	PlayedAt time.Time
	Score    int
	MaxCombo int
	Inputs   []game.InputEvent
}
