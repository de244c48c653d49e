package game

const (
	MaxHealth = 100

	healthGain    = 1
	healthLossBad = 2
	healthLoss    = 6
)

// State is the running session tally. It is mutated only by the
// judgement engine; everyone else reads snapshots.
type State struct {
	Score    int
	Combo    int
	MaxCombo int
	Health   int
	Counts   [NumVerdicts]int
}

// NewState returns the zero-progress state of a fresh session.
func NewState() State {
	return State{Health: MaxHealth}
}

// Apply folds one verdict into the tally.
func (s *State) Apply(v Verdict) {
	s.Score += v.Score()
	s.Counts[v]++

	if v.BreaksCombo() {
		s.Combo = 0
	} else {
		s.Combo++
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
	}

	switch v {
	case Perfect, Good:
		s.Health += healthGain
	case Bad:
		s.Health -= healthLossBad
	case Miss:
		s.Health -= healthLoss
	}
	if s.Health > MaxHealth {
		s.Health = MaxHealth
	}
	if s.Health < 0 {
		s.Health = 0
	}
}

// Judged is the number of notes that have reached a terminal verdict.
func (s State) Judged() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Accuracy is the score earned relative to an all-Perfect run over the
// judged notes, in [0, 1]. 1.0 before anything is judged.
func (s State) Accuracy() float64 {
	judged := s.Judged()
	if judged == 0 {
		return 1.0
	}
	return float64(s.Score) / float64(judged*Perfect.Score())
}
