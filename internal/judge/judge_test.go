package judge

import (
	"testing"
	"time"

	"git.lost.host/meutraa/vox/internal/game"
)

var testWindows = game.Windows{
	Perfect: 20 * time.Millisecond,
	Good:    60 * time.Millisecond,
	Bad:     120 * time.Millisecond,
}

func ms(n int64) time.Duration { return time.Duration(n) * time.Millisecond }

func donMap(times ...int64) *game.Beatmap {
	bm := &game.Beatmap{Title: "test"}
	for _, t := range times {
		bm.Notes = append(bm.Notes, game.Note{Time: ms(t), Action: game.Don})
	}
	return bm
}

func TestJudgeSequence(t *testing.T) {
	e := New(donMap(1000, 2000, 3000, 4000), testWindows)

	inputs := []game.InputEvent{
		{Time: ms(1005), Action: game.Don},  // 5ms late, inside Perfect
		{Time: ms(1990), Action: game.Don},  // 10ms early, still Perfect
		{Time: ms(3045), Action: game.Don},  // 45ms late, Good
	}

	verdicts := make(map[int]game.Verdict)
	for _, in := range inputs {
		if j, ok := e.Apply(in); ok {
			verdicts[j.NoteIndex] = j.Verdict
		}
	}
	for _, j := range e.Sweep(ms(5000)) {
		verdicts[j.NoteIndex] = j.Verdict
	}

	expected := []game.Verdict{game.Perfect, game.Perfect, game.Good, game.Miss}
	for i, want := range expected {
		got, ok := verdicts[i]
		if !ok || got != want {
			t.Errorf("note %d: got %v (judged %v), want %v", i, got, ok, want)
		}
	}
	if !e.Done() {
		t.Error("all notes should be judged")
	}
}

var tierTests = []struct {
	name    string
	input   int64
	verdict game.Verdict
}{
	{"exact is perfect", 1000, game.Perfect},
	{"late inside perfect", 1020, game.Perfect},
	{"just over perfect is good", 1021, game.Good},
	{"early good", 960, game.Good},
	{"just over good is bad", 1061, game.Bad},
	{"edge of bad", 1120, game.Bad},
}

func TestTiers(t *testing.T) {
	for _, test := range tierTests {
		e := New(donMap(1000), testWindows)
		j, ok := e.Apply(game.InputEvent{Time: ms(test.input), Action: game.Don})
		if !ok {
			t.Errorf("%v: input discarded as stray", test.name)
			continue
		}
		if j.Verdict != test.verdict {
			t.Errorf("%v: got %v, want %v", test.name, j.Verdict, test.verdict)
		}
	}
}

func TestOutsideWindowIsStray(t *testing.T) {
	e := New(donMap(1000), testWindows)
	if _, ok := e.Apply(game.InputEvent{Time: ms(1121), Action: game.Don}); ok {
		t.Error("input beyond the acceptance window should be stray")
	}
	if e.Stray() != 1 {
		t.Errorf("stray count = %d, want 1", e.Stray())
	}
}

func TestActionMustMatch(t *testing.T) {
	e := New(donMap(1000), testWindows)
	if _, ok := e.Apply(game.InputEvent{Time: ms(1000), Action: game.Ka}); ok {
		t.Error("ka input should not claim a don note")
	}
}

func TestSecondInputIsStray(t *testing.T) {
	e := New(donMap(1000), testWindows)

	if _, ok := e.Apply(game.InputEvent{Time: ms(990), Action: game.Don}); !ok {
		t.Fatal("first input should claim the note")
	}
	if _, ok := e.Apply(game.InputEvent{Time: ms(1010), Action: game.Don}); ok {
		t.Error("second input for a judged note should be stray")
	}
	if got := e.State().Judged(); got != 1 {
		t.Errorf("judged = %d, want 1", got)
	}
}

func TestEarliestPendingWins(t *testing.T) {
	e := New(donMap(1000, 1100), testWindows)
	j, ok := e.Apply(game.InputEvent{Time: ms(1060), Action: game.Don})
	if !ok {
		t.Fatal("input should match")
	}
	if j.NoteIndex != 0 {
		t.Errorf("claimed note %d, want the earliest (0)", j.NoteIndex)
	}
	if j.Offset != ms(60) {
		t.Errorf("offset = %v, want 60ms", j.Offset)
	}
}

func TestSweepMissesElapsedOnly(t *testing.T) {
	e := New(donMap(1000, 2000), testWindows)

	if out := e.Sweep(ms(1120)); len(out) != 0 {
		t.Errorf("window not elapsed yet, swept %d", len(out))
	}
	out := e.Sweep(ms(1121))
	if len(out) != 1 || out[0].NoteIndex != 0 || out[0].Verdict != game.Miss {
		t.Errorf("sweep = %v, want note 0 missed", out)
	}
	// never judged twice
	if out := e.Sweep(ms(5000)); len(out) != 1 || out[0].NoteIndex != 1 {
		t.Errorf("second sweep = %v, want only note 1", out)
	}
}

func TestLateInputCannotStealMissedNote(t *testing.T) {
	e := New(donMap(1000), testWindows)
	e.Sweep(ms(2000))

	if _, ok := e.Apply(game.InputEvent{Time: ms(1100), Action: game.Don}); ok {
		t.Error("a swept note must never be re-judged")
	}
	st := e.State()
	if st.Counts[game.Miss] != 1 || st.Judged() != 1 {
		t.Errorf("state = %+v, want exactly one miss", st.Counts)
	}
}

func TestFlushResolvesEverything(t *testing.T) {
	e := New(donMap(1000, 2000, 3000), testWindows)
	e.Apply(game.InputEvent{Time: ms(2000), Action: game.Don})
	e.Flush()

	if !e.Done() {
		t.Error("flush should resolve every pending note")
	}
	st := e.State()
	if st.Counts[game.Miss] != 2 || st.Counts[game.Perfect] != 1 {
		t.Errorf("counts = %v, want 2 miss 1 perfect", st.Counts)
	}
}

func TestComboAndState(t *testing.T) {
	e := New(donMap(1000, 2000, 3000, 4000), testWindows)

	e.Apply(game.InputEvent{Time: ms(1000), Action: game.Don})  // perfect
	e.Apply(game.InputEvent{Time: ms(2030), Action: game.Don})  // good
	if st := e.State(); st.Combo != 2 {
		t.Errorf("combo = %d, want 2", st.Combo)
	}
	e.Apply(game.InputEvent{Time: ms(3100), Action: game.Don}) // bad breaks combo
	if st := e.State(); st.Combo != 0 || st.MaxCombo != 2 {
		t.Errorf("combo = %d maxCombo = %d, want 0 and 2", st.Combo, st.MaxCombo)
	}
	if st := e.State(); st.Score != 16+8+2 {
		t.Errorf("score = %d, want 26", st.Score)
	}
}

func TestResetIsAtomicAndComplete(t *testing.T) {
	e := New(donMap(1000, 2000), testWindows)
	e.Apply(game.InputEvent{Time: ms(1000), Action: game.Don})
	e.Sweep(ms(5000))
	if !e.Done() {
		t.Fatal("setup: everything should be judged")
	}

	e.Reset()

	if e.Done() {
		t.Error("reset should return every note to pending")
	}
	st := e.State()
	if st.Score != 0 || st.Combo != 0 || st.Judged() != 0 || st.Health != game.MaxHealth {
		t.Errorf("state after reset = %+v", st)
	}
	if e.Stray() != 0 {
		t.Error("stray count should reset")
	}

	// the same note is claimable again after reset
	if _, ok := e.Apply(game.InputEvent{Time: ms(1000), Action: game.Don}); !ok {
		t.Error("note should be pending again after reset")
	}
}

func TestWindowSnapshot(t *testing.T) {
	e := New(donMap(1000, 2000, 3000), testWindows)
	e.Apply(game.InputEvent{Time: ms(1000), Action: game.Don})

	views := e.Window(ms(500), ms(2500))
	if len(views) != 2 {
		t.Fatalf("window = %d notes, want 2", len(views))
	}
	if !views[0].Judged || views[0].Verdict != game.Perfect {
		t.Errorf("note 0 view = %+v, want judged perfect", views[0])
	}
	if views[1].Judged {
		t.Error("note 1 should still be pending")
	}
}

func TestStats(t *testing.T) {
	e := New(donMap(1000, 2000), testWindows)
	e.Apply(game.InputEvent{Time: ms(1010), Action: game.Don})
	e.Apply(game.InputEvent{Time: ms(1990), Action: game.Don})

	mean, stdev := e.Stats()
	if mean != 0 {
		t.Errorf("mean = %v, want 0 (+10ms and -10ms)", mean)
	}
	if stdev < 0.014 || stdev > 0.015 {
		t.Errorf("stdev = %v, want ~0.01414", stdev)
	}
}
