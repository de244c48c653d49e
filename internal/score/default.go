package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/judge"
)

type DefaultScorer struct {
	db   *sql.DB
	path string
}

func NewDefaultScorer(path string) *DefaultScorer {
	return &DefaultScorer{path: path}
}

// InputsCompact stores one action's hit times as a column, which keeps
// the JSON log small for dense charts.
type InputsCompact struct {
	Action game.Action
	Times  []time.Duration
}

func compactInputs(inputs []game.InputEvent) []InputsCompact {
	ins := make([]InputsCompact, game.NumActions)
	for a := range ins {
		ins[a].Action = game.Action(a)
		ins[a].Times = []time.Duration{}
	}
	for _, i := range inputs {
		ins[i.Action].Times = append(ins[i.Action].Times, i.Time)
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.InputEvent {
	ins := []game.InputEvent{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.InputEvent{Action: i.Action, Time: t})
		}
	}
	return ins
}

func (s *DefaultScorer) Init() error {
	db, err := sql.Open("sqlite3", s.path)
	if nil != err {
		return fmt.Errorf("unable to open score db: %w", err)
	}

	initStatement := `
	create table if not exists sessions
	  (
		  id integer not null primary key,
		  sum text,
		  played_at integer,
		  score integer,
		  max_combo integer,
		  inputs bytearray
	  );
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create score table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// hashBeatmap fingerprints the note content, so edited charts get a
// fresh history.
func hashBeatmap(b *game.Beatmap) string {
	h := sha256.New()
	var buf [9]byte
	for _, n := range b.Notes {
		binary.LittleEndian.PutUint64(buf[:8], uint64(n.Time))
		buf[8] = byte(n.Action)
		h.Write(buf[:])
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultScorer) Save(beatmap *game.Beatmap, inputs []game.InputEvent, result game.State) error {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal input log: %w", err)
	}
	_, err = s.db.Exec(
		"insert into sessions(sum, played_at, score, max_combo, inputs) values(?, ?, ?, ?, ?)",
		hashBeatmap(beatmap), time.Now().Unix(), result.Score, result.MaxCombo, data)
	if nil != err {
		return fmt.Errorf("unable to save session: %w", err)
	}
	return nil
}

func (s *DefaultScorer) Load(beatmap *game.Beatmap) ([]History, error) {
	sum := hashBeatmap(beatmap)
	rows, err := s.db.Query(
		"select played_at, score, max_combo, inputs from sessions where sum = ? order by played_at", sum)
	if nil != err {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to load sessions: %w", err)
	}
	defer rows.Close()

	histories := []History{}
	for rows.Next() {
		var playedAt int64
		var score, maxCombo int
		var data []byte
		if err := rows.Scan(&playedAt, &score, &maxCombo, &data); nil != err {
			return nil, fmt.Errorf("unable to scan session: %w", err)
		}
		var ns []InputsCompact
		if err := json.Unmarshal(data, &ns); nil != err {
			continue
		}
		histories = append(histories, History{
			Sum:      sum,
			PlayedAt: time.Unix(playedAt, 0),
			Score:    score,
			MaxCombo: maxCombo,
			Inputs:   uncompactInputs(ns),
		})
	}
	return histories, rows.Err()
}

// Replay reruns a session's inputs against a fresh engine. The final
// tally depends only on the log, so stored scores can be re-derived
// after a windows change.
func (s *DefaultScorer) Replay(beatmap *game.Beatmap, history History, windows game.Windows) game.State {
	engine := judge.New(beatmap, windows)
	for _, in := range history.Inputs {
		engine.Apply(in)
	}
	engine.Flush()
	return engine.State()
}
