// Package session runs the real-time loop: tick the clock, drain
// classified inputs into the judgement engine, sweep timeouts, render.
// Nothing here may block the capture or playback threads.
package session

import (
	"time"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"

	"git.lost.host/meutraa/vox/internal/clock"
	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/judge"
	"git.lost.host/meutraa/vox/internal/render"
	"git.lost.host/meutraa/vox/internal/theme"
)

const (
	// extra time after the last acceptance window before the session ends
	tail = 2 * time.Second

	verdictFrames = 20
	hitFrames     = 8
)

// Capture is the classifier surface the loop needs; nil means
// keyboard-only play.
type Capture interface {
	Dropped() uint64
	Reset()
}

type Config struct {
	FramePeriod time.Duration
	Offset      time.Duration
	KeyDon      rune
	KeyKa       rune
}

type Session struct {
	cfg Config
	log zerolog.Logger

	playback *clock.Playback
	engine   *judge.Engine
	frame    *render.Frame
	th       theme.Theme
	beatmap  *game.Beatmap

	events  <-chan game.InputEvent
	keys    <-chan keyboard.KeyEvent
	capture Capture

	inputs []game.InputEvent
	paused bool
}

func New(
	cfg Config,
	log zerolog.Logger,
	beatmap *game.Beatmap,
	playback *clock.Playback,
	engine *judge.Engine,
	frame *render.Frame,
	th theme.Theme,
	events <-chan game.InputEvent,
	keys <-chan keyboard.KeyEvent,
	capture Capture,
) *Session {
	return &Session{
		cfg:      cfg,
		log:      log.With().Str("part", "session").Logger(),
		beatmap:  beatmap,
		playback: playback,
		engine:   engine,
		frame:    frame,
		th:       th,
		events:   events,
		keys:     keys,
		capture:  capture,
	}
}

// Run plays the session to completion. finished is false when the
// player quit early. The returned input log backs the judgment log.
func (s *Session) Run() (result game.State, inputs []game.InputEvent, finished bool, err error) {
	end := s.beatmap.Duration() + tail
	s.playback.Start()

	for {
		tickStart := time.Now()
		deadline := tickStart.Add(s.cfg.FramePeriod)

		now := s.playback.Clock().Now() + s.cfg.Offset

		quit, rerr := s.drainKeys(now)
		if nil != rerr {
			return s.engine.State(), s.inputs, false, rerr
		}
		if quit {
			s.log.Info().Msg("player quit")
			return s.engine.State(), s.inputs, false, nil
		}

		s.drainEvents()

		for _, j := range s.engine.Sweep(now) {
			s.decorate(j)
		}

		if now > end {
			for _, j := range s.engine.Flush() {
				s.log.Debug().Int("note", j.NoteIndex).Msg("flushed as miss")
			}
			s.renderFrame(now)
			break
		}

		s.renderFrame(now)

		time.Sleep(time.Until(deadline))
	}

	result = s.engine.State()
	s.log.Info().
		Int("score", result.Score).
		Int("maxCombo", result.MaxCombo).
		Float64("accuracy", result.Accuracy()).
		Uint64("stray", s.engine.Stray()).
		Msg("session complete")
	return result, s.inputs, true, nil
}

// drainEvents consumes every classified input currently queued without
// blocking; the channel is the only link to the capture thread.
func (s *Session) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Session) apply(ev game.InputEvent) {
	s.inputs = append(s.inputs, ev)
	j, ok := s.engine.Apply(ev)
	if !ok {
		s.log.Debug().
			Dur("t", ev.Time).
			Stringer("action", ev.Action).
			Msg("stray input")
		return
	}
	s.decorate(j)
}

func (s *Session) decorate(j game.Judgment) {
	row, col := s.frame.SightRow(), s.frame.SightCol()
	s.frame.AddDecoration(row-1, col-3, s.th.Verdict(j.Verdict), verdictFrames)
	if j.Verdict != game.Miss {
		note := s.beatmap.Notes[j.NoteIndex]
		s.frame.AddDecoration(row, col-1, s.th.SightHit(note.Action), hitFrames)
		s.playback.Hit(note.Action == game.Ka)
	}
}

func (s *Session) drainKeys(now time.Duration) (quit bool, err error) {
	for i := 0; i < len(s.keys); i++ {
		key := <-s.keys
		if key.Err != nil {
			return false, key.Err
		}
		switch {
		case key.Key == keyboard.KeyEsc || key.Rune == 'q':
			return true, nil
		case key.Rune == 'r':
			s.restart()
		case key.Key == keyboard.KeySpace:
			s.togglePause()
		case key.Rune == s.cfg.KeyDon:
			s.apply(game.InputEvent{Time: now, Action: game.Don, Strength: 1})
		case key.Rune == s.cfg.KeyKa:
			s.apply(game.InputEvent{Time: now, Action: game.Ka, Strength: 1})
		}
	}
	return false, nil
}

// restart is the atomic seek-to-zero: playback pauses, judgement state
// and the input log reset, then the clock moves and playback resumes.
// No tick runs in between, so no thread can observe a half reset.
func (s *Session) restart() {
	s.playback.Pause()
	s.engine.Reset()
	if s.capture != nil {
		s.capture.Reset()
	}
	// Events classified before the reset belong to the abandoned run.
drain:
	for {
		select {
		case <-s.events:
		default:
			break drain
		}
	}
	s.inputs = s.inputs[:0]
	if err := s.playback.Seek(0); nil != err {
		s.log.Error().Err(err).Msg("unable to seek to start")
	}
	s.paused = false
	s.playback.Resume()
	s.log.Info().Msg("restarted")
}

func (s *Session) togglePause() {
	if s.paused {
		s.playback.Resume()
	} else {
		s.playback.Pause()
	}
	s.paused = !s.paused
}

func (s *Session) renderFrame(now time.Duration) {
	mean, stdev := s.engine.Stats()
	from, to := s.frame.Span(now)

	var dropped uint64
	if s.capture != nil {
		dropped = s.capture.Dropped()
	}

	s.frame.Render(render.View{
		Now:      now,
		Duration: s.beatmap.Duration(),
		State:    s.engine.State(),
		Mean:     mean,
		Stdev:    stdev,
		Stray:    s.engine.Stray(),
		Dropped:  dropped,
		Notes:    s.engine.Window(from, to),
		Title:    s.beatmap.Title,
		Paused:   s.paused,
	})
}
