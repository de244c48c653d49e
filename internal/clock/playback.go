package clock

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// StartupError reports an audio device that could not be brought up
// within the retry budget.
type StartupError struct {
	Attempts int
	Err      error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("audio device failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// InitSpeaker opens the output device with a bounded number of retries.
func InitSpeaker(sr beep.SampleRate, buffer time.Duration, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = speaker.Init(sr, sr.N(buffer)); nil == err {
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return &StartupError{Attempts: attempts, Err: err}
}

// speakerLock adapts the speaker package lock to sync.Locker.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Playback owns the output session for one beatmap: the decoded
// streamer, its pause control, and the clock derived from it. It is
// acquired at startup and released deterministically on every exit path.
type Playback struct {
	format   beep.Format
	streamer beep.StreamSeekCloser
	lead     *leadIn
	ctrl     *beep.Ctrl
	clock    *Clock
	buffer   time.Duration
}

// NewPlayback wraps a decoded streamer with a silent lead-in so game
// time starts at -lead and reaches zero when the song starts.
func NewPlayback(streamer beep.StreamSeekCloser, format beep.Format, lead, buffer time.Duration) *Playback {
	li := &leadIn{s: streamer, lead: format.SampleRate.N(lead)}
	ctrl := &beep.Ctrl{Streamer: li}
	c := New(format.SampleRate, li, speakerLock{}, buffer)
	// Game time begins at the start of the lead-in, not at zero.
	c.Seek(-format.SampleRate.D(li.lead))
	return &Playback{
		format:   format,
		streamer: streamer,
		lead:     li,
		ctrl:     ctrl,
		clock:    c,
		buffer:   buffer,
	}
}

// Clock is the game-time source for this session.
func (p *Playback) Clock() *Clock { return p.clock }

// Duration is the total song length, excluding the lead-in.
func (p *Playback) Duration() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Start queues the stream on the speaker and starts the clock.
func (p *Playback) Start() {
	speaker.Play(p.ctrl)
	p.clock.Resume()
}

// Pause stops streaming and freezes the clock.
func (p *Playback) Pause() {
	p.clock.Pause()
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Resume continues streaming from the paused position.
func (p *Playback) Resume() {
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.clock.Resume()
}

// Seek moves playback. Seeking to zero or earlier replays the lead-in.
// The caller resets dependent judgement state before resuming.
func (p *Playback) Seek(d time.Duration) error {
	speaker.Lock()
	err := p.lead.Seek(p.format.SampleRate.N(d))
	speaker.Unlock()
	if nil != err {
		return fmt.Errorf("unable to seek stream: %w", err)
	}
	if d <= 0 {
		// The lead-in replays, so game time rewinds to its start.
		d = -p.format.SampleRate.D(p.lead.lead)
	}
	p.clock.Seek(d)
	return nil
}

// Close stops the device before releasing the stream, so the decoder is
// never torn down under an active callback.
func (p *Playback) Close() error {
	p.clock.Pause()
	speaker.Clear()
	speaker.Close()
	return p.streamer.Close()
}

// leadIn prefixes a seekable stream with silence. Position is negative
// while the silence plays, matching a game time base where the song
// starts at zero.
type leadIn struct {
	s    beep.StreamSeeker
	lead int
	done int
}

func (l *leadIn) Stream(samples [][2]float64) (n int, ok bool) {
	for l.done < l.lead && n < len(samples) {
		samples[n] = [2]float64{}
		n++
		l.done++
	}
	if n == len(samples) {
		return n, true
	}
	m, sok := l.s.Stream(samples[n:])
	return n + m, sok || n > 0
}

func (l *leadIn) Err() error { return l.s.Err() }

func (l *leadIn) Len() int { return l.s.Len() + l.lead }

func (l *leadIn) Position() int { return l.s.Position() + l.done - l.lead }

// Seek moves to sample n of the song; n <= 0 rewinds through the full
// lead-in.
func (l *leadIn) Seek(n int) error {
	if n <= 0 {
		l.done = 0
		return l.s.Seek(0)
	}
	l.done = l.lead
	return l.s.Seek(n)
}
