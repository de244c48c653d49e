// Package clock derives authoritative game time from the audio playback
// position, so what is judged and rendered always matches what is heard.
package clock

import (
	"sync"
	"time"

	"github.com/faiface/beep"
)

// Source reports a playback position in samples. beep's StreamSeeker
// satisfies it; reads must happen under the exclusion lock that guards
// the speaker's streaming goroutine.
type Source interface {
	Position() int
}

// Clock converts the hardware-reported sample position into a smooth,
// monotonic game time. Between audio buffer flips the position is
// interpolated with the wall clock, capped at one buffer so an underrun
// stops extrapolation instead of accumulating drift.
type Clock struct {
	mu sync.Mutex

	sr      beep.SampleRate
	src     Source
	excl    sync.Locker
	maxLead time.Duration

	running  bool
	base     time.Duration // last hardware-derived position
	baseWall time.Time
	out      time.Duration // last returned position, monotonic between seeks
}

// New builds a clock over src. excl guards Position reads (the speaker
// lock in production), maxLead is the speaker buffer duration.
func New(sr beep.SampleRate, src Source, excl sync.Locker, maxLead time.Duration) *Clock {
	return &Clock{sr: sr, src: src, excl: excl, maxLead: maxLead}
}

func (c *Clock) hardware() time.Duration {
	c.excl.Lock()
	pos := c.src.Position()
	c.excl.Unlock()
	return c.sr.D(pos)
}

// Now returns the current game-time position. Non-decreasing while
// running, except immediately after Seek.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return c.out
	}

	hw := c.hardware()
	wall := time.Now()
	if hw != c.base {
		// A new buffer was consumed, resynchronize to hardware.
		c.base, c.baseWall = hw, wall
	}

	est := c.base + wall.Sub(c.baseWall)
	if est > c.base+c.maxLead {
		// Hardware stalled, stop extrapolating.
		est = c.base + c.maxLead
	}
	if est < c.out {
		est = c.out
	}
	c.out = est
	return est
}

// Running reports whether the clock is advancing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Pause freezes the position. The caller pauses the audio stream itself.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Resume restarts interpolation from the current hardware position.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.hardware()
	c.baseWall = time.Now()
	if c.base > c.out {
		c.out = c.base
	}
	c.running = true
}

// Seek moves the position. The caller seeks the underlying stream first;
// this is the one place the position may go backwards.
func (c *Clock) Seek(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = d
	c.baseWall = time.Now()
	c.out = d
}
