package clock

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// click is a short decaying sine burst, generated so no sample asset
// ships with the binary.
type click struct {
	sr     beep.SampleRate
	freq   float64
	pos    int
	frames int
}

func (c *click) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && c.pos < c.frames {
		t := float64(c.pos) / float64(c.sr)
		env := 1 - float64(c.pos)/float64(c.frames)
		v := 0.25 * env * env * math.Sin(2*math.Pi*c.freq*t)
		samples[n] = [2]float64{v, v}
		n++
		c.pos++
	}
	return n, n > 0
}

func (c *click) Err() error { return nil }

// Hit mixes a percussive cue into playback: low for an open hit, high
// for a sharp one.
func (p *Playback) Hit(high bool) {
	freq := 180.0
	if high {
		freq = 680.0
	}
	speaker.Play(&click{
		sr:     p.format.SampleRate,
		freq:   freq,
		frames: p.format.SampleRate.N(60 * time.Millisecond),
	})
}
