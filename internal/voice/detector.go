// Package voice turns the live microphone signal into discrete,
// timestamped, latency-compensated action events.
package voice

import (
	"math"
	"sync/atomic"
	"time"

	"git.lost.host/meutraa/vox/internal/game"
)

// DetectorConfig tunes onset detection and classification. Values are
// calibration, not gameplay: they ship as config file defaults.
type DetectorConfig struct {
	// Delta is the RMS energy rise over the trailing average required
	// to declare an onset.
	Delta float64
	// Decay is the trailing-average smoothing factor in (0, 1); higher
	// values track the noise floor more slowly.
	Decay float64
	// SplitRate is the zero-crossing rate (crossings per sample)
	// separating the two vocal patterns: an open "don" sits below it,
	// a sharp "ka" above.
	SplitRate float64
	// Refractory suppresses re-triggering after an onset so one
	// utterance yields one event.
	Refractory time.Duration
	// Latency is the fixed capture-and-processing delay subtracted
	// from every timestamp, measured once at startup.
	Latency time.Duration
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Delta:      0.05,
		Decay:      0.8,
		SplitRate:  0.12,
		Refractory: 80 * time.Millisecond,
	}
}

// Detector is the pure classification core: one fixed-size frame in,
// zero or one events out. It allocates nothing per frame.
type Detector struct {
	cfg      DetectorConfig
	avg      float64
	last     time.Duration
	resetReq atomic.Bool
}

func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg, last: time.Duration(math.MinInt64 / 2)}
}

// Process classifies one frame captured at game time now. The returned
// event time is shifted backward by the calibrated latency so it shares
// the playback clock's time base.
func (d *Detector) Process(frame []float32, now time.Duration) (game.InputEvent, bool) {
	if len(frame) == 0 {
		return game.InputEvent{}, false
	}
	if d.resetReq.Swap(false) {
		d.avg = 0
		d.last = time.Duration(math.MinInt64 / 2)
	}

	var sumSq float64
	crossings := 0
	prev := frame[0]
	for _, s := range frame {
		sumSq += float64(s) * float64(s)
		if (s >= 0) != (prev >= 0) {
			crossings++
		}
		prev = s
	}
	energy := math.Sqrt(sumSq / float64(len(frame)))

	floor := d.avg
	d.avg = d.cfg.Decay*d.avg + (1-d.cfg.Decay)*energy

	t := now - d.cfg.Latency
	if energy < floor+d.cfg.Delta {
		return game.InputEvent{}, false
	}
	if t-d.last < d.cfg.Refractory {
		return game.InputEvent{}, false
	}
	d.last = t

	action := game.Don
	if float64(crossings)/float64(len(frame)) >= d.cfg.SplitRate {
		action = game.Ka
	}
	return game.InputEvent{
		Time:     t,
		Action:   action,
		Strength: (energy - floor) / d.cfg.Delta,
	}, true
}

// Reset clears the noise floor and refractory state on the next frame,
// for seek/restart. Safe to call from outside the capture thread.
func (d *Detector) Reset() {
	d.resetReq.Store(true)
}
