package voice

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"git.lost.host/meutraa/vox/internal/game"
)

// Config describes the capture session feeding the detector.
type Config struct {
	SampleRate uint32
	FrameSize  int // samples per analysis frame
	Periods    uint32
	Device     string // substring match on the capture device name, empty = default
	Buffer     int    // event channel capacity
	Detector   DetectorConfig
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		FrameSize:  512,
		Periods:    3,
		Buffer:     128,
		Detector:   DefaultDetectorConfig(),
	}
}

// Classifier owns the microphone session. Classification runs inside the
// capture callback; results go out on a bounded channel that is never
// blocked on: when the consumer lags, events are dropped and counted.
type Classifier struct {
	cfg Config
	det *Detector
	now func() time.Duration
	log zerolog.Logger

	events  chan game.InputEvent
	dropped atomic.Uint64

	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running atomic.Bool

	frame []float32
	fill  int
}

// New builds a classifier; now supplies the shared game clock.
func New(cfg Config, now func() time.Duration, log zerolog.Logger) *Classifier {
	return &Classifier{
		cfg:    cfg,
		det:    NewDetector(cfg.Detector),
		now:    now,
		log:    log.With().Str("part", "voice").Logger(),
		events: make(chan game.InputEvent, cfg.Buffer),
		frame:  make([]float32, cfg.FrameSize),
	}
}

// Start opens the capture device and begins classifying. The detector's
// latency is calibrated once here from the device period configuration
// plus any configured correction.
func (c *Classifier) Start() error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if nil != err {
		return fmt.Errorf("unable to init capture context: %w", err)
	}
	c.ctx = ctx

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = c.cfg.SampleRate
	cfg.PeriodSizeInFrames = uint32(c.cfg.FrameSize)
	cfg.Periods = c.cfg.Periods
	cfg.Alsa.NoMMap = 1

	if c.cfg.Device != "" {
		if id, name, ok := c.findDevice(); ok {
			cfg.Capture.DeviceID = id.Pointer()
			c.log.Info().Str("device", name).Msg("selected capture device")
		} else {
			c.log.Warn().Str("device", c.cfg.Device).Msg("capture device not found, using default")
		}
	}

	// Capture pipeline delay: the device buffers Periods periods before
	// a frame reaches the callback.
	c.det.cfg.Latency += time.Duration(c.cfg.Periods) *
		time.Duration(c.cfg.FrameSize) * time.Second / time.Duration(c.cfg.SampleRate)

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: c.onFrames,
	})
	if nil != err {
		ctx.Uninit()
		ctx.Free()
		c.ctx = nil
		return fmt.Errorf("unable to open capture device: %w", err)
	}
	c.device = device

	if err := device.Start(); nil != err {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		c.ctx, c.device = nil, nil
		return fmt.Errorf("unable to start capture device: %w", err)
	}

	c.running.Store(true)
	c.log.Info().
		Uint32("rate", c.cfg.SampleRate).
		Int("frame", c.cfg.FrameSize).
		Dur("latency", c.det.cfg.Latency).
		Msg("capture started")
	return nil
}

func (c *Classifier) findDevice() (malgo.DeviceID, string, bool) {
	infos, err := c.ctx.Devices(malgo.Capture)
	if nil != err {
		return malgo.DeviceID{}, "", false
	}
	want := strings.ToLower(c.cfg.Device)
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name()), want) {
			return info.ID, info.Name(), true
		}
	}
	return malgo.DeviceID{}, "", false
}

// onFrames runs on the capture thread. It must stay within the frame's
// real-time budget: fixed-size buffers, no allocation, no locks shared
// with the render path.
func (c *Classifier) onFrames(_, in []byte, frames uint32) {
	if !c.running.Load() {
		return
	}
	for i := uint32(0); i < frames; i++ {
		s := int16(binary.LittleEndian.Uint16(in[2*i:]))
		c.frame[c.fill] = float32(s) / 32768
		c.fill++
		if c.fill < len(c.frame) {
			continue
		}
		c.fill = 0
		ev, ok := c.det.Process(c.frame, c.now())
		if !ok {
			continue
		}
		select {
		case c.events <- ev:
		default:
			c.dropped.Add(1)
		}
	}
}

// Events is the single-consumer channel of classified actions.
func (c *Classifier) Events() <-chan game.InputEvent { return c.events }

// Dropped is the number of events discarded on a full channel.
func (c *Classifier) Dropped() uint64 { return c.dropped.Load() }

// Reset clears detector state across a seek so stale refractory and
// noise-floor values do not leak into the restarted session.
func (c *Classifier) Reset() { c.det.Reset() }

// Close stops the device before freeing anything; safe to call twice.
func (c *Classifier) Close() {
	c.running.Store(false)
	if c.device == nil && c.ctx == nil {
		return
	}
	if c.device != nil {
		c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	if c.ctx != nil {
		c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
	c.log.Info().Uint64("dropped", c.dropped.Load()).Msg("capture stopped")
}
