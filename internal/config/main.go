package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/alecthomas/kingpin.v2"

	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/voice"
)

// Command surface. Calibration values live in the config file; flags
// cover the per-run knobs.
var (
	Beatmap      = kingpin.Arg("beatmap", "Beatmap file or song directory").String()
	Delay        = kingpin.Flag("delay", "Silent lead-in before the song").Default("1.5s").Short('d').Duration()
	Offset       = kingpin.Flag("offset", "Global timing offset").Default("0ms").Short('o').Duration()
	FramePeriod  = kingpin.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()
	Scroll       = kingpin.Flag("scroll", "Scroll speed, columns per second").Default("60").Short('s').Float64()
	ConfigDir    = kingpin.Flag("config-dir", "Directory containing vox.cfg.json").Default(".").String()
	KeyboardOnly = kingpin.Flag("no-mic", "Skip the microphone, play with the keyboard").Bool()
)

func Init() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}

// Load reads the calibration file and sets defaults. A missing file is
// fine; everything has a default.
func Load(configDir string) error {
	// Tolerance tiers, milliseconds. Nested narrowest to widest; bad is
	// also the overall acceptance window.
	viper.SetDefault("windows.perfect", 20)
	viper.SetDefault("windows.good", 60)
	viper.SetDefault("windows.bad", 120)

	viper.SetDefault("input.device", "")
	viper.SetDefault("input.samplerate", 44100)
	viper.SetDefault("input.frame", 512)
	viper.SetDefault("input.periods", 3)
	viper.SetDefault("input.buffer", 128)

	viper.SetDefault("detector.delta", 0.05)
	viper.SetDefault("detector.decay", 0.8)
	viper.SetDefault("detector.splitRate", 0.12)
	viper.SetDefault("detector.refractory", 80)
	viper.SetDefault("detector.latency", 0)

	viper.SetDefault("audio.buffer", 100)
	viper.SetDefault("audio.retries", 3)

	viper.SetDefault("keys.don", "f")
	viper.SetDefault("keys.ka", "j")

	viper.SetDefault("log.dir", "./logs")
	viper.SetDefault("log.level", "info")

	viper.SetDefault("scores.path", "./vox_scores.db")

	viper.SetConfigName("vox.cfg")
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); nil != err {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Windows returns the configured judgement tiers.
func Windows() (game.Windows, error) {
	w := game.Windows{
		Perfect: time.Duration(viper.GetInt("windows.perfect")) * time.Millisecond,
		Good:    time.Duration(viper.GetInt("windows.good")) * time.Millisecond,
		Bad:     time.Duration(viper.GetInt("windows.bad")) * time.Millisecond,
	}
	if !w.Valid() {
		return w, fmt.Errorf("windows must nest: perfect <= good <= bad, got %v/%v/%v",
			w.Perfect, w.Good, w.Bad)
	}
	return w, nil
}

// Voice returns the configured capture and detection parameters.
func Voice() voice.Config {
	return voice.Config{
		SampleRate: uint32(viper.GetInt("input.samplerate")),
		FrameSize:  viper.GetInt("input.frame"),
		Periods:    uint32(viper.GetInt("input.periods")),
		Device:     viper.GetString("input.device"),
		Buffer:     viper.GetInt("input.buffer"),
		Detector: voice.DetectorConfig{
			Delta:      viper.GetFloat64("detector.delta"),
			Decay:      viper.GetFloat64("detector.decay"),
			SplitRate:  viper.GetFloat64("detector.splitRate"),
			Refractory: time.Duration(viper.GetInt("detector.refractory")) * time.Millisecond,
			Latency:    time.Duration(viper.GetInt("detector.latency")) * time.Millisecond,
		},
	}
}

func AudioBuffer() time.Duration {
	return time.Duration(viper.GetInt("audio.buffer")) * time.Millisecond
}

func AudioRetries() int { return viper.GetInt("audio.retries") }

func LogDir() string { return viper.GetString("log.dir") }

func LogLevel() string { return viper.GetString("log.level") }

func ScoresPath() string { return viper.GetString("scores.path") }

// Key returns the keyboard fallback rune for an action.
func Key(a game.Action) rune {
	s := viper.GetString("keys." + a.String())
	if s == "" {
		return 0
	}
	return []rune(s)[0]
}
