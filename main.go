package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"

	"git.lost.host/meutraa/vox/internal/clock"
	"git.lost.host/meutraa/vox/internal/config"
	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/judge"
	"git.lost.host/meutraa/vox/internal/logging"
	"git.lost.host/meutraa/vox/internal/parser"
	"git.lost.host/meutraa/vox/internal/render"
	"git.lost.host/meutraa/vox/internal/score"
	"git.lost.host/meutraa/vox/internal/session"
	"git.lost.host/meutraa/vox/internal/theme"
	"git.lost.host/meutraa/vox/internal/voice"
)

func main() {
	config.Init()
	if err := run(); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(*config.ConfigDir); nil != err {
		return err
	}
	windows, err := config.Windows()
	if nil != err {
		return err
	}

	log, closeLog, err := logging.Setup(config.LogDir(), config.LogLevel())
	if nil != err {
		return err
	}
	defer closeLog()

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Warn().Err(err).Msg("unable to close keyboard")
		}
	}()

	chartFile, err := resolveBeatmap(*config.Beatmap, keyChannel)
	if nil != err {
		return err
	}

	var psr parser.Parser = &parser.DefaultParser{}
	bm, err := psr.Parse(chartFile)
	if nil != err {
		return err
	}
	log.Info().Str("chart", chartFile).Str("title", bm.Title).
		Int("notes", len(bm.Notes)).Msg("beatmap loaded")

	audioFile, err := resolveAudio(chartFile, bm.Audio)
	if nil != err {
		return err
	}
	streamer, format, err := decode(audioFile)
	if nil != err {
		return err
	}

	if err := clock.InitSpeaker(format.SampleRate, config.AudioBuffer(), config.AudioRetries()); nil != err {
		streamer.Close()
		return err
	}
	pb := clock.NewPlayback(streamer, format, *config.Delay, config.AudioBuffer())
	defer func() {
		if err := pb.Close(); nil != err {
			log.Warn().Err(err).Msg("unable to close playback")
		}
	}()

	offset := *config.Offset
	var events <-chan game.InputEvent
	var capture session.Capture
	if !*config.KeyboardOnly {
		c := voice.New(config.Voice(), func() time.Duration {
			return pb.Clock().Now() + offset
		}, log)
		if err := c.Start(); nil != err {
			log.Warn().Err(err).Msg("microphone unavailable, falling back to keyboard")
		} else {
			// Registered after the playback defer: capture stops first.
			defer c.Close()
			events = c.Events()
			capture = c
		}
	}

	var scorer score.Scorer = score.NewDefaultScorer(config.ScoresPath())
	if err := scorer.Init(); nil != err {
		log.Warn().Err(err).Msg("score history unavailable")
		scorer = nil
	} else {
		defer scorer.Deinit()
		logHistory(log, scorer, bm)
	}

	engine := judge.New(bm, windows)

	var r render.Renderer = &render.DefaultRenderer{}
	var th theme.Theme = &theme.DefaultTheme{}
	if err := r.Init(); nil != err {
		return fmt.Errorf("unable to init renderer: %w", err)
	}
	frame := render.NewFrame(r, th, *config.Scroll)

	s := session.New(session.Config{
		FramePeriod: *config.FramePeriod,
		Offset:      offset,
		KeyDon:      config.Key(game.Don),
		KeyKa:       config.Key(game.Ka),
	}, log, bm, pb, engine, frame, th, events, keyChannel, capture)

	result, inputs, finished, serr := s.Run()

	// Restore the terminal before any stdout writing
	if err := r.Deinit(); nil != err {
		log.Warn().Err(err).Msg("unable to restore terminal")
	}
	if nil != serr {
		return serr
	}

	if finished {
		if scorer != nil {
			if err := scorer.Save(bm, inputs, result); nil != err {
				log.Warn().Err(err).Msg("unable to save session")
			}
		}
		printSummary(bm, result)
	}
	return nil
}

// resolveBeatmap turns the optional argument into one chart file,
// showing a selection menu when there is more than one candidate.
func resolveBeatmap(arg string, keyChannel <-chan keyboard.KeyEvent) (string, error) {
	dir := arg
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); nil == err && !info.IsDir() {
		return dir, nil
	} else if nil != err {
		return "", fmt.Errorf("unable to open %v: %w", dir, err)
	}

	var charts []string
	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		if path.Ext(info.Name()) == ".vox" {
			charts = append(charts, p)
		}
		return nil
	}); nil != err {
		return "", fmt.Errorf("unable to walk song directory: %w", err)
	}
	sort.Strings(charts)

	switch len(charts) {
	case 0:
		return "", errors.New("no .vox beatmap found")
	case 1:
		return charts[0], nil
	}

	for i, c := range charts {
		fmt.Printf("%2v) %v\n", i, c)
	}
	key := <-keyChannel
	index, err := strconv.ParseInt(string(key.Rune), 10, 64)
	if nil != err || index > int64(len(charts)-1) {
		return "", errors.New("no beatmap selected")
	}
	return charts[index], nil
}

func resolveAudio(chartFile, audio string) (string, error) {
	dir := filepath.Dir(chartFile)
	if audio != "" {
		return filepath.Join(dir, audio), nil
	}
	var found string
	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch path.Ext(info.Name()) {
		case ".mp3", ".ogg", ".wav":
			found = p
		}
		return nil
	}); nil != err {
		return "", fmt.Errorf("unable to walk song directory: %w", err)
	}
	if found == "" {
		return "", errors.New("unable to find .mp3/.ogg/.wav audio next to the beatmap")
	}
	return found, nil
}

func decode(audioFile string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(audioFile)
	if nil != err {
		return nil, beep.Format{}, err
	}
	switch path.Ext(audioFile) {
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return mp3.Decode(f)
	}
}

func logHistory(log zerolog.Logger, scorer score.Scorer, bm *game.Beatmap) {
	histories, err := scorer.Load(bm)
	if nil != err {
		log.Warn().Err(err).Msg("unable to load history")
		return
	}
	best := 0
	for _, h := range histories {
		if h.Score > best {
			best = h.Score
		}
	}
	log.Info().Int("sessions", len(histories)).Int("best", best).Msg("history loaded")
}

func printSummary(bm *game.Beatmap, result game.State) {
	fmt.Printf("%v [%v]\n", bm.Title, bm.Difficulty)
	fmt.Printf("     Score:  %v\n", result.Score)
	fmt.Printf(" Max Combo:  %vx\n", result.MaxCombo)
	fmt.Printf("  Accuracy:  %.2f%%\n", result.Accuracy()*100)
	for v := game.Verdict(0); v < game.NumVerdicts; v++ {
		fmt.Printf("%10v:  %v\n", v, result.Counts[v])
	}
}
