package parser

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/vox/internal/game"
)

// DefaultParser reads the vox beatmap format:
//
//	#TITLE:Example;
//	#AUDIO:song.ogg;
//	#OFFSET:500;
//	#TEMPO:120;
//	#DIFFICULTY:normal;
//	#NOTES:
//	1000 don
//	1500 ka
//	2000 roll don 4 250
//
// Header values before #NOTES: are #KEY:value; pairs. Note lines are
// `<time-ms> <action>` or `<time-ms> roll <action> <count> <interval-ms>`,
// non-decreasing by time. OFFSET shifts every note onto the audio
// timeline. Lines starting with // are comments.
type DefaultParser struct{}

func (p *DefaultParser) Parse(file string) (*game.Beatmap, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return p.ParseBytes(file, data)
}

type sourcedNote struct {
	note game.Note
	line int
}

func (p *DefaultParser) ParseBytes(path string, data []byte) (*game.Beatmap, error) {
	bm := &game.Beatmap{Tempo: 120}
	offset := time.Duration(0)

	lines := strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n")

	inNotes := false
	var notes []sourcedNote
	lastTime := time.Duration(-1 << 62)
	lastLine := 0

	for i, raw := range lines {
		ln := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if !inNotes {
			if line == "#NOTES:" {
				inNotes = true
				continue
			}
			if !strings.HasPrefix(line, "#") || !strings.HasSuffix(line, ";") {
				return nil, &ParseError{Path: path, Line: ln, Msg: "expected #KEY:value; header or #NOTES:"}
			}
			key, value, ok := strings.Cut(strings.TrimSuffix(strings.TrimPrefix(line, "#"), ";"), ":")
			if !ok {
				return nil, &ParseError{Path: path, Line: ln, Msg: "header is missing ':'"}
			}
			value = strings.TrimSpace(value)
			switch key {
			case "TITLE":
				bm.Title = value
			case "AUDIO":
				bm.Audio = value
			case "DIFFICULTY":
				bm.Difficulty = value
			case "OFFSET":
				ms, err := strconv.ParseInt(value, 10, 64)
				if nil != err {
					return nil, &ParseError{Path: path, Line: ln, Msg: "OFFSET is not an integer millisecond count"}
				}
				offset = time.Duration(ms) * time.Millisecond
			case "TEMPO":
				tempo, err := strconv.ParseFloat(value, 64)
				if nil != err {
					return nil, &ParseError{Path: path, Line: ln, Msg: "TEMPO is not a number"}
				}
				if tempo <= 0 {
					return nil, &ValidationError{Path: path, Line: ln, Msg: "TEMPO must be positive"}
				}
				bm.Tempo = tempo
			default:
				return nil, &ParseError{Path: path, Line: ln, Msg: "unknown header key " + key}
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &ParseError{Path: path, Line: ln, Msg: "note line needs at least a time and an action"}
		}
		ms, err := strconv.ParseInt(fields[0], 10, 64)
		if nil != err {
			return nil, &ParseError{Path: path, Line: ln, Msg: "note time is not an integer millisecond count"}
		}
		t := time.Duration(ms) * time.Millisecond
		if t < 0 {
			return nil, &ValidationError{Path: path, Line: ln, Msg: "note time is negative"}
		}
		if t < lastTime {
			return nil, &ValidationError{Path: path, Line: ln,
				Msg: "note time goes backwards (line " + strconv.Itoa(lastLine) + " is later)"}
		}
		lastTime, lastLine = t, ln

		if fields[1] == "roll" {
			if len(fields) != 5 {
				return nil, &ParseError{Path: path, Line: ln, Msg: "roll line is `time roll action count interval-ms`"}
			}
			action, ok := game.ParseAction(fields[2])
			if !ok {
				return nil, &ParseError{Path: path, Line: ln, Msg: "unknown action " + fields[2]}
			}
			count, err := strconv.Atoi(fields[3])
			if nil != err || count < 1 {
				return nil, &ParseError{Path: path, Line: ln, Msg: "roll count must be a positive integer"}
			}
			interval, err := strconv.ParseInt(fields[4], 10, 64)
			if nil != err || interval <= 0 {
				return nil, &ParseError{Path: path, Line: ln, Msg: "roll interval must be a positive millisecond count"}
			}
			for j := 0; j < count; j++ {
				rt := t + time.Duration(int64(j)*interval)*time.Millisecond
				notes = append(notes, sourcedNote{
					note: game.Note{Time: offset + rt, Action: action, Denom: 8, Roll: true},
					line: ln,
				})
			}
			continue
		}

		action, ok := game.ParseAction(fields[1])
		if !ok {
			return nil, &ParseError{Path: path, Line: ln, Msg: "unknown action " + fields[1]}
		}
		if len(fields) != 2 {
			return nil, &ParseError{Path: path, Line: ln, Msg: "trailing fields after action"}
		}
		notes = append(notes, sourcedNote{
			note: game.Note{Time: offset + t, Action: action, Denom: denomFor(t, bm.Tempo)},
			line: ln,
		})
	}

	if !inNotes {
		return nil, &ParseError{Path: path, Line: len(lines), Msg: "missing #NOTES: section"}
	}
	if len(notes) == 0 {
		return nil, &ValidationError{Path: path, Line: len(lines), Msg: "beatmap has no notes"}
	}

	// Roll expansion can interleave with later lines.
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].note.Time < notes[j].note.Time })

	for i := 1; i < len(notes); i++ {
		prev, cur := notes[i-1], notes[i]
		if cur.note.Time == prev.note.Time && cur.note.Action == prev.note.Action {
			return nil, &ValidationError{Path: path, Line: cur.line,
				Msg: "two " + cur.note.Action.String() + " notes at " + cur.note.Time.String() +
					" (conflicts with line " + strconv.Itoa(prev.line) + ")"}
		}
	}

	bm.Notes = make([]game.Note, len(notes))
	for i, sn := range notes {
		bm.Notes[i] = sn.note
	}
	return bm, nil
}

// denomFor finds the beat subdivision a note time sits on, for theming.
func denomFor(t time.Duration, tempo float64) int {
	beat := t.Seconds() * tempo / 60.0
	for _, d := range []int{1, 2, 4, 8, 16} {
		scaled := beat * float64(d)
		if math.Abs(scaled-math.Round(scaled)) < 1e-3 {
			return d
		}
	}
	return -1
}
