package render

import (
	"fmt"
	"strings"
	"time"

	"git.lost.host/meutraa/vox/internal/game"
	"git.lost.host/meutraa/vox/internal/judge"
	"git.lost.host/meutraa/vox/internal/theme"
)

// View is everything one frame depends on. The frame is a pure function
// of it: drawing never mutates clock, judge, or state.
type View struct {
	Now      time.Duration
	Duration time.Duration
	State    game.State
	Mean     float64 // seconds
	Stdev    float64
	Stray    uint64
	Dropped  uint64
	Notes    []judge.NoteView
	Title    string
	Paused   bool
}

// Frame lays out the horizontal approach track and the HUD.
type Frame struct {
	r  Renderer
	th theme.Theme

	columns, rows int
	sightCol      int
	trackRow      int
	scroll        float64 // columns per second of approach

	track []string // cell scratch, reused every frame
}

func NewFrame(r Renderer, th theme.Theme, scroll float64) *Frame {
	columns, rows := r.Size()
	return &Frame{
		r:        r,
		th:       th,
		columns:  columns,
		rows:     rows,
		sightCol: columns / 6,
		trackRow: rows / 2,
		scroll:   scroll,
	}
}

// Span is the time range of notes the frame can show around now.
func (f *Frame) Span(now time.Duration) (from, to time.Duration) {
	past := time.Duration(float64(f.sightCol) / f.scroll * float64(time.Second))
	ahead := time.Duration(float64(f.columns-f.sightCol) / f.scroll * float64(time.Second))
	return now - past, now + ahead
}

// SightRow and SightCol locate the hit marker for decorations.
func (f *Frame) SightRow() int { return f.trackRow }
func (f *Frame) SightCol() int { return f.sightCol }

// AddDecoration overlays transient content for a number of frames.
func (f *Frame) AddDecoration(row, col int, content string, frames int) {
	f.r.AddDecoration(row, col, content, frames)
}

func (f *Frame) Render(v View) {
	f.renderTrack(v)
	f.renderHUD(v)
	f.r.Flush()
}

func (f *Frame) renderTrack(v View) {
	if f.track == nil {
		f.track = make([]string, f.columns)
	}
	for i := range f.track {
		f.track[i] = " "
	}
	f.track[f.sightCol-1] = f.th.Sight()

	for _, nv := range v.Notes {
		if nv.Judged && nv.Verdict != game.Miss {
			continue
		}
		col := f.sightCol + int(float64((nv.Note.Time-v.Now))/float64(time.Second)*f.scroll)
		if col < 1 || col > f.columns {
			continue
		}
		f.track[col-1] = f.th.Note(nv.Note.Action, nv.Note.Denom, nv.Note.Roll)
	}

	f.r.Fill(f.trackRow, 1, strings.Join(f.track, ""))

	if v.Now < 0 {
		f.r.Fill(f.trackRow-2, f.sightCol, fmt.Sprintf("%4.1f", -v.Now.Seconds()))
	} else {
		f.r.Fill(f.trackRow-2, f.sightCol, "    ")
	}
	if v.Paused {
		f.r.Fill(f.trackRow-2, f.columns/2, "-- paused --")
	} else {
		f.r.Fill(f.trackRow-2, f.columns/2, "            ")
	}
}

func (f *Frame) renderHUD(v View) {
	col := 3
	width := 24

	f.r.Fill(1, col, pad(fmt.Sprintf("%v  %v / %v",
		v.Title, clamp(v.Now), clamp(v.Duration)), f.columns-col))

	base := f.trackRow + 3
	f.r.Fill(base, col, pad(fmt.Sprintf("   Score:  %7d", v.State.Score), width))
	f.r.Fill(base+1, col, pad(fmt.Sprintf("   Combo:  %4dx (max %dx)", v.State.Combo, v.State.MaxCombo), width+8))
	f.r.Fill(base+2, col, pad(fmt.Sprintf("Accuracy:  %6.2f%%", v.State.Accuracy()*100), width))
	f.r.Fill(base+3, col, fmt.Sprintf("  Health:  %s", f.th.HealthBar(v.State.Health, 20)))

	for vd := game.Verdict(0); vd < game.NumVerdicts; vd++ {
		f.r.Fill(base+5+int(vd), col, pad(fmt.Sprintf("%8v:  %5d", vd, v.State.Counts[vd]), width))
	}

	stats := base + 10
	f.r.Fill(stats, col, pad(fmt.Sprintf("    Mean:  %+6.1f ms", v.Mean*1000), width))
	f.r.Fill(stats+1, col, pad(fmt.Sprintf("   Stdev:  %6.1f ms", v.Stdev*1000), width))
	f.r.Fill(stats+2, col, pad(fmt.Sprintf("   Stray:  %5d", v.Stray), width))
	f.r.Fill(stats+3, col, pad(fmt.Sprintf(" Dropped:  %5d", v.Dropped), width))
}

func clamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
