package parser

import (
	"fmt"

	"git.lost.host/meutraa/vox/internal/game"
)

type Parser interface {
	Parse(file string) (*game.Beatmap, error)
}

// ParseError reports malformed beatmap syntax with its source position.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// ValidationError reports a syntactically valid beatmap with out-of-range
// or conflicting timings.
type ValidationError struct {
	Path string
	Line int
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}
