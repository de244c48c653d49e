package game

import "fmt"

// Action is a vocal pattern the classifier can distinguish. The set is
// closed so matching logic can switch over it exhaustively.
type Action uint8

const (
	// Don is an open, low vocalization ("don", "ta").
	Don Action = iota
	// Ka is a sharp, high vocalization ("ka", "ts").
	Ka

	NumActions = 2
)

func (a Action) String() string {
	switch a {
	case Don:
		return "don"
	case Ka:
		return "ka"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction maps a beatmap token to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "don":
		return Don, true
	case "ka":
		return Ka, true
	}
	return 0, false
}
