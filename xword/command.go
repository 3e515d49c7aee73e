package xword

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Apply errors.
var (
	// ErrUnknownCommand is returned for a command outside the enum.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadLetter is returned when a letter command does not carry exactly
	// one character.
	ErrBadLetter = errors.New("letter must be a single character")
)

// CommandKind enumerates every input a presentation layer may forward.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdLetter
	CmdBackspace
	CmdDelete
	CmdArrowUp
	CmdArrowDown
	CmdArrowLeft
	CmdArrowRight
	CmdTab
	CmdShiftTab
	CmdClickCell
	CmdClickClue
	CmdSetDirection
	CmdToggleDirection
	CmdCheck
	CmdReveal
	CmdClear
	CmdShowAnswers
	CmdToggleAnswers
)

var commandNames = [...]string{
	CmdNone:            "none",
	CmdLetter:          "letter",
	CmdBackspace:       "backspace",
	CmdDelete:          "delete",
	CmdArrowUp:         "arrow_up",
	CmdArrowDown:       "arrow_down",
	CmdArrowLeft:       "arrow_left",
	CmdArrowRight:      "arrow_right",
	CmdTab:             "tab",
	CmdShiftTab:        "shift_tab",
	CmdClickCell:       "click_cell",
	CmdClickClue:       "click_clue",
	CmdSetDirection:    "set_direction",
	CmdToggleDirection: "toggle_direction",
	CmdCheck:           "check",
	CmdReveal:          "reveal",
	CmdClear:           "clear",
	CmdShowAnswers:     "show_answers",
	CmdToggleAnswers:   "toggle_answers",
}

// String returns the wire name of k, or a numeric form when k is unknown.
func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
	return commandNames[k]
}

// MarshalText encodes k by its wire name.
func (k CommandKind) MarshalText() ([]byte, error) {
	if k <= CmdNone || int(k) >= len(commandNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, int(k))
	}
	return []byte(commandNames[k]), nil
}

// UnmarshalText decodes a wire name into k.
func (k *CommandKind) UnmarshalText(b []byte) error {
	for i, name := range commandNames {
		if i > 0 && name == string(b) {
			*k = CommandKind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, b)
}

// Scope selects the cells a check, reveal or clear applies to.
type Scope int

const (
	ScopeCell Scope = iota
	ScopeWord
	ScopePuzzle
)

// String returns the wire name of s.
func (s Scope) String() string {
	switch s {
	case ScopeWord:
		return "word"
	case ScopePuzzle:
		return "puzzle"
	}
	return "cell"
}

// MarshalText encodes s by its wire name.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a wire name into s.
func (s *Scope) UnmarshalText(b []byte) error {
	switch string(b) {
	case "cell", "square":
		*s = ScopeCell
	case "word":
		*s = ScopeWord
	case "puzzle":
		*s = ScopePuzzle
	default:
		return fmt.Errorf("unknown scope %q", b)
	}
	return nil
}

// Command is one input event. Only the fields relevant to Kind are read.
type Command struct {
	Kind      CommandKind `json:"type"`
	Char      string      `json:"char,omitempty"`
	Index     int         `json:"index,omitempty"`
	Clue      ClueRef     `json:"clue"`
	Direction Direction   `json:"direction"`
	Scope     Scope       `json:"scope"`
	On        bool        `json:"on,omitempty"`
}

// Command constructors used by the input adapters.

// Letter types r at the selected cell.
func Letter(r rune) Command { return Command{Kind: CmdLetter, Char: string(r)} }

// Key is a command that carries no argument, such as an arrow or Tab.
func Key(k CommandKind) Command { return Command{Kind: k} }

// ClickCell selects cell i, or toggles direction when it is already selected.
func ClickCell(i int) Command { return Command{Kind: CmdClickCell, Index: i} }

// ClickClue jumps to the start of the clue at ref.
func ClickClue(ref ClueRef) Command { return Command{Kind: CmdClickClue, Clue: ref} }

// Check flags wrong entries in s.
func Check(s Scope) Command { return Command{Kind: CmdCheck, Scope: s} }

// Reveal fills s with the solution.
func Reveal(s Scope) Command { return Command{Kind: CmdReveal, Scope: s} }

// Clear empties the editable cells of s.
func Clear(s Scope) Command { return Command{Kind: CmdClear, Scope: s} }

// ShowAnswers turns the whole-grid answer overlay on or off.
func ShowAnswers(on bool) Command { return Command{Kind: CmdShowAnswers, On: on} }

// SetDirection switches the cursor to d when the selected cell allows it.
func SetDirection(d Direction) Command { return Command{Kind: CmdSetDirection, Direction: d} }

// Apply runs cmd against the game. Letters are typed at the selected cell.
func (g *Game) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdLetter:
		if utf8.RuneCountInString(cmd.Char) != 1 {
			return fmt.Errorf("%w: %q", ErrBadLetter, cmd.Char)
		}
		r, _ := utf8.DecodeRuneInString(cmd.Char)
		if r == utf8.RuneError {
			return fmt.Errorf("%w: %q", ErrBadLetter, cmd.Char)
		}
		g.TypeCharacter(g.selected, r)
	case CmdBackspace:
		g.Backspace()
	case CmdDelete:
		g.Delete()
	case CmdArrowUp:
		g.ArrowMove(Down, false)
	case CmdArrowDown:
		g.ArrowMove(Down, true)
	case CmdArrowLeft:
		g.ArrowMove(Across, false)
	case CmdArrowRight:
		g.ArrowMove(Across, true)
	case CmdTab:
		g.TabToClue(true)
	case CmdShiftTab:
		g.TabToClue(false)
	case CmdClickCell:
		g.ClickCell(cmd.Index)
	case CmdClickClue:
		g.SelectClue(cmd.Clue)
	case CmdSetDirection:
		g.SetDirection(cmd.Direction)
	case CmdToggleDirection:
		g.ToggleDirection()
	case CmdCheck:
		g.CheckCells(g.ScopeCells(cmd.Scope))
	case CmdReveal:
		g.RevealCells(g.ScopeCells(cmd.Scope))
	case CmdClear:
		g.ClearCells(g.ScopeCells(cmd.Scope))
	case CmdShowAnswers:
		g.SetAllAnswersRevealed(cmd.On)
	case CmdToggleAnswers:
		g.SetAllAnswersRevealed(!g.allRevealed)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}
