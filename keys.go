package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/bodul/xwplay/xword"
)

// ctrlCommands maps control chords to grid operations.
var ctrlCommands = map[tcell.Key]xword.Command{
	tcell.KeyCtrlK: xword.Check(xword.ScopeWord),
	tcell.KeyCtrlL: xword.Check(xword.ScopeCell),
	tcell.KeyCtrlP: xword.Check(xword.ScopePuzzle),
	tcell.KeyCtrlR: xword.Reveal(xword.ScopeWord),
	tcell.KeyCtrlT: xword.Reveal(xword.ScopeCell),
	tcell.KeyCtrlX: xword.Clear(xword.ScopeWord),
	tcell.KeyCtrlA: xword.Key(xword.CmdToggleAnswers),
}

// commandForKey translates a terminal key press into a game command.
// ok is false for keys the player ignores.
func commandForKey(ev *tcell.EventKey) (cmd xword.Command, ok bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == ' ':
			return xword.Key(xword.CmdToggleDirection), true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return xword.Letter(r), true
		}
		return cmd, false
	case tcell.KeyUp:
		return xword.Key(xword.CmdArrowUp), true
	case tcell.KeyDown:
		return xword.Key(xword.CmdArrowDown), true
	case tcell.KeyLeft:
		return xword.Key(xword.CmdArrowLeft), true
	case tcell.KeyRight:
		return xword.Key(xword.CmdArrowRight), true
	case tcell.KeyTab:
		return xword.Key(xword.CmdTab), true
	case tcell.KeyBacktab:
		return xword.Key(xword.CmdShiftTab), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return xword.Key(xword.CmdBackspace), true
	case tcell.KeyDelete:
		return xword.Key(xword.CmdDelete), true
	case tcell.KeyEnter:
		return xword.Key(xword.CmdToggleDirection), true
	}
	cmd, ok = ctrlCommands[ev.Key()]
	return cmd, ok
}

func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}
