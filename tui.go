package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/bodul/xwplay/xword"
)

const (
	cellWidth = 3
	gridTop   = 2
	gridLeft  = 1
)

var (
	styleText      = tcell.StyleDefault
	styleTitle     = tcell.StyleDefault.Bold(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleBlack     = tcell.StyleDefault.Background(tcell.ColorDarkGray)
	styleOpen      = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleWord      = tcell.StyleDefault.Background(tcell.ColorLightCyan).Foreground(tcell.ColorBlack)
	styleCursor    = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleActiveRow = tcell.StyleDefault.Reverse(true)
)

// player runs one puzzle in the terminal.
type player struct {
	screen  tcell.Screen
	game    *xword.Game
	status  string
	buttons tcell.ButtonMask
}

func newPlayer(screen tcell.Screen, p *xword.Puzzle) *player {
	pl := &player{screen: screen}
	pl.game = xword.NewGame(p, xword.WithWarnings(func(err error) {
		pl.status = err.Error()
	}))
	return pl
}

// runPlayer opens the terminal and plays p until the user quits.
func runPlayer(p *xword.Puzzle) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	screen.EnableMouse()
	screen.SetStyle(styleText)
	return newPlayer(screen, p).run()
}

func (pl *player) run() error {
	for {
		pl.draw()
		ev := pl.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if pl.handle(ev) {
			return nil
		}
	}
}

// handle processes one terminal event and reports whether to quit.
func (pl *player) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		pl.screen.Sync()
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		if cmd, ok := commandForKey(ev); ok {
			pl.apply(cmd)
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0 && pl.buttons&tcell.Button1 == 0
		pl.buttons = ev.Buttons()
		if pressed {
			if i, ok := pl.cellAt(ev.Position()); ok {
				pl.apply(xword.ClickCell(i))
			}
		}
	}
	return false
}

func (pl *player) apply(cmd xword.Command) {
	pl.status = ""
	if err := pl.game.Apply(cmd); err != nil {
		pl.status = err.Error()
	}
}

// cellAt maps screen coordinates to a grid index.
func (pl *player) cellAt(x, y int) (int, bool) {
	p := pl.game.Puzzle()
	if x < gridLeft || y < gridTop {
		return 0, false
	}
	row, col := y-gridTop, (x-gridLeft)/cellWidth
	if row >= p.Rows || col >= p.Cols {
		return 0, false
	}
	return row*p.Cols + col, true
}

func (pl *player) draw() {
	s := pl.screen
	s.Clear()
	w, h := s.Size()
	p := pl.game.Puzzle()
	snap := pl.game.Snapshot()

	title := p.Title
	if title == "" {
		title = "Mots croisés"
	}
	if p.Author != "" {
		title += " par " + p.Author
	}
	drawText(s, 0, 0, w, styleTitle, title)

	inWord := make(map[int]bool, len(snap.Highlighted))
	for _, i := range snap.Highlighted {
		inWord[i] = true
	}
	for i, c := range p.Cells {
		x, y := gridLeft+c.Col*cellWidth, gridTop+c.Row
		if c.Black {
			for dx := range cellWidth {
				s.SetContent(x+dx, y, ' ', nil, styleBlack)
			}
			continue
		}
		st := styleOpen
		switch {
		case i == snap.Selected:
			st = styleCursor
		case inWord[i]:
			st = styleWord
		}
		switch {
		case snap.Checked[i]:
			st = st.Foreground(tcell.ColorRed)
		case snap.Revealed[i]:
			st = st.Foreground(tcell.ColorBlue)
		case !snap.Editable[i]:
			st = st.Foreground(tcell.ColorGreen)
		}

		value := snap.Inputs[i]
		if snap.AllAnswersRevealed {
			value = snap.Answers[i]
		}
		ch := ' '
		if value != "" {
			ch = []rune(value)[0]
		}
		s.SetContent(x, y, ' ', nil, st)
		s.SetContent(x+1, y, ch, nil, st)
		s.SetContent(x+2, y, ' ', nil, st)
	}

	if c := pl.game.ActiveClue(); c != nil {
		drawText(s, 0, gridTop+p.Rows+1, w, styleTitle, clueLabel(c))
	}
	pl.drawClueList(gridLeft+p.Cols*cellWidth+2, gridTop, w, h-2)

	drawText(s, 0, h-1, w, styleStatus, pl.statusLine(snap))
	s.Show()
}

// drawClueList prints both clue lists in the column starting at x,
// scrolled so the active clue stays visible.
func (pl *player) drawClueList(x, top, w, bottom int) {
	if w-x < 12 || bottom <= top {
		return
	}
	p := pl.game.Puzzle()
	active := pl.game.ActiveClue()

	type line struct {
		text   string
		style  tcell.Style
		active bool
	}
	var lines []line
	for _, d := range []xword.Direction{xword.Across, xword.Down} {
		lines = append(lines, line{text: directionHeading(d), style: styleTitle})
		for k := range p.Clues[d] {
			c := &p.Clues[d][k]
			l := line{text: fmt.Sprintf("%d. %s", c.Number, c.Text), style: styleText}
			if c == active {
				l.style, l.active = styleActiveRow, true
			}
			lines = append(lines, l)
		}
	}

	avail := bottom - top
	start := 0
	for k, l := range lines {
		if l.active && k >= avail {
			start = k - avail + 1
		}
	}
	for k := start; k < len(lines) && k-start < avail; k++ {
		drawText(pl.screen, x, top+k-start, w, lines[k].style, lines[k].text)
	}
}

func (pl *player) statusLine(snap xword.Snapshot) string {
	switch {
	case pl.status != "":
		return pl.status
	case snap.Solved:
		return "Bravo, grille résolue ! Échap pour quitter."
	}
	return "Flèches : déplacer · Tab : définition suivante · Ctrl-K : vérifier · Ctrl-A : solutions · Échap : quitter"
}

func directionHeading(d xword.Direction) string {
	if d == xword.Down {
		return "Verticalement"
	}
	return "Horizontalement"
}

func clueLabel(c *xword.Clue) string {
	suffix := "H"
	if c.Direction == xword.Down {
		suffix = "V"
	}
	return fmt.Sprintf("%d%s. %s", c.Number, suffix, c.Text)
}

// drawText writes text at (x, y), truncated to end before column maxX.
func drawText(s tcell.Screen, x, y, maxX int, style tcell.Style, text string) {
	if x >= maxX {
		return
	}
	text = runewidth.Truncate(text, maxX-x, "…")
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
