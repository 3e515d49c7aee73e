package xword

import (
	"errors"
	"fmt"
	"slices"
	"unicode"
)

// ErrCorruptGraph is reported through the warning hook when a navigation
// lookup resolves outside the puzzle or a bounded scan gives up.
var ErrCorruptGraph = errors.New("corrupt navigation graph")

// Option configures a Game.
type Option func(*Game)

// WithStart selects cell i instead of the first playable cell.
func WithStart(i int) Option {
	return func(g *Game) {
		if g.p.Open(i) {
			g.selected = i
		}
	}
}

// WithDirection sets the initial direction.
func WithDirection(d Direction) Option {
	return func(g *Game) {
		if d == Across || d == Down {
			g.dir = d
		}
	}
}

// WithWarnings installs a hook receiving soft navigation warnings.
func WithWarnings(fn func(error)) Option {
	return func(g *Game) {
		if fn != nil {
			g.warn = fn
		}
	}
}

// Game is the cursor and input state of one solver on one puzzle. It is not
// safe for concurrent use; its owner serializes every call.
type Game struct {
	p           *Puzzle
	selected    int
	dir         Direction
	inputs      []string
	checked     []bool
	revealed    []bool
	frozen      []bool
	allRevealed bool
	warn        func(error)
}

// NewGame starts a game on p with every cell empty.
func NewGame(p *Puzzle, opts ...Option) *Game {
	n := p.Len()
	g := &Game{
		p:        p,
		selected: p.FirstOpen(),
		dir:      Across,
		inputs:   make([]string, n),
		checked:  make([]bool, n),
		revealed: make([]bool, n),
		frozen:   make([]bool, n),
		warn:     func(error) {},
	}
	for i, c := range p.Cells {
		if c.Black {
			g.inputs[i] = BlackSquare
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	g.normalize()
	return g
}

// Puzzle returns the puzzle being played.
func (g *Game) Puzzle() *Puzzle { return g.p }

// Selected returns the index of the cell under the cursor.
func (g *Game) Selected() int { return g.selected }

// Direction returns the direction the cursor types in.
func (g *Game) Direction() Direction { return g.dir }

// AllAnswersRevealed reports whether the answer overlay is on.
func (g *Game) AllAnswersRevealed() bool { return g.allRevealed }

// Input returns the entry at cell i, "" when empty or out of range.
func (g *Game) Input(i int) string {
	if !g.p.InBounds(i) {
		return ""
	}
	return g.inputs[i]
}

// Inputs returns a copy of every cell's entry. Black squares hold ".".
func (g *Game) Inputs() []string { return slices.Clone(g.inputs) }

// Checked returns the cells flagged by a check whose entry is still wrong.
func (g *Game) Checked() []bool { return slices.Clone(g.checked) }

// Revealed returns the cells whose answer was revealed.
func (g *Game) Revealed() []bool { return slices.Clone(g.revealed) }

// Editable returns, per cell, whether typing may still change it.
func (g *Game) Editable() []bool {
	out := make([]bool, len(g.inputs))
	for i := range out {
		out[i] = g.editable(i)
	}
	return out
}

// ActiveClue is the clue under the cursor in the current direction.
func (g *Game) ActiveClue() *Clue {
	return g.p.ClueAt(g.selected, g.dir)
}

// Highlighted returns the cells of the active clue.
func (g *Game) Highlighted() []int {
	if c := g.ActiveClue(); c != nil {
		return slices.Clone(c.Cells)
	}
	return nil
}

// IsSolved reports whether every open cell holds its solution.
func (g *Game) IsSolved() bool {
	for i, c := range g.p.Cells {
		if !c.Black && g.inputs[i] != g.p.Grid[i] {
			return false
		}
	}
	return true
}

func (g *Game) editable(i int) bool {
	return g.p.Open(i) && !g.frozen[i]
}

func (g *Game) setInput(i int, v string) {
	if g.inputs[i] != v {
		g.inputs[i] = v
		g.checked[i] = false
	}
}

// normalize keeps the direction on one the selected cell has a clue in.
func (g *Game) normalize() {
	if g.p.ClueAt(g.selected, g.dir) == nil && g.p.ClueAt(g.selected, g.dir.Other()) != nil {
		g.dir = g.dir.Other()
	}
}

// follow moves the cursor along a graph step, holding it in place when the
// step is out of bounds.
func (g *Game) follow(s Step) bool {
	if !g.p.Open(s.Index) || (s.Direction != Across && s.Direction != Down) {
		g.warn(fmt.Errorf("%w: step from %d to %d", ErrCorruptGraph, g.selected, s.Index))
		return false
	}
	g.selected = s.Index
	g.dir = s.Direction
	g.normalize()
	return true
}

// SelectCell moves the cursor to cell i, keeping the direction if the cell
// has a clue in it.
func (g *Game) SelectCell(i int) {
	if !g.p.Open(i) {
		return
	}
	g.selected = i
	g.normalize()
}

// ClickCell selects i, or toggles the direction when i is already selected.
func (g *Game) ClickCell(i int) {
	if !g.p.Open(i) {
		return
	}
	if i == g.selected {
		g.ToggleDirection()
		return
	}
	g.SelectCell(i)
}

// SetDirection switches direction if the selected cell has a clue in d.
func (g *Game) SetDirection(d Direction) {
	if g.p.ClueAt(g.selected, d) != nil {
		g.dir = d
	}
}

// ToggleDirection switches to the other direction when the selected cell has a clue there.
func (g *Game) ToggleDirection() {
	g.SetDirection(g.dir.Other())
}

// SelectClue jumps to the start of the clue at ref and takes its direction.
func (g *Game) SelectClue(ref ClueRef) {
	c := g.p.Clue(ref)
	if c == nil {
		return
	}
	g.dir = c.Direction
	g.selected = c.Start
}

// TypeCharacter enters ch at cell i and advances the cursor.
//
// Overwriting a filled cell never advances. Otherwise, once the clue is
// complete the cursor takes one step unless i ends the clue; while the clue
// still has holes it jumps to the next empty cell of the clue, wrapping to
// the clue's first cell.
func (g *Game) TypeCharacter(i int, ch rune) {
	if g.allRevealed || !g.editable(i) {
		return
	}
	if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
		return
	}
	if i != g.selected {
		g.selected = i
		g.normalize()
	}

	prev := g.inputs[i]
	g.setInput(i, string(unicode.ToUpper(ch)))
	if prev != "" {
		return
	}

	clue := g.ActiveClue()
	if clue == nil {
		return
	}
	if g.clueFilled(clue) {
		if i != clue.Last() {
			g.follow(g.p.Cells[i].Next[g.dir])
		}
		return
	}
	if next, ok := g.nextEmpty(clue, i); ok {
		g.selected = next
	}
}

func (g *Game) clueFilled(c *Clue) bool {
	for _, i := range c.Cells {
		if g.inputs[i] == "" {
			return false
		}
	}
	return true
}

// nextEmpty walks the Next pointers of c's direction from cell from and
// returns the first empty cell of c, wrapping to c's start at its end. The
// walk is bounded by the grid size.
func (g *Game) nextEmpty(c *Clue, from int) (int, bool) {
	i := from
	for range g.p.Len() {
		s := g.p.Cells[i].Next[c.Direction]
		if s.Direction == c.Direction && g.p.ClueAt(s.Index, c.Direction) == c {
			i = s.Index
		} else {
			i = c.Start
		}
		if !g.p.Open(i) {
			break
		}
		if g.inputs[i] == "" {
			return i, true
		}
		if i == from {
			return 0, false
		}
	}
	g.warn(fmt.Errorf("%w: no empty cell reachable from %d in %d %s", ErrCorruptGraph, from, c.Number, c.Direction))
	return 0, false
}

// firstEmpty returns the first empty cell of c, or its start.
func (g *Game) firstEmpty(c *Clue) int {
	for _, i := range c.Cells {
		if g.inputs[i] == "" {
			return i
		}
	}
	return c.Start
}

// Backspace clears the selected cell, or steps back inside the clue and
// clears the previous cell.
func (g *Game) Backspace() {
	if g.allRevealed {
		return
	}
	i := g.selected
	if g.inputs[i] != "" && g.editable(i) {
		g.setInput(i, "")
		return
	}
	clue := g.ActiveClue()
	if clue == nil || i == clue.Start {
		return
	}
	s := g.p.Cells[i].Prev[g.dir]
	if s.Direction != g.dir || g.p.ClueAt(s.Index, g.dir) != clue {
		g.warn(fmt.Errorf("%w: previous of %d leaves %d %s", ErrCorruptGraph, i, clue.Number, clue.Direction))
		return
	}
	if g.editable(s.Index) {
		g.setInput(s.Index, "")
	}
	g.selected = s.Index
}

// Delete clears the selected cell without moving.
func (g *Game) Delete() {
	if g.allRevealed || !g.editable(g.selected) {
		return
	}
	g.setInput(g.selected, "")
}

// ArrowMove handles an arrow key on axis. An arrow across the current
// direction only turns the cursor; along it, the cursor takes one step.
func (g *Game) ArrowMove(axis Direction, forward bool) {
	if axis != g.dir {
		g.SetDirection(axis)
		return
	}
	cell := g.p.Cells[g.selected]
	if forward {
		g.follow(cell.Next[g.dir])
	} else {
		g.follow(cell.Prev[g.dir])
	}
}

// TabToClue moves to the next or previous clue, crossing into the other
// list at either end, and lands on the clue's first empty cell.
func (g *Game) TabToClue(forward bool) {
	var target *Clue
	if clue := g.ActiveClue(); clue != nil {
		if forward {
			target = g.p.NextClue(clue)
		} else {
			target = g.p.PrevClue(clue)
		}
	} else {
		target = g.p.Clue(ClueRef{Direction: g.dir})
	}
	if target == nil {
		return
	}
	g.dir = target.Direction
	g.selected = g.firstEmpty(target)
}

// validIndices reports whether every index is inside the grid.
func (g *Game) validIndices(idx []int) bool {
	for _, i := range idx {
		if !g.p.InBounds(i) {
			return false
		}
	}
	return true
}

// CheckCells freezes correct entries and flags wrong ones until they change.
// Empty cells are left alone.
func (g *Game) CheckCells(idx []int) {
	if !g.validIndices(idx) {
		return
	}
	for _, i := range idx {
		if !g.editable(i) || g.inputs[i] == "" {
			continue
		}
		if g.inputs[i] == g.p.Grid[i] {
			g.frozen[i] = true
			g.checked[i] = false
		} else {
			g.checked[i] = true
		}
	}
}

// RevealCells writes the solution into each cell and freezes it.
func (g *Game) RevealCells(idx []int) {
	if !g.validIndices(idx) {
		return
	}
	for _, i := range idx {
		if !g.p.Open(i) {
			continue
		}
		g.inputs[i] = g.p.Grid[i]
		g.checked[i] = false
		g.revealed[i] = true
		g.frozen[i] = true
	}
}

// ClearCells blanks every editable cell; frozen cells keep their entry.
func (g *Game) ClearCells(idx []int) {
	if !g.validIndices(idx) {
		return
	}
	for _, i := range idx {
		if g.editable(i) {
			g.setInput(i, "")
		}
	}
}

// SetAllAnswersRevealed toggles the display-only answer overlay. Typing is
// ignored while it is on.
func (g *Game) SetAllAnswersRevealed(on bool) {
	g.allRevealed = on
}

// ScopeCells resolves a scope against the cursor.
func (g *Game) ScopeCells(s Scope) []int {
	switch s {
	case ScopeCell:
		return []int{g.selected}
	case ScopeWord:
		return g.Highlighted()
	case ScopePuzzle:
		all := make([]int, g.p.Len())
		for i := range all {
			all[i] = i
		}
		return all
	}
	return nil
}

// Snapshot is a read-only view of a game for presentation layers.
type Snapshot struct {
	Selected           int       `json:"selected"`
	Direction          Direction `json:"direction"`
	ActiveClue         *ClueRef  `json:"active_clue,omitempty"`
	Highlighted        []int     `json:"highlighted"`
	Inputs             []string  `json:"inputs"`
	Checked            []bool    `json:"checked"`
	Editable           []bool    `json:"editable"`
	Revealed           []bool    `json:"revealed"`
	AllAnswersRevealed bool      `json:"all_answers_revealed"`
	Answers            []string  `json:"answers,omitempty"`
	Solved             bool      `json:"solved"`
}

// Snapshot copies the current state. Solutions are only included while the
// answer overlay is on.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Selected:           g.selected,
		Direction:          g.dir,
		Highlighted:        g.Highlighted(),
		Inputs:             g.Inputs(),
		Checked:            g.Checked(),
		Editable:           g.Editable(),
		Revealed:           g.Revealed(),
		AllAnswersRevealed: g.allRevealed,
		Solved:             g.IsSolved(),
	}
	if c := g.ActiveClue(); c != nil {
		ref := c.Ref()
		s.ActiveClue = &ref
	}
	if g.allRevealed {
		s.Answers = slices.Clone(g.p.Grid)
	}
	return s
}
