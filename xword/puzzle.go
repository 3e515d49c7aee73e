// Package xword is the crossword navigation engine: it loads a raw puzzle,
// indexes every cell into its across and down clues, builds the navigation
// graph once, and drives the cursor and input state of a game.
package xword

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlackSquare marks a non-playable cell in a solution grid.
const BlackSquare = "."

// Load errors. Every error returned by Load wraps one of these.
var (
	ErrMalformedClue = errors.New("malformed clue")
	ErrDimensions    = errors.New("inconsistent dimensions")
	ErrGrid          = errors.New("invalid grid")
	ErrDuplicateClue = errors.New("duplicate clue number")
	ErrMissingClue   = errors.New("missing clue text")
	ErrUnknownClue   = errors.New("clue has no cells")
)

// Direction is one of the two clue directions.
type Direction int

const (
	Across Direction = iota
	Down
)

// Other returns the opposite direction.
func (d Direction) Other() Direction {
	if d == Across {
		return Down
	}
	return Across
}

// String returns "across" or "down".
func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "across"
}

// MarshalText encodes d by its name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "across" or "down", or their initials, into d.
func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "across", "a":
		*d = Across
	case "down", "d":
		*d = Down
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Size is the grid dimensions of a raw puzzle.
type Size struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// RawClues holds the clue strings of a raw puzzle, each formatted "N. text".
type RawClues struct {
	Across []string `json:"across" yaml:"across"`
	Down   []string `json:"down" yaml:"down"`
}

// Raw is a puzzle as found in a puzzle file, before any validation.
type Raw struct {
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
	Date     string   `json:"date,omitempty" yaml:"date,omitempty"`
	Size     Size     `json:"size" yaml:"size"`
	Grid     []string `json:"grid" yaml:"grid"`
	Gridnums []int    `json:"gridnums" yaml:"gridnums"`
	Clues    RawClues `json:"clues" yaml:"clues"`
}

// Puzzle is a loaded puzzle with its cell table, clue lists and navigation
// graph. It is never modified after Load returns.
type Puzzle struct {
	Title    string    `json:"title,omitempty"`
	Author   string    `json:"author,omitempty"`
	Date     string    `json:"date,omitempty"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Grid     []string  `json:"-"`
	Gridnums []int     `json:"gridnums"`
	Cells    []Cell    `json:"cells"`
	Clues    [2][]Clue `json:"-"`
}

// Cell is one grid square. Clue holds the number of the owning clue per
// direction, zero when the cell has none in that direction.
type Cell struct {
	Index  int     `json:"index"`
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	Number int     `json:"number,omitempty"`
	Black  bool    `json:"black,omitempty"`
	Clue   [2]int  `json:"clue"`
	Next   [2]Step `json:"-"`
	Prev   [2]Step `json:"-"`

	pos [2]int // clue list position per direction, -1 when unclued
}

// Step is the target of a one-cell move. Direction is the direction the
// cursor has after the move, which differs from the requested one when the
// move runs off the end of a clue list.
type Step struct {
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

// ClueRef addresses a clue by direction and position in that direction's list.
type ClueRef struct {
	Direction Direction `json:"direction"`
	Pos       int       `json:"pos"`
}

// Clue is a numbered entry and the run of cells it covers, in reading order.
type Clue struct {
	Number    int       `json:"number"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	Pos       int       `json:"pos"`
	Cells     []int     `json:"cells"`
	Start     int       `json:"start"`
	Next      ClueRef   `json:"-"`
	Prev      ClueRef   `json:"-"`
}

// Ref returns the address of c.
func (c *Clue) Ref() ClueRef {
	return ClueRef{Direction: c.Direction, Pos: c.Pos}
}

// Last returns the index of the final cell of the clue.
func (c *Clue) Last() int {
	return c.Cells[len(c.Cells)-1]
}

// ParseRawClue splits "N. text" at its first dot.
func ParseRawClue(s string) (int, string, error) {
	dot := strings.Index(s, ".")
	if dot < 0 {
		return 0, "", fmt.Errorf("%w: no number delimiter in %q", ErrMalformedClue, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:dot]))
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("%w: bad number in %q", ErrMalformedClue, s)
	}
	return n, strings.TrimSpace(s[dot+1:]), nil
}

// Load validates a raw puzzle and derives its cell table, clues and
// navigation graph. It refuses to build a Puzzle from inconsistent input.
func Load(raw *Raw) (*Puzzle, error) {
	rows, cols := raw.Size.Rows, raw.Size.Cols
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrDimensions, rows, cols)
	}
	n := rows * cols
	if len(raw.Grid) != n {
		return nil, fmt.Errorf("%w: grid has %d cells, want %d", ErrDimensions, len(raw.Grid), n)
	}
	if len(raw.Gridnums) != n {
		return nil, fmt.Errorf("%w: gridnums has %d cells, want %d", ErrDimensions, len(raw.Gridnums), n)
	}

	p := &Puzzle{
		Title:    raw.Title,
		Author:   raw.Author,
		Date:     raw.Date,
		Rows:     rows,
		Cols:     cols,
		Grid:     make([]string, n),
		Gridnums: make([]int, n),
	}
	for i, s := range raw.Grid {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return nil, fmt.Errorf("%w: empty square at %d", ErrGrid, i)
		}
		num := raw.Gridnums[i]
		if num < 0 {
			return nil, fmt.Errorf("%w: negative number at %d", ErrGrid, i)
		}
		if s == BlackSquare && num != 0 {
			return nil, fmt.Errorf("%w: black square %d is numbered %d", ErrGrid, i, num)
		}
		if s != BlackSquare && !playable(s) {
			return nil, fmt.Errorf("%w: square %d holds %q", ErrGrid, i, s)
		}
		p.Grid[i] = s
		p.Gridnums[i] = num
	}

	for _, d := range []Direction{Across, Down} {
		list := raw.Clues.Across
		if d == Down {
			list = raw.Clues.Down
		}
		clues, err := parseClueList(d, list)
		if err != nil {
			return nil, err
		}
		p.Clues[d] = clues
	}

	if err := p.index(); err != nil {
		return nil, err
	}
	p.link()
	return p, nil
}

// playable reports whether s is a single letter or digit, the only
// entries TypeCharacter can produce.
func playable(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseClueList(d Direction, list []string) ([]Clue, error) {
	clues := make([]Clue, 0, len(list))
	seen := make(map[int]bool, len(list))
	for pos, s := range list {
		num, text, err := ParseRawClue(s)
		if err != nil {
			return nil, fmt.Errorf("%s clue %d: %w", d, pos, err)
		}
		if seen[num] {
			return nil, fmt.Errorf("%w: %d %s", ErrDuplicateClue, num, d)
		}
		seen[num] = true
		clues = append(clues, Clue{Number: num, Direction: d, Text: text, Pos: pos})
	}
	return clues, nil
}

// Len returns the number of cells in the grid.
func (p *Puzzle) Len() int {
	return len(p.Cells)
}

// InBounds reports whether i addresses a cell of the grid.
func (p *Puzzle) InBounds(i int) bool {
	return i >= 0 && i < len(p.Cells)
}

// Open reports whether i addresses a playable cell.
func (p *Puzzle) Open(i int) bool {
	return p.InBounds(i) && !p.Cells[i].Black
}

// Clue returns the clue at ref, or nil if ref is out of range.
func (p *Puzzle) Clue(ref ClueRef) *Clue {
	if ref.Direction != Across && ref.Direction != Down {
		return nil
	}
	list := p.Clues[ref.Direction]
	if ref.Pos < 0 || ref.Pos >= len(list) {
		return nil
	}
	return &list[ref.Pos]
}

// ClueAt returns the clue owning cell i in direction d, or nil.
func (p *Puzzle) ClueAt(i int, d Direction) *Clue {
	if !p.Open(i) || (d != Across && d != Down) {
		return nil
	}
	pos := p.Cells[i].pos[d]
	if pos < 0 || pos >= len(p.Clues[d]) {
		return nil
	}
	return &p.Clues[d][pos]
}

// ClueByNumber looks a clue up by its printed number.
func (p *Puzzle) ClueByNumber(d Direction, num int) *Clue {
	list := p.Clues[d]
	for k := range list {
		if list[k].Number == num {
			return &list[k]
		}
	}
	return nil
}

// FirstOpen returns the first playable cell in the first clue, falling back
// to the lowest open index.
func (p *Puzzle) FirstOpen() int {
	for _, d := range []Direction{Across, Down} {
		if len(p.Clues[d]) > 0 {
			return p.Clues[d][0].Start
		}
	}
	for i := range p.Cells {
		if !p.Cells[i].Black {
			return i
		}
	}
	return 0
}
