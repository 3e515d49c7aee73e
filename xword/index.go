package xword

import (
	"fmt"
	"maps"
	"slices"
)

// index builds the cell table and attaches every run of open cells to the
// clue carrying its start cell's number.
func (p *Puzzle) index() error {
	n := p.Rows * p.Cols
	p.Cells = make([]Cell, n)
	for i := range p.Cells {
		p.Cells[i] = Cell{
			Index:  i,
			Row:    i / p.Cols,
			Col:    i % p.Cols,
			Number: p.Gridnums[i],
			Black:  p.Grid[i] == BlackSquare,
			pos:    [2]int{-1, -1},
		}
	}

	for _, d := range []Direction{Across, Down} {
		runs := make(map[int][]int)
		for i := range p.Cells {
			if p.Cells[i].Black {
				continue
			}
			start := p.runStart(i, d)
			runs[start] = append(runs[start], i)
		}

		byNumber := make(map[int]int, len(p.Clues[d]))
		for k, c := range p.Clues[d] {
			byNumber[c.Number] = k
		}

		for _, start := range slices.Sorted(maps.Keys(runs)) {
			cells := runs[start]
			num := p.Gridnums[start]
			pos, ok := byNumber[num]
			if num == 0 || !ok {
				// A lone cell between blocks is only a clue when the list says so.
				if len(cells) == 1 {
					continue
				}
				if num == 0 {
					return fmt.Errorf("%w: %s run at cell %d is not numbered", ErrMissingClue, d, start)
				}
				return fmt.Errorf("%w: %d %s", ErrMissingClue, num, d)
			}

			clue := &p.Clues[d][pos]
			if clue.Cells != nil {
				return fmt.Errorf("%w: number %d starts two %s runs", ErrGrid, num, d)
			}
			slices.Sort(cells)
			clue.Cells = cells
			clue.Start = cells[0]
			for _, i := range cells {
				p.Cells[i].Clue[d] = num
				p.Cells[i].pos[d] = pos
			}
		}

		for _, c := range p.Clues[d] {
			if len(c.Cells) == 0 {
				return fmt.Errorf("%w: %d %s", ErrUnknownClue, c.Number, d)
			}
		}
	}

	if len(p.Clues[Across])+len(p.Clues[Down]) == 0 {
		return fmt.Errorf("%w: no playable cells", ErrGrid)
	}
	for i, c := range p.Cells {
		if !c.Black && c.pos[Across] < 0 && c.pos[Down] < 0 {
			return fmt.Errorf("%w: cell %d belongs to no clue", ErrGrid, i)
		}
	}
	return nil
}

// runStart scans back from open cell i to the first cell of its run in d.
func (p *Puzzle) runStart(i int, d Direction) int {
	if d == Across {
		for i%p.Cols > 0 && p.Grid[i-1] != BlackSquare {
			i--
		}
		return i
	}
	for i-p.Cols >= 0 && p.Grid[i-p.Cols] != BlackSquare {
		i -= p.Cols
	}
	return i
}
