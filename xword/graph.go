package xword

import "slices"

// link builds the clue rings and the per-cell next/previous steps. It runs
// once, after index, and the result is never recomputed.
func (p *Puzzle) link() {
	for _, d := range []Direction{Across, Down} {
		list := p.Clues[d]
		for k := range list {
			list[k].Next = ClueRef{Direction: d, Pos: (k + 1) % len(list)}
			list[k].Prev = ClueRef{Direction: d, Pos: (k - 1 + len(list)) % len(list)}
		}
	}

	for i := range p.Cells {
		cell := &p.Cells[i]
		for _, d := range []Direction{Across, Down} {
			if cell.Black {
				cell.Next[d] = Step{Index: i, Direction: d}
				cell.Prev[d] = Step{Index: i, Direction: d}
				continue
			}
			clue := p.ClueAt(i, d)
			if clue == nil {
				// Moving along a direction the cell has no clue in hands the
				// cursor over to the other direction in place.
				cell.Next[d] = Step{Index: i, Direction: d.Other()}
				cell.Prev[d] = Step{Index: i, Direction: d.Other()}
				continue
			}

			k := slices.Index(clue.Cells, i)
			if k+1 < len(clue.Cells) {
				cell.Next[d] = Step{Index: clue.Cells[k+1], Direction: d}
			} else {
				next := p.NextClue(clue)
				cell.Next[d] = Step{Index: next.Start, Direction: next.Direction}
			}
			if k > 0 {
				cell.Prev[d] = Step{Index: clue.Cells[k-1], Direction: d}
			} else {
				prev := p.PrevClue(clue)
				cell.Prev[d] = Step{Index: prev.Last(), Direction: prev.Direction}
			}
		}
	}
}

// NextClue follows c's ring link. Leaving the end of a list continues with
// the first clue of the other direction, when there is one.
func (p *Puzzle) NextClue(c *Clue) *Clue {
	next := p.Clue(c.Next)
	if next == nil {
		return c
	}
	if next.Pos <= c.Pos {
		if other := p.Clues[c.Direction.Other()]; len(other) > 0 {
			return &other[0]
		}
	}
	return next
}

// PrevClue is the inverse of NextClue.
func (p *Puzzle) PrevClue(c *Clue) *Clue {
	prev := p.Clue(c.Prev)
	if prev == nil {
		return c
	}
	if prev.Pos >= c.Pos {
		if other := p.Clues[c.Direction.Other()]; len(other) > 0 {
			return &other[len(other)-1]
		}
	}
	return prev
}
