package xword

import "testing"

// tinyRaw is the 3x3 grid with a single block in the middle, every open
// square numbered.
func tinyRaw() *Raw {
	return &Raw{
		Size:     Size{Rows: 3, Cols: 3},
		Grid:     []string{"A", "B", "C", "D", ".", "E", "F", "G", "H"},
		Gridnums: []int{1, 2, 3, 4, 0, 5, 6, 7, 8},
		Clues: RawClues{
			Across: []string{"1. Top row", "4. Lone D", "5. Lone E", "6. Bottom row"},
			Down:   []string{"1. Left column", "2. Lone B", "3. Right column", "7. Lone G"},
		},
	}
}

// blockRaw is a 5x5 grid with corner blocks and one center-left block:
//
//	. A B C .
//	D E F G H
//	I J . K L
//	M N O P Q
//	. R S T .
func blockRaw() *Raw {
	return &Raw{
		Title: "Blocks",
		Size:  Size{Rows: 5, Cols: 5},
		Grid: []string{
			".", "A", "B", "C", ".",
			"D", "E", "F", "G", "H",
			"I", "J", ".", "K", "L",
			"M", "N", "O", "P", "Q",
			".", "R", "S", "T", ".",
		},
		Gridnums: []int{
			0, 1, 2, 3, 0,
			4, 0, 0, 0, 5,
			6, 0, 0, 7, 0,
			8, 0, 9, 0, 0,
			0, 10, 0, 0, 0,
		},
		Clues: RawClues{
			Across: []string{"1. ABC", "4. DEFGH", "6. IJ", "7. KL", "8. MNOPQ", "10. RST"},
			Down:   []string{"1. AEJNR", "2. BF", "3. CGKPT", "4. DIM", "5. HLQ", "9. OS"},
		},
	}
}

func mustLoad(t *testing.T, raw *Raw) *Puzzle {
	t.Helper()
	p, err := Load(raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

// fill types the solution of every listed cell directly, bypassing the cursor.
func fill(g *Game, cells ...int) {
	for _, i := range cells {
		g.inputs[i] = g.p.Grid[i]
	}
}
