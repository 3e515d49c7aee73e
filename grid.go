package main

import (
	"time"

	"github.com/bodul/xwplay/xword"
)

// Puzzle sources.
const (
	sourceUpload = "upload"
	sourceScan   = "scan"
	sourceFile   = "file"
)

// PuzzleEntry is a loaded puzzle held in the catalog.
type PuzzleEntry struct {
	ID        string
	Source    string
	Puzzle    *xword.Puzzle
	CreatedAt time.Time
}

// PuzzleSummary is the catalog listing of a puzzle.
type PuzzleSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author,omitempty"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// GridView is what a player's client receives: the grid layout and the
// clues, without the solutions.
type GridView struct {
	PuzzleSummary
	Date  string       `json:"date,omitempty"`
	Cells []xword.Cell `json:"cells"`
	Clues struct {
		Across []xword.Clue `json:"across"`
		Down   []xword.Clue `json:"down"`
	} `json:"clues"`
}

// Summary returns the listing form of the entry.
func (e *PuzzleEntry) Summary() PuzzleSummary {
	return PuzzleSummary{
		ID:        e.ID,
		Title:     e.Puzzle.Title,
		Author:    e.Puzzle.Author,
		Rows:      e.Puzzle.Rows,
		Cols:      e.Puzzle.Cols,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
	}
}

// View returns the public grid of the entry.
func (e *PuzzleEntry) View() GridView {
	v := GridView{
		PuzzleSummary: e.Summary(),
		Date:          e.Puzzle.Date,
		Cells:         e.Puzzle.Cells,
	}
	v.Clues.Across = e.Puzzle.Clues[xword.Across]
	v.Clues.Down = e.Puzzle.Clues[xword.Down]
	return v
}
