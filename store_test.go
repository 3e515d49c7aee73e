package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/bodul/xwplay/xword"
)

func testPuzzle(t *testing.T) *xword.Puzzle {
	t.Helper()
	p, err := LoadPuzzleFile("testdata/tiny.json")
	if err != nil {
		t.Fatalf("load test puzzle: %v", err)
	}
	return p
}

func TestSaveAndGetPuzzle(t *testing.T) {
	s := NewStore()
	e := s.SavePuzzle(testPuzzle(t), sourceUpload)

	if e.ID == "" {
		t.Fatal("expected puzzle to have an ID")
	}
	if got := s.GetPuzzle(e.ID); got != e {
		t.Fatal("expected to find saved puzzle")
	}
	if got := s.GetPuzzle("nonexistent"); got != nil {
		t.Fatal("expected nil for unknown ID")
	}
}

func TestListPuzzles(t *testing.T) {
	s := NewStore()
	p := testPuzzle(t)
	first := s.SavePuzzle(p, sourceFile)
	second := s.SavePuzzle(p, sourceUpload)

	list := s.ListPuzzles()
	if len(list) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(list))
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected puzzles sorted by descending creation time")
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct IDs")
	}
}

func TestPuzzleViewHidesSolution(t *testing.T) {
	s := NewStore()
	e := s.SavePuzzle(testPuzzle(t), sourceUpload)
	v := e.View()

	if v.ID != e.ID || v.Title != "Tiny" || v.Rows != 3 || v.Cols != 3 {
		t.Fatalf("unexpected view header: %+v", v.PuzzleSummary)
	}
	if len(v.Cells) != 9 || len(v.Clues.Across) != 4 || len(v.Clues.Down) != 4 {
		t.Fatalf("unexpected view body: %d cells, %d/%d clues", len(v.Cells), len(v.Clues.Across), len(v.Clues.Down))
	}
}

func TestCreateGame(t *testing.T) {
	s := NewStore()

	if _, err := s.CreateGame("unknown"); !errors.Is(err, ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}

	e := s.SavePuzzle(testPuzzle(t), sourceUpload)
	game, err := s.CreateGame(e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.PuzzleID != e.ID {
		t.Fatal("game should reference the puzzle")
	}
	if s.GetGame(game.ID) != game {
		t.Fatal("expected to find the game")
	}
	if n := len(s.ListGames()); n != 1 {
		t.Fatalf("expected 1 game, got %d", n)
	}

	snap := game.Snapshot()
	if len(snap.Inputs) != 9 || snap.Selected != 0 {
		t.Fatalf("expected a fresh 3x3 game at cell 0, got %d inputs at %d", len(snap.Inputs), snap.Selected)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	e := s.SavePuzzle(testPuzzle(t), sourceUpload)
	game, _ := s.CreateGame(e.ID)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game.Apply(xword.Letter(rune('A'+i%26)), "")
			game.Snapshot()
			game.AddPlayer("player" + string(rune('A'+i%26)))
			s.ListPuzzles()
		}(i)
	}
	wg.Wait()
}
