package main

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/xwplay/xword"
)

// ErrPuzzleNotFound is returned when a game refers to an unknown puzzle.
var ErrPuzzleNotFound = errors.New("puzzle not found")

// Store holds all puzzles and game sessions in memory.
type Store struct {
	mu      sync.RWMutex
	puzzles map[string]*PuzzleEntry
	games   map[string]*GameSession
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		puzzles: make(map[string]*PuzzleEntry),
		games:   make(map[string]*GameSession),
	}
}

// SavePuzzle adds a loaded puzzle to the catalog and returns its entry.
func (s *Store) SavePuzzle(p *xword.Puzzle, source string) *PuzzleEntry {
	e := &PuzzleEntry{
		ID:        generateID(),
		Source:    source,
		Puzzle:    p,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.puzzles[e.ID] = e
	s.mu.Unlock()

	return e
}

// GetPuzzle returns a puzzle by ID, or nil if not found.
func (s *Store) GetPuzzle(id string) *PuzzleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzles[id]
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Store) ListPuzzles() []*PuzzleEntry {
	s.mu.RLock()
	list := make([]*PuzzleEntry, 0, len(s.puzzles))
	for _, e := range s.puzzles {
		list = append(list, e)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *PuzzleEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}

// CreateGame starts a new session on a puzzle.
func (s *Store) CreateGame(puzzleID string) (*GameSession, error) {
	e := s.GetPuzzle(puzzleID)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, puzzleID)
	}

	id := generateID()
	game := NewGameSession(id, puzzleID, e.Puzzle, func(err error) {
		log.Printf("Partie %s : %v", id, err)
	})

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	return game, nil
}

// GetGame returns a game session by ID, or nil if not found.
func (s *Store) GetGame(id string) *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// ListGames returns all game sessions.
func (s *Store) ListGames() []*GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*GameSession, 0, len(s.games))
	for _, g := range s.games {
		list = append(list, g)
	}
	return list
}

func generateID() string {
	return uuid.NewString()
}
