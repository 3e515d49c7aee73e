package main

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/bodul/xwplay/xword"
)

func newTestSession(t *testing.T) *GameSession {
	t.Helper()
	return NewGameSession("g1", "p1", testPuzzle(t), func(err error) {
		t.Errorf("unexpected warning: %v", err)
	})
}

func TestGameAddPlayer(t *testing.T) {
	game := newTestSession(t)

	p1 := game.AddPlayer("Alice")
	p2 := game.AddPlayer("Bob")

	if p1.Pseudo != "Alice" || p2.Pseudo != "Bob" {
		t.Fatal("unexpected pseudo")
	}
	if p1.Color == p2.Color {
		t.Fatal("players should have different colors")
	}

	// Adding same pseudo returns existing player.
	if game.AddPlayer("Alice") != p1 {
		t.Fatal("same pseudo should return same player")
	}

	players := game.Players()
	if len(players) != 2 || players[0].Pseudo != "Alice" {
		t.Fatalf("expected players in arrival order, got %v", players)
	}

	game.RemovePlayer("Alice")
	if players := game.Players(); len(players) != 1 || players[0].Pseudo != "Bob" {
		t.Fatalf("expected only Bob, got %v", players)
	}
}

func TestSessionApply(t *testing.T) {
	game := newTestSession(t)

	evt, err := game.Apply(xword.Letter('a'), "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if snap := evt.State; snap.Inputs[0] != "A" || snap.Selected != 1 {
		t.Fatalf("expected A typed and cursor on 1, got %q at %d", snap.Inputs[0], snap.Selected)
	}
	if evt.Seq != 1 || evt.By != "Alice" {
		t.Fatalf("expected seq 1 by Alice, got %d by %q", evt.Seq, evt.By)
	}

	if _, err := game.Apply(xword.Command{}, "Alice"); !errors.Is(err, xword.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if game.Snapshot().Inputs[0] != "A" {
		t.Fatal("rejected command changed the game")
	}
	if seq := game.stateEvent("").Seq; seq != 1 {
		t.Fatalf("rejected command bumped seq to %d", seq)
	}
}

func TestPublishOrder(t *testing.T) {
	game := newTestSession(t)

	var (
		mu   sync.Mutex
		seqs []uint64
	)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game.Publish(xword.ClickCell(i%9), "", func(evt stateEvent) {
				mu.Lock()
				seqs = append(seqs, evt.Seq)
				mu.Unlock()
			})
		}(i)
	}
	wg.Wait()

	if len(seqs) != 20 {
		t.Fatalf("expected 20 events, got %d", len(seqs))
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("events out of order: %v", seqs)
		}
	}
}

func TestSessionJSON(t *testing.T) {
	game := newTestSession(t)
	game.AddPlayer("Alice")
	game.Apply(xword.Letter('a'), "")

	data, err := json.Marshal(game)
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		ID       string         `json:"id"`
		PuzzleID string         `json:"puzzle_id"`
		Players  []Player       `json:"players"`
		State    xword.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "g1" || got.PuzzleID != "p1" || len(got.Players) != 1 {
		t.Fatalf("unexpected session JSON: %s", data)
	}
	if got.State.Inputs[0] != "A" || got.State.Answers != nil {
		t.Fatalf("unexpected state in JSON: %s", data)
	}
}

func TestStateEvent(t *testing.T) {
	game := newTestSession(t)
	game.AddPlayer("Bob")

	evt := game.stateEvent("Bob")
	if evt.Type != "game_state" || evt.By != "Bob" || len(evt.Players) != 1 {
		t.Fatalf("unexpected event: %+v", evt)
	}
}
