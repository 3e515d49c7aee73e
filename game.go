package main

import (
	"cmp"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/bodul/xwplay/xword"
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a collaborative game on one puzzle. All players share a
// single cursor; commands are applied one at a time.
type GameSession struct {
	ID        string
	PuzzleID  string
	CreatedAt time.Time

	mu      sync.Mutex
	game    *xword.Game
	players map[string]*Player
	seq     uint64

	// pub orders state events: held from commit until the event is queued.
	pub sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

// NewGameSession starts a game on p. warn receives engine inconsistencies.
func NewGameSession(id, puzzleID string, p *xword.Puzzle, warn func(error)) *GameSession {
	return &GameSession{
		ID:        id,
		PuzzleID:  puzzleID,
		CreatedAt: time.Now(),
		game:      xword.NewGame(p, xword.WithWarnings(warn)),
		players:   make(map[string]*Player),
	}
}

// AddPlayer adds a player to the session and returns the player.
func (g *GameSession) AddPlayer(pseudo string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session.
func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, pseudo)
}

// Players returns the joined players in arrival order.
func (g *GameSession) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerList()
}

func (g *GameSession) playerList() []*Player {
	list := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b *Player) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Pseudo, b.Pseudo)
	})
	return list
}

// Apply runs one command against the shared game and returns the event
// describing the state it leaves behind, stamped with the next sequence
// number.
func (g *GameSession) Apply(cmd xword.Command, by string) (stateEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.game.Apply(cmd); err != nil {
		return stateEvent{}, err
	}
	g.seq++
	return g.event(by), nil
}

// Publish applies cmd and hands the resulting event to send before any
// later command can commit, so watchers receive states in commit order.
func (g *GameSession) Publish(cmd xword.Command, by string, send func(stateEvent)) (stateEvent, error) {
	g.pub.Lock()
	defer g.pub.Unlock()

	evt, err := g.Apply(cmd, by)
	if err != nil {
		return evt, err
	}
	send(evt)
	return evt, nil
}

// Greet hands the current state to send, ordered with Publish.
func (g *GameSession) Greet(send func(stateEvent)) {
	g.pub.Lock()
	defer g.pub.Unlock()
	send(g.stateEvent(""))
}

// Snapshot returns the current game state.
func (g *GameSession) Snapshot() xword.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.game.Snapshot()
}

// MarshalJSON encodes the session with its players and current state.
func (g *GameSession) MarshalJSON() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return json.Marshal(struct {
		ID        string         `json:"id"`
		PuzzleID  string         `json:"puzzle_id"`
		Players   []*Player      `json:"players"`
		State     xword.Snapshot `json:"state"`
		CreatedAt time.Time      `json:"created_at"`
	}{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Players:   g.playerList(),
		State:     g.game.Snapshot(),
		CreatedAt: g.CreatedAt,
	})
}

// stateEvent is pushed to watchers after every change. Seq grows with each
// committed command; clients drop events older than the last one seen.
type stateEvent struct {
	Type    string         `json:"type"`
	Seq     uint64         `json:"seq"`
	State   xword.Snapshot `json:"state"`
	Players []*Player      `json:"players"`
	By      string         `json:"by,omitempty"`
}

func (g *GameSession) stateEvent(by string) stateEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.event(by)
}

// event must be called with g.mu held.
func (g *GameSession) event(by string) stateEvent {
	return stateEvent{
		Type:    "game_state",
		Seq:     g.seq,
		State:   g.game.Snapshot(),
		Players: g.playerList(),
		By:      by,
	}
}
