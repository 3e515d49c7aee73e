package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// client is one watcher of a game, fed by SSE or a websocket.
type client struct {
	ch     chan []byte
	gameID string
}

// Broadcaster fans game events out to the watchers of each session.
type Broadcaster struct {
	mu    sync.RWMutex
	games map[string]map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		games: make(map[string]map[*client]struct{}),
	}
}

// Register adds a watcher for a game session and returns it.
func (b *Broadcaster) Register(gameID string) *client {
	c := &client{
		ch:     make(chan []byte, sseChannelBuffer),
		gameID: gameID,
	}
	b.mu.Lock()
	set, ok := b.games[gameID]
	if !ok {
		set = make(map[*client]struct{})
		b.games[gameID] = set
	}
	set[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a watcher and closes its channel.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.games[c.gameID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.ch)
	if len(set) == 0 {
		delete(b.games, c.gameID)
	}
}

// Broadcast encodes evt once and queues it for every watcher of the game.
// Watchers whose buffer is full miss the event.
func (b *Broadcaster) Broadcast(gameID string, evt any) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.games[gameID] {
		select {
		case c.ch <- msg:
		default:
		}
	}
	return nil
}

// ClientCount returns the number of watchers of a game.
func (b *Broadcaster) ClientCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.games[gameID])
}

// send queues an event for a single watcher.
func (c *client) send(evt any) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	select {
	case c.ch <- msg:
		return nil
	default:
		return fmt.Errorf("client buffer full")
	}
}

// ServeSSE handles an SSE connection for a game session.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, onConnect func(c *client), onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(gameID)
	defer func() {
		b.Unregister(c)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
