package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/bodul/xwplay/xword"
)

// commandError is sent back on the socket when a command is rejected.
type commandError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// GET /api/games/{id}/ws: bidirectional command stream. Each frame from the
// client is a JSON command; the server answers with the same events as the
// SSE stream.
func (s *Server) handleGameSocket(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	pseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	srv := websocket.Server{
		Handshake: sameOrigin,
		Handler: func(conn *websocket.Conn) {
			s.serveSocket(conn, game, pseudo)
		},
	}
	srv.ServeHTTP(w, r)
}

// sameOrigin rejects browser connections coming from another site.
// Clients that send no Origin are accepted.
func sameOrigin(cfg *websocket.Config, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("bad origin %q: %w", origin, err)
	}
	if u.Host != r.Host {
		return fmt.Errorf("cross-origin websocket from %s", u.Host)
	}
	cfg.Origin = u
	return nil
}

func (s *Server) serveSocket(conn *websocket.Conn, game *GameSession, pseudo string) {
	defer conn.Close()

	c := s.sse.Register(game.ID)
	s.greet(game, c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range c.ch {
			if err := websocket.Message.Send(conn, string(msg)); err != nil {
				log.Printf("Websocket send (%s): %v", game.ID, err)
				return
			}
		}
	}()

	s.readCommands(conn, game, c, pseudo)

	s.sse.Unregister(c)
	<-done
	s.playerLeft(game, pseudo)
}

func (s *Server) readCommands(conn *websocket.Conn, game *GameSession, c *client, pseudo string) {
	ip := clientIP(conn.Request())
	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Websocket closed (%s): %v", game.ID, err)
			}
			return
		}

		if !s.cmdRL.allow(ip) {
			s.sendTo(c, commandError{Type: "error", Error: "Trop de requêtes, réessayez plus tard"})
			continue
		}

		var cmd xword.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.sendTo(c, commandError{Type: "error", Error: "Commande invalide"})
			continue
		}
		if _, err := s.apply(game, cmd, pseudo); err != nil {
			s.sendTo(c, commandError{Type: "error", Error: "Commande invalide"})
		}
	}
}
