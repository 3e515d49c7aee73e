package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/bodul/xwplay/xword"
)

type socketEvent struct {
	Type  string         `json:"type"`
	State xword.Snapshot `json:"state"`
	By    string         `json:"by"`
	Error string         `json:"error"`
}

func dialGame(t *testing.T, ts *httptest.Server, gameID, origin string) (*websocket.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + gameID + "/ws?pseudo=Alice"
	return websocket.Dial(url, "", origin)
}

func receive(t *testing.T, conn *websocket.Conn) socketEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt socketEvent
	if err := websocket.JSON.Receive(conn, &evt); err != nil {
		t.Fatalf("receive: %v", err)
	}
	return evt
}

func TestGameSocket(t *testing.T) {
	srv := newTestServer()
	game := seedGame(t, srv)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, err := dialGame(t, ts, game.ID, ts.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if evt := receive(t, conn); evt.Type != "game_state" || evt.State.Selected != 0 {
		t.Fatalf("expected initial state, got %+v", evt)
	}

	if err := websocket.Message.Send(conn, `{"type":"letter","char":"z"}`); err != nil {
		t.Fatal(err)
	}
	evt := receive(t, conn)
	if evt.Type != "game_state" || evt.By != "Alice" || evt.State.Inputs[0] != "Z" {
		t.Fatalf("expected state after letter, got %+v", evt)
	}
	if got := game.Snapshot().Inputs[0]; got != "Z" {
		t.Fatalf("command not applied to the session, got %q", got)
	}

	if err := websocket.Message.Send(conn, `{"type":"fly"}`); err != nil {
		t.Fatal(err)
	}
	if evt := receive(t, conn); evt.Type != "error" || evt.Error == "" {
		t.Fatalf("expected error event, got %+v", evt)
	}
}

func TestGameSocketRejectsForeignOrigin(t *testing.T) {
	srv := newTestServer()
	game := seedGame(t, srv)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	if conn, err := dialGame(t, ts, game.ID, "http://evil.example"); err == nil {
		conn.Close()
		t.Fatal("expected cross-origin dial to fail")
	}
}
