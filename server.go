package main

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bodul/xwplay/xword"
)

//go:embed frontend
var frontendFS embed.FS

const (
	maxUploadSize = 10 << 20 // 10 Mo
	maxPuzzleSize = 1 << 20
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	// Cleanup stale entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	gemini   *GeminiClient
	sse      *Broadcaster
	uploadRL *rateLimiter
	cmdRL    *rateLimiter
}

// NewServer creates a configured HTTP server. gemini may be nil, which
// disables photo scanning.
func NewServer(store *Store, gemini *GeminiClient, limits LimitsConfig) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		gemini:   gemini,
		sse:      NewBroadcaster(),
		uploadRL: newRateLimiter(limits.UploadsPerMinute, time.Minute),
		cmdRL:    newRateLimiter(limits.CommandsPerSecond, time.Second),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("POST /api/puzzles/scan", s.handleScanPuzzle)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)

	// Game API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{id}/commands", s.handleCommand)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)
	s.mux.HandleFunc("GET /api/games/{id}/ws", s.handleGameSocket)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /game/{id}", s.handleGamePage)
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// POST /api/puzzles: load a puzzle sent as JSON or YAML.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientIP(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPuzzleSize)
	p, err := readPuzzle(r.Body, formatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		jsonError(w, "Grille invalide : "+err.Error(), http.StatusBadRequest)
		return
	}

	e := s.store.SavePuzzle(p, sourceUpload)
	writeJSON(w, http.StatusCreated, e.View())
}

// POST /api/puzzles/scan: upload a photo, read it with Gemini, load it.
func (s *Server) handleScanPuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientIP(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	if s.gemini == nil {
		jsonError(w, "Analyse d'image non configurée", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image trop volumineuse (max 10 Mo)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Champ 'image' requis", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Format accepté : JPEG ou PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Erreur de lecture de l'image", http.StatusInternalServerError)
		return
	}

	raw, err := s.gemini.ScanPuzzle(r.Context(), imageData, mimeType)
	if err != nil {
		log.Printf("Gemini scan error: %v", err)
		jsonError(w, "Erreur lors de l'analyse de la grille", http.StatusInternalServerError)
		return
	}

	p, err := xword.Load(raw)
	if err != nil {
		log.Printf("Scanned puzzle rejected: %v", err)
		jsonError(w, "Grille illisible : "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	e := s.store.SavePuzzle(p, sourceScan)
	writeJSON(w, http.StatusCreated, e.View())
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	entries := s.store.ListPuzzles()
	list := make([]PuzzleSummary, len(entries))
	for i, e := range entries {
		list[i] = e.Summary()
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/puzzles/{id}: get a single puzzle without its solution.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	e := s.store.GetPuzzle(r.PathValue("id"))
	if e == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e.View())
}

// --- Game handlers ---

type playerEvent struct {
	Type   string `json:"type"`
	Pseudo string `json:"pseudo"`
	Color  string `json:"color,omitempty"`
}

// POST /api/games: create a game from a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Champ 'puzzle_id' requis", http.StatusBadRequest)
		return
	}

	game, err := s.store.CreateGame(req.PuzzleID)
	if errors.Is(err, ErrPuzzleNotFound) {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	} else if err != nil {
		jsonError(w, "Impossible de créer la partie", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

// GET /api/games: list running games, newest first.
func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := s.store.ListGames()
	slices.SortFunc(games, func(a, b *GameSession) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	writeJSON(w, http.StatusOK, games)
}

// GET /api/games/{id}: get the game with its puzzle.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	resp := struct {
		Game   *GameSession `json:"game"`
		Puzzle *GridView    `json:"puzzle,omitempty"`
	}{Game: game}
	if e := s.store.GetPuzzle(game.PuzzleID); e != nil {
		v := e.View()
		resp.Puzzle = &v
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/games/{id}/join: join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudo == "" {
		jsonError(w, "Champ 'pseudo' requis", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)
	s.sse.Broadcast(game.ID, playerEvent{Type: "player_joined", Pseudo: player.Pseudo, Color: player.Color})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/games/{id}/commands: apply one command to the shared cursor.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if !s.cmdRL.allow(clientIP(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var cmd xword.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		jsonError(w, "Commande invalide", http.StatusBadRequest)
		return
	}

	evt, err := s.apply(game, cmd, sanitizePseudo(r.URL.Query().Get("pseudo")))
	if err != nil {
		jsonError(w, "Commande invalide", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, evt.State)
}

// apply runs cmd on the game and pushes the new state to every watcher.
func (s *Server) apply(game *GameSession, cmd xword.Command, by string) (stateEvent, error) {
	return game.Publish(cmd, by, func(evt stateEvent) {
		if err := s.sse.Broadcast(game.ID, evt); err != nil {
			log.Printf("Broadcast error: %v", err)
		}
	})
}

// greet queues the current state for a new watcher.
func (s *Server) greet(game *GameSession, c *client) {
	game.Greet(func(evt stateEvent) {
		s.sendTo(c, evt)
	})
}

// sendTo queues evt for a single watcher and logs when it is dropped.
func (s *Server) sendTo(c *client, evt any) {
	if err := c.send(evt); err != nil {
		log.Printf("Send error (%s): %v", c.gameID, err)
	}
}

// GET /api/games/{id}/events: SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	playerPseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.sse.ServeSSE(w, r, game.ID, func(c *client) {
		// Send initial game state on connect.
		s.greet(game, c)
	}, func() {
		s.playerLeft(game, playerPseudo)
	})
}

func (s *Server) playerLeft(game *GameSession, pseudo string) {
	if pseudo == "" {
		return
	}
	game.RemovePlayer(pseudo)
	s.sse.Broadcast(game.ID, playerEvent{Type: "player_left", Pseudo: pseudo})
}

// --- Frontend page handlers ---

// GET /game/{id}: serve the game page.
func (s *Server) handleGamePage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/game.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
