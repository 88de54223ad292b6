// internal/httpserver/server.go
//
// HTTP wiring for the duel server.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - GET /ws: upgrade to the persistent game connection.
//   - GET /matches/recent: finished-match log out of SQLite.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - All game traffic flows over the WebSocket; HTTP is diagnostics
//     plus the match log.
package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wordduel/server/internal/words"
	"github.com/wordduel/server/internal/ws"
)

// Server bundles router, WebSocket hub, and DB handle.
type Server struct {
	r   *chi.Mux
	hub *ws.Hub
	db  *sql.DB
}

// New constructs a Server, installs middleware, and registers routes.
func New(hub *ws.Hub, db *sql.DB) *Server {
	s := &Server{r: chi.NewRouter(), hub: hub, db: db}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordduel","endpoints":["/health","GET /ws","GET /matches/recent"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := words.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
	})

	// The game connection. No HTTP timeout middleware on this route:
	// the socket stays open for the length of the session.
	s.r.Get("/ws", hub.ServeWS)

	// Match log.
	s.r.With(chimw.Timeout(10 * time.Second)).Get("/matches/recent", s.handleRecentMatches)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ----------------------------- match log -----------------------------------

type matchRow struct {
	RoomCode   string `json:"roomCode"`
	WinnerID   string `json:"winnerId,omitempty"`
	Outcome    string `json:"outcome"`
	Target     string `json:"target"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
}

// handleRecentMatches lists the latest finished matches.
func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		_ = json.NewEncoder(w).Encode([]matchRow{})
		return
	}
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT room_code, COALESCE(winner_id,''), outcome, target, started_at, finished_at
		 FROM matches ORDER BY finished_at DESC LIMIT 50`)
	if err != nil {
		log.Error().Err(err).Msg("query matches")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []matchRow{}
	for rows.Next() {
		var m matchRow
		if err := rows.Scan(&m.RoomCode, &m.WinnerID, &m.Outcome, &m.Target, &m.StartedAt, &m.FinishedAt); err == nil {
			out = append(out, m)
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}
