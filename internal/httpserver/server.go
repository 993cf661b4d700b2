// internal/httpserver/server.go
//
// HTTP server wiring for the Mot Devine backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/categories".
//   - Game endpoints (optional auth): /game/new, /game/input, /game/help,
//     /game/category, /game/state.
//   - Auth + profile endpoints: /auth/*, /stats/me (see auth.go).
//
// Notes:
//   - Each browser (anonymous id cookie) owns one game table; see tables.go.
//   - Every game response carries the session snapshot plus the presenter
//     events queued since the previous response, including those produced
//     by delayed transitions (auto-advance, category fallback).

package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/catalog"
	"github.com/robalobadob/motdevine/internal/game"
	"github.com/robalobadob/motdevine/internal/session"
	"github.com/robalobadob/motdevine/internal/store"
)

// Options tune the game tables.
type Options struct {
	AdvanceDelay  time.Duration // after a win; 0 = session default
	FallbackDelay time.Duration // after a finished category; 0 = session default
	TableIdle     time.Duration // tables unused this long are dropped; 0 = 24h
}

// Server bundles router, catalog, persistence and live game tables.
type Server struct {
	r      *chi.Mux
	cat    *catalog.Catalog
	st     store.Store
	opts   Options
	tables *tables
}

// New constructs a Server, installs middleware, and registers routes.
func New(cat *catalog.Catalog, st store.Store, opts Options) *Server {
	if opts.TableIdle <= 0 {
		opts.TableIdle = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), cat: cat, st: st, opts: opts}
	s.tables = newTables(s.newTable, opts.TableIdle)

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"motdevine-go","endpoints":["/health","/categories","/game/*","/auth/*","/stats/me"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/catalog", s.handleDebugCatalog)

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Route("/game", func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Get("/state", s.handleState)
		r.Post("/new", s.handleNewWord)
		r.Post("/input", s.handleInput)
		r.Post("/help", s.handleHelp)
		r.Post("/category", s.handleCategory)
	})
	s.r.With(s.withOptionalAuth()).Get("/categories", s.handleCategories)

	// Auth + profile (see auth.go)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
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
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
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

// ------------------------------ GAME ---------------------------------------

// gameRes is the body of every game endpoint.
type gameRes struct {
	Accepted *bool             `json:"accepted,omitempty"`
	Result   *game.GuessResult `json:"result,omitempty"`
	State    session.Snapshot  `json:"state"`
	Events   []session.Event   `json:"events"`
}

// respond snapshots the table and drains its events. Caller holds t.mu.
func respond(w http.ResponseWriter, t *table, res gameRes) {
	res.State = t.game.Snapshot()
	res.Events = t.rec.Drain()
	_ = json.NewEncoder(w).Encode(res)
}

// handleState returns the current round and any pending events.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.withTable(w, r, func(t *table) {
		respond(w, t, gameRes{})
	})
}

// handleNewWord abandons the current round.
func (s *Server) handleNewWord(w http.ResponseWriter, r *http.Request) {
	s.withTable(w, r, func(t *table) {
		t.game.NewWord(r.Context())
		respond(w, t, gameRes{})
	})
}

type inputReq struct {
	Input string `json:"input"`
}

// handleInput forwards the whole current input of the player.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withTable(w, r, func(t *table) {
		res, ok := t.game.Keystroke(r.Context(), req.Input)
		respond(w, t, gameRes{Accepted: &ok, Result: &res})
	})
}

type helpReq struct {
	Cursor *int `json:"cursor"` // omitted = server-side cursor
}

// handleHelp asks for a letter clue.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	var req helpReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	cursor := -1
	if req.Cursor != nil {
		cursor = *req.Cursor
	}
	s.withTable(w, r, func(t *table) {
		ok := t.game.Help(r.Context(), cursor)
		respond(w, t, gameRes{Accepted: &ok})
	})
}

type categoryReq struct {
	Category string `json:"category"`
}

// handleCategory switches the category filter.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withTable(w, r, func(t *table) {
		t.game.SetCategory(r.Context(), req.Category)
		respond(w, t, gameRes{})
	})
}

type categoryRow struct {
	catalog.Category
	Label     string `json:"label"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
}

// handleCategories lists the category table with remaining counts for the
// current player (raw sizes for guests).
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	var solved map[string]struct{}
	if me := userFrom(r); me != nil {
		p := store.NewProfile(s.st, "")
		if err := p.Login(r.Context(), me.Username); err == nil {
			solved = p.SolvedWords(r.Context())
		}
	}

	avail := map[string]bool{}
	for _, k := range s.cat.AvailableCategories(solved) {
		avail[k] = true
	}
	out := []categoryRow{}
	for _, c := range s.cat.Categories() {
		out = append(out, categoryRow{
			Category:  c,
			Label:     c.Label(),
			Remaining: s.cat.RemainingCount(c.Key, solved),
			Available: avail[c.Key],
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleDebugCatalog reports catalog and player counts.
func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	users, err := store.KnownUsers(r.Context(), s.st)
	if err != nil {
		log.Warn().Err(err).Msg("list users")
	}
	_ = json.NewEncoder(w).Encode(map[string]int{
		"words":   s.cat.Len(),
		"players": len(users),
		"tables":  s.tables.len(),
	})
}

// ------------------------------- small util --------------------------------

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
