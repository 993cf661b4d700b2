// internal/httpserver/tables.go
//
// Per-browser game tables.
//
// A table is one session.Game plus the Profile and event Recorder it talks
// to. Tables are keyed by the anonymous id cookie, so a browser keeps its
// round across requests and across login/logout. All access to a table,
// including delayed transitions fired by timers, goes through table.mu.

package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/session"
	"github.com/robalobadob/motdevine/internal/store"
)

type table struct {
	mu       sync.Mutex
	game     *session.Game
	profile  *store.Profile
	rec      *session.Recorder
	started  bool
	lastSeen time.Time
}

// lockedScheduler runs delayed transitions under the table lock.
type lockedScheduler struct{ t *table }

func (s lockedScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		s.t.mu.Lock()
		defer s.t.mu.Unlock()
		fn()
	})
}

// newTable builds a fresh table for the browser identified by owner.
func (s *Server) newTable(owner string) *table {
	t := &table{
		profile: store.NewProfile(s.st, owner),
		rec:     &session.Recorder{},
	}
	t.game = session.New(session.Config{
		Catalog:       s.cat,
		Persistence:   t.profile,
		Presenter:     t.rec,
		Scheduler:     lockedScheduler{t: t},
		AdvanceDelay:  s.opts.AdvanceDelay,
		FallbackDelay: s.opts.FallbackDelay,
	})
	return t
}

type tables struct {
	mu    sync.Mutex
	byID  map[string]*table
	build func(owner string) *table
	idle  time.Duration
}

func newTables(mk func(string) *table, idle time.Duration) *tables {
	return &tables{byID: map[string]*table{}, build: mk, idle: idle}
}

// get returns the table for owner, creating it if needed. Creating a table
// also drops tables idle for longer than the configured limit.
func (ts *tables) get(owner string) *table {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	if t, ok := ts.byID[owner]; ok {
		t.lastSeen = now
		return t
	}
	for id, t := range ts.byID {
		if now.Sub(t.lastSeen) > ts.idle {
			delete(ts.byID, id)
		}
	}
	t := ts.build(owner)
	t.lastSeen = now
	ts.byID[owner] = t
	log.Debug().Str("owner", owner).Int("tables", len(ts.byID)).Msg("new game table")
	return t
}

func (ts *tables) len() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.byID)
}

// withTable locks the caller's table, aligns its login state with the
// request's auth user, starts it on first use and runs fn.
func (s *Server) withTable(w http.ResponseWriter, r *http.Request, fn func(t *table)) {
	t := s.tables.get(s.ensureAnonID(w, r))
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := r.Context()
	me := userFrom(r)
	switch {
	case me != nil && t.profile.Username() != me.Username:
		if err := t.profile.Login(ctx, me.Username); err != nil {
			log.Warn().Err(err).Msg("restore login")
			break
		}
		if t.started {
			t.game.Reload(ctx)
		}
	case me == nil && t.profile.IsLoggedIn():
		t.profile.Logout()
		if t.started {
			t.game.LoggedOut(ctx)
		}
	}
	if !t.started {
		t.game.Start(ctx)
		t.started = true
	}
	fn(t)
}

const anonCookieName = "motdevine_anon"

// ensureAnonID returns an existing anon cookie or sets a new one.
// The id keys the browser's game table and saved preferences.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction(),
		SameSite: sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	// Later lookups in the same request see the new id.
	r.AddCookie(&http.Cookie{Name: anonCookieName, Value: id})
	return id
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	s := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(s) > 22 {
		return s[:22]
	}
	return s
}
