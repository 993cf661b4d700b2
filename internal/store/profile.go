// internal/store/profile.go
//
// Profile is the per-browser view of player data used by a game session.
// It binds a Store to one browser owner id (for preferences) and, once
// logged in, one username (for the solved set).
//
// Stored documents are treated as untrusted: a value that does not decode
// is discarded, logged, and replaced by the default. Nothing here is fatal;
// write failures are logged and play continues.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/catalog"
)

const (
	solvedPrefix = "solved/"
	prefsPrefix  = "prefs/"
)

// ErrEmptyUsername is returned by Login for a blank name.
var ErrEmptyUsername = errors.New("username required")

// solvedMu serializes read-merge-write cycles on solved lists across all
// profiles in the process.
var solvedMu sync.Mutex

// Preferences are per-browser settings.
type Preferences struct {
	SelectedCategory string `json:"selectedCategory"`
}

// DefaultPreferences selects every category.
func DefaultPreferences() Preferences {
	return Preferences{SelectedCategory: catalog.AllKey}
}

// Profile holds the logged-in player's solved words in memory and writes
// them through to the Store.
type Profile struct {
	st     Store
	owner  string
	user   string
	solved []string
	index  map[string]struct{}
}

// NewProfile returns a logged-out profile for the browser identified by owner.
func NewProfile(st Store, owner string) *Profile {
	return &Profile{st: st, owner: owner, index: map[string]struct{}{}}
}

// Login binds the profile to username and loads its solved words.
func (p *Profile) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	p.user = username
	p.solved = nil
	p.index = map[string]struct{}{}
	p.load(ctx)
	return nil
}

// Logout forgets the current player. Stored data is kept.
func (p *Profile) Logout() {
	p.user = ""
	p.solved = nil
	p.index = map[string]struct{}{}
}

// IsLoggedIn reports whether a player is bound.
func (p *Profile) IsLoggedIn() bool { return p.user != "" }

// Username is the bound player name, or "".
func (p *Profile) Username() string { return p.user }

// SolvedWords returns a copy of the solved set (empty when logged out).
// The set is re-read from the Store so words solved from another browser
// are included.
func (p *Profile) SolvedWords(ctx context.Context) map[string]struct{} {
	if p.IsLoggedIn() {
		p.load(ctx)
	}
	out := make(map[string]struct{}, len(p.index))
	for w := range p.index {
		out[w] = struct{}{}
	}
	return out
}

// SolvedList returns the solved words in the order they were found.
func (p *Profile) SolvedList() []string {
	return append([]string(nil), p.solved...)
}

// AddSolvedWord records word for the logged-in player. Guests and repeats
// are ignored. The stored list is re-read before the write, so concurrent
// sessions of the same player only ever add to it.
func (p *Profile) AddSolvedWord(ctx context.Context, word string) {
	if !p.IsLoggedIn() {
		return
	}
	solvedMu.Lock()
	defer solvedMu.Unlock()

	p.load(ctx)
	if _, dup := p.index[word]; dup {
		log.Debug().Str("user", p.user).Str("word", word).Msg("word already solved")
		return
	}
	p.solved = append(p.solved, word)
	p.index[word] = struct{}{}
	p.save(ctx)
}

// ResetAll clears the logged-in player's solved set.
func (p *Profile) ResetAll(ctx context.Context) {
	if !p.IsLoggedIn() {
		return
	}
	log.Info().Str("user", p.user).Msg("resetting player data")
	solvedMu.Lock()
	defer solvedMu.Unlock()
	p.solved = nil
	p.index = map[string]struct{}{}
	p.save(ctx)
}

// Preferences loads this browser's preferences, falling back to defaults on
// missing or corrupt data.
func (p *Profile) Preferences(ctx context.Context) Preferences {
	prefs := DefaultPreferences()
	raw, err := p.st.Get(ctx, prefsPrefix+p.owner)
	if errors.Is(err, ErrNotFound) {
		return prefs
	}
	if err != nil {
		log.Warn().Err(err).Str("owner", p.owner).Msg("load preferences")
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		log.Warn().Err(err).Str("owner", p.owner).Msg("corrupt preferences, using defaults")
		return DefaultPreferences()
	}
	if prefs.SelectedCategory == "" {
		prefs.SelectedCategory = catalog.AllKey
	}
	return prefs
}

// SavePreferences overwrites this browser's preferences.
func (p *Profile) SavePreferences(ctx context.Context, prefs Preferences) {
	b, err := json.Marshal(prefs)
	if err != nil {
		log.Warn().Err(err).Msg("encode preferences")
		return
	}
	if err := p.st.Put(ctx, prefsPrefix+p.owner, b); err != nil {
		log.Warn().Err(err).Str("owner", p.owner).Msg("save preferences")
	}
}

// load replaces the cached solved list with the stored one. Duplicates are
// collapsed and the cleaned list written back; corrupt data is discarded.
// On a read error the cache is kept.
func (p *Profile) load(ctx context.Context) {
	raw, err := p.st.Get(ctx, solvedPrefix+p.user)
	if errors.Is(err, ErrNotFound) {
		p.solved = nil
		p.index = map[string]struct{}{}
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("user", p.user).Msg("load solved words")
		return
	}

	p.solved = nil
	p.index = map[string]struct{}{}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Warn().Err(err).Str("user", p.user).Msg("corrupt solved words, discarding")
		p.save(ctx)
		return
	}
	for _, w := range list {
		if _, dup := p.index[w]; dup {
			continue
		}
		p.solved = append(p.solved, w)
		p.index[w] = struct{}{}
	}
	if len(p.solved) != len(list) {
		log.Info().Str("user", p.user).Int("removed", len(list)-len(p.solved)).Msg("removed duplicate solved words")
		p.save(ctx)
	}
}

// save writes the solved list for the bound player.
func (p *Profile) save(ctx context.Context) {
	list := p.solved
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		log.Warn().Err(err).Msg("encode solved words")
		return
	}
	if err := p.st.Put(ctx, solvedPrefix+p.user, b); err != nil {
		log.Warn().Err(err).Str("user", p.user).Msg("save solved words")
	}
}

// KnownUsers lists every player with saved progress, sorted.
func KnownUsers(ctx context.Context, st Store) ([]string, error) {
	keys, err := st.Keys(ctx, solvedPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if u := strings.TrimPrefix(k, solvedPrefix); u != "" {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out, nil
}
