// internal/words/words.go
//
// Word selection for the game.
//
// Responsibilities:
//   - Pick the next target word uniformly among the eligible candidates.
//   - Apply the category filter ("toutes" means every word).
//   - For logged-in players, exclude already solved words and report when a
//     category, or the whole catalog, has nothing left.
//
// Guests never exhaust anything: they draw from the full filtered pool and
// may see a word again.
//
// Randomness comes from an injected Rand. The default source is ChaCha8
// seeded from crypto/rand.

package words

import (
	crand "crypto/rand"
	"math/rand/v2"

	"github.com/robalobadob/motdevine/internal/catalog"
)

// Rand is the subset of *math/rand/v2.Rand the selector needs.
type Rand interface {
	IntN(n int) int
}

// Selection is the outcome of one Select call. Word is empty whenever one of
// the completion flags is set.
type Selection struct {
	Word              string `json:"word,omitempty"`
	AllWordsCompleted bool   `json:"allWordsCompleted"`
	CategoryCompleted bool   `json:"categoryCompleted"`
}

// Selector picks target words from a catalog.
type Selector struct {
	cat *catalog.Catalog
	rng Rand
}

// NewSelector builds a Selector over cat. A nil rng uses NewRand().
func NewSelector(cat *catalog.Catalog, rng Rand) *Selector {
	if rng == nil {
		rng = NewRand()
	}
	return &Selector{cat: cat, rng: rng}
}

// NewRand returns a ChaCha8 generator seeded from crypto/rand.
func NewRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// Select returns the next target word for the given category filter.
//
// Guests (loggedIn == false) draw from the whole filtered pool and never get
// a completion flag. Logged-in players draw from filtered − solved; an empty
// pool yields AllWordsCompleted when nothing is left anywhere, otherwise
// CategoryCompleted (callers then retry with catalog.AllKey).
func (s *Selector) Select(filter string, solved map[string]struct{}, loggedIn bool) Selection {
	if filter == "" {
		filter = catalog.AllKey
	}
	filtered := s.cat.WordsInCategory(filter)

	if !loggedIn {
		if len(filtered) == 0 {
			filtered = s.cat.Words()
		}
		return Selection{Word: s.pick(filtered)}
	}

	available := without(filtered, solved)
	if len(available) > 0 {
		return Selection{Word: s.pick(available)}
	}
	if len(without(s.cat.Words(), solved)) == 0 {
		return Selection{AllWordsCompleted: true}
	}
	return Selection{CategoryCompleted: true}
}

// pick draws one element uniformly; empty input gives "".
func (s *Selector) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[s.rng.IntN(len(list))]
}

// without filters out every word present in solved, keeping order.
func without(list []string, solved map[string]struct{}) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if _, done := solved[w]; !done {
			out = append(out, w)
		}
	}
	return out
}
