// internal/session/round.go
//
// Round lifecycle: start, word selection, category changes, login/logout
// reloads, game completion and the delayed transitions between rounds.

package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/catalog"
	"github.com/robalobadob/motdevine/internal/game"
	"github.com/robalobadob/motdevine/internal/store"
)

const (
	msgGameCompleted = "🏆 FÉLICITATIONS ! Tu as terminé TOUS les mots du jeu ! 🏆 Tu es un CHAMPION ! 👑"
	msgNoHint        = "Devine le mot !"
)

// Start loads the saved category, publishes the category list and opens the
// first round. A saved category with nothing left falls back to "toutes"
// before the word is picked.
func (g *Game) Start(ctx context.Context) {
	prefs := g.store.Preferences(ctx)
	g.category = prefs.SelectedCategory
	if !g.cat.HasCategory(g.category) {
		g.category = catalog.AllKey
	}
	log.Debug().Str("category", g.category).Msg("session start")

	g.refreshCategories(ctx)
	g.selectWord(ctx)
}

// NewWord abandons the current round and selects another word.
func (g *Game) NewWord(ctx context.Context) {
	g.selectWord(ctx)
	g.refreshCategories(ctx)
}

// SetCategory switches the category filter, remembers it and starts a new
// round. Unknown keys resolve to the misc bucket.
func (g *Game) SetCategory(ctx context.Context, key string) {
	if key != catalog.AllKey {
		key = g.cat.CategoryByKey(key).Key
	}
	g.category = key
	g.ui.ShowFeedback(fmt.Sprintf("Catégorie: %s", g.cat.CategoryName(key)), SeverityInfo)
	g.store.SavePreferences(ctx, store.Preferences{SelectedCategory: key})
	g.NewWord(ctx)
}

// Reload restarts after the player identity changed (login, reset): the saved
// category and solved words of the new identity apply from the next round.
func (g *Game) Reload(ctx context.Context) {
	g.Start(ctx)
}

// LoggedOut keeps the current round for the guest but refreshes the category
// list. A finished game gets a fresh round since guests never run out.
func (g *Game) LoggedOut(ctx context.Context) {
	g.refreshCategories(ctx)
	if g.word == "" {
		g.selectWord(ctx)
	}
}

// ResetAll clears the player's solved words when the persistence layer
// supports it, then reloads.
func (g *Game) ResetAll(ctx context.Context) {
	if r, ok := g.store.(interface{ ResetAll(context.Context) }); ok {
		r.ResetAll(ctx)
	}
	g.Reload(ctx)
}

func (g *Game) selectWord(ctx context.Context) {
	var solved map[string]struct{}
	loggedIn := g.store.IsLoggedIn()
	if loggedIn {
		solved = g.store.SolvedWords(ctx)
	}

	sel := g.selector.Select(g.category, solved, loggedIn)
	switch {
	case sel.AllWordsCompleted:
		g.gameCompleted()
	case sel.CategoryCompleted:
		log.Info().Str("category", g.category).Msg("category completed")
		g.ui.ShowFeedback(fmt.Sprintf("🎉 Tous les mots %s trouvés !", g.cat.CategoryName(g.category)), SeveritySuccess)
		g.scheduleFallback()
	case sel.Word != "":
		g.begin(sel.Word)
	default:
		g.clearRound()
		g.ui.ShowFeedback("Aucun mot disponible.", SeverityError)
	}
}

func (g *Game) begin(word string) {
	g.round++
	g.finished = false
	g.word = word
	g.length = game.Length(word)
	g.attempts = 0
	g.correct = false
	g.input = ""
	g.last = game.GuessResult{}
	g.states = make([]game.LetterState, g.length)
	g.budget.SetByWordLength(g.length)
	g.startTimer()

	log.Debug().Str("word", word).Str("category", g.category).Int("length", g.length).Msg("new word")

	g.ui.NewBoard(g.length)
	h, _ := g.cat.Hint(word)
	if h == "" {
		h = msgNoHint
	}
	g.ui.ShowHint(h)
	g.ui.HideReveal()
	g.ui.ShowHelpLabel(g.budget.Label(), false)
	g.ui.ShowFeedback(fmt.Sprintf("Nouveau mot de %d lettres ! Devine-le ! 💭", g.length), SeverityInfo)
}

func (g *Game) clearRound() {
	g.round++
	g.word = ""
	g.length = 0
	g.input = ""
	g.states = nil
	g.last = game.GuessResult{}
	g.correct = false
	g.budget.Reset()
	g.stopTimer()
}

func (g *Game) gameCompleted() {
	log.Info().Msg("every word solved")
	g.clearRound()
	g.finished = true
	g.ui.ShowFeedback(msgGameCompleted, SeveritySuccess)
}

// refreshCategories publishes the categories that still have words. A
// current category that is no longer among them falls back to "toutes".
func (g *Game) refreshCategories(ctx context.Context) {
	var solved map[string]struct{}
	if g.store.IsLoggedIn() {
		solved = g.store.SolvedWords(ctx)
	}

	keys := g.cat.AvailableCategories(solved)
	if !slices.Contains(keys, g.category) {
		log.Debug().Str("category", g.category).Msg("category unavailable, using toutes")
		g.category = catalog.AllKey
	}
	opts := make([]CategoryOption, 0, len(keys))
	for _, key := range keys {
		opts = append(opts, CategoryOption{
			Key:       key,
			Label:     g.cat.CategoryName(key),
			Remaining: g.cat.RemainingCount(key, solved),
			ShowCount: key != catalog.AllKey,
			Selected:  key == g.category,
		})
	}
	g.ui.ShowCategories(opts)
}

// scheduleAdvance queues the next word after a win. At most one advance is
// pending and it is dropped if the round changed before it fires.
func (g *Game) scheduleAdvance() {
	if g.advancePending {
		return
	}
	g.advancePending = true
	round := g.round
	g.sched.After(g.advanceDelay, func() {
		g.advancePending = false
		if g.round != round || !g.correct {
			return
		}
		g.NewWord(context.Background())
	})
}

// scheduleFallback returns to "toutes" after a category ran out.
func (g *Game) scheduleFallback() {
	if g.fallbackPending {
		return
	}
	g.fallbackPending = true
	round := g.round
	g.sched.After(g.fallbackDelay, func() {
		g.fallbackPending = false
		if g.round != round {
			return
		}
		ctx := context.Background()
		g.category = catalog.AllKey
		g.store.SavePreferences(ctx, store.Preferences{SelectedCategory: catalog.AllKey})
		g.NewWord(ctx)
	})
}
