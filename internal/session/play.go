// internal/session/play.go
//
// In-round handlers: keystrokes, win handling and letter help.
//
// Notes:
//   - Input past the word length is dropped; the green prefix is locked.
//   - attempts counts full-length inputs only.
//   - Help works from the session's own letter states, never from the
//     rendered board.

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/game"
	"github.com/robalobadob/motdevine/internal/textnorm"
)

const (
	msgPrefixLocked  = "⚠️ Les lettres vertes sont verrouillées !"
	msgEmptyInput    = "Tape les lettres du mot ✍️"
	msgHelpBlocked   = "⚠️ Tape d'abord une lettre avant de redemander l'aide !"
	msgHelpExhausted = "⚠️ Toutes les aides ont été utilisées !"
	msgHelpLast      = "💡 Dernier indice révélé ! Plus d'aide disponible ! 💪"
)

// Keystroke handles the full current input of the player.
//
// The input is normalized and cut to the word length. It is rejected, and
// the previous input re-rendered, when it would remove or change letters of
// the confirmed green prefix. Accepted input is analyzed, rendered and
// classified; a full-length all-correct board wins the round.
func (g *Game) Keystroke(ctx context.Context, input string) (game.GuessResult, bool) {
	if g.word == "" || g.correct {
		return game.GuessResult{}, false
	}

	input = game.Truncate(textnorm.Normalize(input), g.length)
	if !g.keepsGreenPrefix(input) {
		g.ui.RenderLetters(g.input, g.states)
		g.ui.ShowFeedback(msgPrefixLocked, SeverityWarning)
		return g.last, false
	}

	res := game.Analyze(input, g.word)
	g.input = input
	g.last = res
	for i := range g.states {
		if i < len(res.LetterStates) {
			g.states[i] = res.LetterStates[i]
		} else {
			g.states[i] = game.LetterUnknown
		}
	}
	g.ui.RenderLetters(g.input, g.states)

	n := len(res.LetterStates)
	if n == g.length {
		g.attempts++
	}
	switch tier := classify(n, g.length, g.states); tier {
	case TierEmpty:
		g.ui.ShowFeedback(msgEmptyInput, SeverityInfo)
	case TierPartial:
		g.ui.ShowFeedback(fmt.Sprintf("%d/%d lettres bien placées", res.CorrectPositions, g.length), SeverityInfo)
	case TierIncorrect:
		g.ui.ShowFeedback(fmt.Sprintf("❌ Pas encore ! %d bien placée(s), %d mal placée(s)", res.CorrectPositions, res.WrongPositions), SeverityWarning)
	case TierCorrect:
		g.win(ctx)
	}
	return res, true
}

func classify(n, length int, states []game.LetterState) Tier {
	switch {
	case n == 0:
		return TierEmpty
	case n < length:
		return TierPartial
	case game.AllCorrect(states, length):
		return TierCorrect
	default:
		return TierIncorrect
	}
}

func (g *Game) keepsGreenPrefix(input string) bool {
	locked := game.GreenPrefix(g.states)
	if locked == 0 {
		return true
	}
	in := []rune(input)
	if len(in) < locked {
		return false
	}
	prev := []rune(g.input)
	for i := 0; i < locked && i < len(prev); i++ {
		if in[i] != prev[i] {
			return false
		}
	}
	return true
}

func (g *Game) win(ctx context.Context) {
	g.correct = true
	secs := int(g.stopTimer().Seconds())

	if g.store.IsLoggedIn() {
		g.store.AddSolvedWord(ctx, g.word)
	}
	log.Info().Str("word", g.word).Int("attempts", g.attempts).Int("seconds", secs).Msg("word found")

	g.ui.ShowFeedback(fmt.Sprintf("🎉 BRAVO ! Tu as trouvé %q en %ds !", strings.ToUpper(g.word), secs), SeveritySuccess)
	// The category list is refreshed by the next selection, which also
	// reports a finished category.
	g.scheduleAdvance()
}

// Help reveals the next unsolved letter as an indirect clue. cursor is the
// presentation cursor; a negative value uses Cursor().
func (g *Game) Help(ctx context.Context, cursor int) bool {
	if g.word == "" || g.correct {
		return false
	}
	if cursor < 0 {
		cursor = g.Cursor()
	}

	solved := make([]bool, len(g.states))
	for i, s := range g.states {
		solved[i] = s == game.LetterCorrect
	}

	r, ok := g.budget.Reveal(g.word, solved, cursor)
	if !ok {
		if g.budget.CanReveal() {
			g.ui.ShowFeedback(msgHelpBlocked, SeverityWarning)
		} else {
			g.ui.ShowFeedback(msgHelpExhausted, SeverityWarning)
		}
		return false
	}

	log.Debug().Str("word", g.word).Int("position", r.Position).Int("used", g.budget.Used()).Msg("hint revealed")
	g.ui.ShowReveal(g.clues.AlternativeHint(r.Letter, g.length))
	g.ui.ShowHelpLabel(g.budget.Label(), !g.budget.CanReveal())

	if left := g.budget.Remaining(); left > 0 {
		g.ui.ShowFeedback(helpLeftMessage(left), SeverityInfo)
	} else {
		g.ui.ShowFeedback(msgHelpLast, SeverityInfo)
	}
	return true
}

func helpLeftMessage(left int) string {
	s := ""
	if left > 1 {
		s = "s"
	}
	return fmt.Sprintf("💡 Indice révélé ! (%d aide%s restante%s) Tape une lettre pour réutiliser l'aide ! 💪", left, s, s)
}
