// internal/hint/budget.go
//
// Per-word letter-reveal budget.
// Lifecycle for one target word:
//   Idle (0 used) → Used (k used, k < max) → Exhausted (k == max)
// Only a successful Reveal moves forward; Reset / SetByWordLength go back to
// Idle. A reveal is refused while the cursor sits where it was at the last
// reveal, so the player must type before asking again.

package hint

import (
	"fmt"

	"github.com/robalobadob/motdevine/internal/textnorm"
)

// noCursor means no reveal happened yet for the current word.
const noCursor = -1

// Budget tracks how many reveals are left for the active word.
// It is owned by a single session and is not safe for concurrent use.
type Budget struct {
	used       int
	max        int
	lastCursor int
	wordLength int
}

// Reveal is a disclosed letter and its 0-based index in the word.
type Reveal struct {
	Letter   rune `json:"letter"`
	Position int  `json:"position"`
}

// NewBudget returns an Idle budget allowing one reveal.
func NewBudget() *Budget {
	return &Budget{max: 1, lastCursor: noCursor}
}

// MaxForLength is the number of reveals granted for a word of n letters.
// Longer words are harder, so they get more help.
func MaxForLength(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 6:
		return 1
	default:
		return 2
	}
}

// SetByWordLength configures the budget for a new word of n letters and
// returns the number of reveals allowed.
func (b *Budget) SetByWordLength(n int) int {
	b.wordLength = n
	b.max = MaxForLength(n)
	b.Reset()
	return b.max
}

// Reset returns to Idle without changing the allowance.
func (b *Budget) Reset() {
	b.used = 0
	b.lastCursor = noCursor
}

// ResetCursorTracking forgets the cursor of the last reveal.
func (b *Budget) ResetCursorTracking() { b.lastCursor = noCursor }

// CanReveal reports whether a reveal is still allowed.
func (b *Budget) CanReveal() bool { return b.used < b.max }

// Used is the number of successful reveals for the current word.
func (b *Budget) Used() int { return b.used }

// Max is the allowance for the current word.
func (b *Budget) Max() int { return b.max }

// Remaining is Max minus Used.
func (b *Budget) Remaining() int { return b.max - b.used }

// WordLength is the length passed to the last SetByWordLength.
func (b *Budget) WordLength() int { return b.wordLength }

// BlockedByCursor reports whether a reveal at cursor would be refused only
// because the player has not moved since the last one.
func (b *Budget) BlockedByCursor(cursor int) bool {
	return b.CanReveal() && cursor == b.lastCursor
}

// Reveal discloses the lowest-index letter of target not yet marked solved.
// It fails with no state change when the budget is exhausted, when cursor
// has not moved since the previous reveal, or when nothing is left to show.
func (b *Budget) Reveal(target string, solved []bool, cursor int) (Reveal, bool) {
	if !b.CanReveal() || cursor == b.lastCursor {
		return Reveal{}, false
	}

	letters := []rune(textnorm.Normalize(target))
	for i, r := range letters {
		if i < len(solved) && solved[i] {
			continue
		}
		b.used++
		b.lastCursor = cursor
		return Reveal{Letter: r, Position: i}, true
	}
	return Reveal{}, false
}

// Label is the help button text: a bare bulb for single-help words, a
// used/max counter otherwise.
func (b *Budget) Label() string {
	if b.max > 1 {
		return fmt.Sprintf("💡%d/%d", b.used, b.max)
	}
	return "💡"
}
