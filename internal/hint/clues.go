// internal/hint/clues.go
//
// Indirect clues for a revealed letter. Instead of printing the letter the
// player gets a small puzzle whose difficulty follows the word length:
//   - up to 4 letters: the alphabet neighbor ("la lettre avant D");
//   - 5 to 6 letters:  an expression equal to the alphabet position;
//   - 7 and more:      a neighbor of a shifted letter ("Lettre après B+2").
//
// All randomness comes from the injected Rand so tests can pin the output.

package hint

import (
	"fmt"
	"math"
	"unicode"

	"github.com/robalobadob/motdevine/internal/textnorm"
)

// Rand is the subset of *math/rand/v2.Rand the clue maker needs.
type Rand interface {
	IntN(n int) int
}

// Clues builds indirect letter clues.
type Clues struct {
	rng Rand
}

// NewClues returns a clue maker drawing from rng.
func NewClues(rng Rand) *Clues { return &Clues{rng: rng} }

// AlternativeHint describes letter without naming it, for a word of
// wordLength letters.
func (c *Clues) AlternativeHint(letter rune, wordLength int) string {
	folded := []rune(textnorm.Normalize(string(letter)))
	pos := 0
	if len(folded) == 1 {
		pos = alphaPos(folded[0])
	}
	if pos == 0 {
		// Not a plain a–z letter (œ, hyphen, ...): no puzzle fits.
		return fmt.Sprintf("💡 C'est la lettre « %c »", unicode.ToUpper(letter))
	}

	switch {
	case wordLength <= 4:
		return "💡 " + c.neighbor(pos)
	case wordLength <= 6:
		return "💡 Position dans l'alphabet = " + c.expression(pos)
	default:
		return "💡 " + c.shiftedNeighbor(pos)
	}
}

// neighbor phrases pos as the letter just before or after another one.
func (c *Clues) neighbor(pos int) string {
	var hints []string
	if pos < 26 {
		hints = append(hints, fmt.Sprintf("C'est la lettre avant %c", letterAt(pos+1)))
	}
	if pos > 1 {
		hints = append(hints, fmt.Sprintf("C'est la lettre après %c", letterAt(pos-1)))
	}
	return hints[c.rng.IntN(len(hints))]
}

// expression returns an addition, subtraction or product equal to pos.
func (c *Clues) expression(pos int) string {
	switch c.rng.IntN(3) {
	case 1:
		minuend := pos + c.rng.IntN(10) + 1
		return fmt.Sprintf("%d − %d", minuend, minuend-pos)
	case 2:
		if pairs := factorPairs(pos); len(pairs) > 0 {
			p := pairs[c.rng.IntN(len(pairs))]
			return fmt.Sprintf("%d × %d", p[0], p[1])
		}
	}
	return c.sum(pos)
}

func (c *Clues) sum(pos int) string {
	if pos < 2 {
		return fmt.Sprintf("%d + 0", pos)
	}
	a := c.rng.IntN(pos-1) + 1
	return fmt.Sprintf("%d + %d", a, pos-a)
}

// shiftedNeighbor phrases pos as BASE+k or BASE-k with k in 1..3, clamped so
// BASE stays inside the alphabet.
func (c *Clues) shiftedNeighbor(pos int) string {
	var hints []string
	if pos >= 3 {
		k := c.rng.IntN(min(3, pos-1)) + 1
		hints = append(hints, fmt.Sprintf("Lettre après %c+%d", letterAt(pos-k), k))
	}
	if pos <= 24 {
		k := c.rng.IntN(min(3, 26-pos)) + 1
		hints = append(hints, fmt.Sprintf("Lettre avant %c-%d", letterAt(pos+k), k))
	}
	return hints[c.rng.IntN(len(hints))]
}

// factorPairs lists (a, b) with 2 <= a <= b and a*b == n.
func factorPairs(n int) [][2]int {
	var out [][2]int
	for i := 2; i <= int(math.Sqrt(float64(n))); i++ {
		if n%i == 0 {
			out = append(out, [2]int{i, n / i})
		}
	}
	return out
}

// alphaPos maps a..z (any case) to 1..26, anything else to 0.
func alphaPos(r rune) int {
	r = unicode.ToLower(r)
	if r < 'a' || r > 'z' {
		return 0
	}
	return int(r-'a') + 1
}

// letterAt maps 1..26 to A..Z.
func letterAt(pos int) rune { return rune('A' + pos - 1) }
