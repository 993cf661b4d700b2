// internal/game/analyzer.go
//
// Guess analysis for the word-guessing game.
// Responsibilities:
//   - Normalize guess and target (case, accents, whitespace).
//   - Score guesses with a two-pass algorithm that credits each target
//     position to at most one guess letter.
//   - Small helpers the session uses to read a verdict (green prefix,
//     full-length win, rune-safe truncation).
//
// Notes:
//   - Comparison is rune based so accented or non-ASCII letters survive.
//   - A guess shorter than the target is analyzed only over its typed prefix;
//     callers truncate guesses longer than the target before calling Analyze.

package game

import (
	"github.com/robalobadob/motdevine/internal/textnorm"
)

// Analyze compares guess with target and returns per-letter verdicts.
//
// Pass 1:
//   - Mark exact matches as correct and consume that target position.
//
// Pass 2:
//   - For each remaining guess letter, left to right, consume the first
//     unconsumed target position holding the same letter (wrong-place);
//     otherwise mark it wrong.
//
// Positions past the end of the target are marked wrong.
func Analyze(guess, target string) GuessResult {
	g := []rune(textnorm.Normalize(guess))
	w := []rune(textnorm.Normalize(target))

	res := GuessResult{
		Correct:      string(g) == string(w),
		LetterStates: make([]LetterState, len(g)),
	}
	used := make([]bool, len(w))

	// First pass: exact positions.
	for i := 0; i < len(g) && i < len(w); i++ {
		if g[i] == w[i] {
			res.LetterStates[i] = LetterCorrect
			res.CorrectPositions++
			used[i] = true
		}
	}

	// Second pass: misplaced letters against unconsumed positions.
	for i := range g {
		if res.LetterStates[i] == LetterCorrect {
			continue
		}
		res.LetterStates[i] = LetterWrong
		for j := range w {
			if !used[j] && g[i] == w[j] {
				res.LetterStates[i] = LetterWrongPlace
				res.WrongPositions++
				used[j] = true
				break
			}
		}
	}

	res.CorrectLetters = res.CorrectPositions + res.WrongPositions
	return res
}

// GreenPrefix counts consecutive correct states from index 0.
func GreenPrefix(states []LetterState) int {
	n := 0
	for _, s := range states {
		if s != LetterCorrect {
			break
		}
		n++
	}
	return n
}

// AllCorrect reports whether states covers n letters, all correct.
func AllCorrect(states []LetterState, n int) bool {
	return n > 0 && len(states) == n && GreenPrefix(states) == n
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Length is the rune length of the normalized word, which is what the board
// displays.
func Length(word string) int {
	return len([]rune(textnorm.Normalize(word)))
}
