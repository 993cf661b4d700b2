// internal/game/types.go
//
// Core type definitions for guess analysis.
// Defines:
//   - LetterState: per-letter verdict of a guess (correct/wrong-place/wrong).
//   - GuessResult: the full verdict for one analyzed guess.

package game

// LetterState is the evaluation result for a single letter of a guess.
// Possible values:
//   - "correct":     letter is in the word at this exact position.
//   - "wrong-place": letter is in the word, at another unclaimed position.
//   - "wrong":       letter is not in the word (or every copy is claimed).
//
// The zero value LetterUnknown marks a slot nothing was typed into yet.
type LetterState string

const (
	LetterUnknown    LetterState = ""
	LetterCorrect    LetterState = "correct"
	LetterWrongPlace LetterState = "wrong-place"
	LetterWrong      LetterState = "wrong"
)

// GuessResult holds the verdict for one guess against the target word.
type GuessResult struct {
	Correct          bool          `json:"correct"`          // normalized guess == normalized target
	CorrectPositions int           `json:"correctPositions"` // letters marked correct
	WrongPositions   int           `json:"wrongPositions"`   // letters marked wrong-place
	CorrectLetters   int           `json:"correctLetters"`   // CorrectPositions + WrongPositions
	LetterStates     []LetterState `json:"letterStates"`     // one per analyzed guess letter
}
