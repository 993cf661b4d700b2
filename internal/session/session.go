// internal/session/session.go
//
// Game session orchestrator.
// Responsibilities:
//   - Own the live round: target word, category filter, attempt count,
//     per-letter board state, hint budget and round timer.
//   - Turn presentation events (keystrokes, help clicks, category changes)
//     into calls on the analyzer, selector and hint budget.
//   - Push every visible change to the Presenter; the presenter never feeds
//     state back except through these handlers.
//
// Notes:
//   - A Game is single-writer. Hosts must serialize calls, including the
//     callbacks they run for Scheduler.After.
//   - Delayed transitions (auto-advance after a win, fallback to "toutes"
//     after a finished category) are single-shot, guarded against double
//     scheduling, and dropped if another round started in between.

package session

import (
	"context"
	"time"

	"github.com/robalobadob/motdevine/internal/catalog"
	"github.com/robalobadob/motdevine/internal/game"
	"github.com/robalobadob/motdevine/internal/hint"
	"github.com/robalobadob/motdevine/internal/store"
	"github.com/robalobadob/motdevine/internal/words"
)

const (
	DefaultAdvanceDelay  = 2500 * time.Millisecond
	DefaultFallbackDelay = 2 * time.Second
)

// Severity tags a feedback message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Tier classifies the feedback shown after a keystroke.
type Tier string

const (
	TierEmpty     Tier = "empty"
	TierPartial   Tier = "partial"
	TierIncorrect Tier = "incorrect" // full length, wrong word
	TierCorrect   Tier = "correct"   // full length, all letters correct
)

// CategoryOption is one entry of the category selector.
type CategoryOption struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Remaining int    `json:"remaining"`
	ShowCount bool   `json:"showCount"`
	Selected  bool   `json:"selected"`
}

// Presenter renders session output.
type Presenter interface {
	NewBoard(length int)
	RenderLetters(input string, states []game.LetterState)
	ShowHint(text string)
	ShowReveal(text string)
	HideReveal()
	ShowHelpLabel(label string, exhausted bool)
	ShowCategories(options []CategoryOption)
	ShowFeedback(msg string, sev Severity)
}

// Persistence is the player data the session reads and writes.
// Implementations recover from bad stored data on their own.
type Persistence interface {
	IsLoggedIn() bool
	SolvedWords(ctx context.Context) map[string]struct{}
	AddSolvedWord(ctx context.Context, word string)
	Preferences(ctx context.Context) store.Preferences
	SavePreferences(ctx context.Context, prefs store.Preferences)
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler runs callbacks on time.AfterFunc goroutines. Only suitable
// when nothing else touches the Game concurrently.
type TimerScheduler struct{}

// After implements Scheduler.
func (TimerScheduler) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// Config wires a Game. Catalog, Persistence and Presenter are required.
type Config struct {
	Catalog     *catalog.Catalog
	Persistence Persistence
	Presenter   Presenter
	Scheduler   Scheduler
	Selector    *words.Selector
	Clues       *hint.Clues
	Now         func() time.Time

	AdvanceDelay  time.Duration
	FallbackDelay time.Duration
}

// Game is one player's live session.
type Game struct {
	cat      *catalog.Catalog
	store    Persistence
	ui       Presenter
	sched    Scheduler
	selector *words.Selector
	clues    *hint.Clues
	now      func() time.Time

	advanceDelay  time.Duration
	fallbackDelay time.Duration

	word     string
	length   int
	category string
	attempts int
	correct  bool
	finished bool

	input  string
	states []game.LetterState
	last   game.GuessResult
	budget *hint.Budget

	startedAt time.Time
	elapsed   time.Duration
	running   bool

	round           int
	advancePending  bool
	fallbackPending bool
}

// New builds a Game. Nothing is selected until Start.
func New(cfg Config) *Game {
	g := &Game{
		cat:           cfg.Catalog,
		store:         cfg.Persistence,
		ui:            cfg.Presenter,
		sched:         cfg.Scheduler,
		selector:      cfg.Selector,
		clues:         cfg.Clues,
		now:           cfg.Now,
		advanceDelay:  cfg.AdvanceDelay,
		fallbackDelay: cfg.FallbackDelay,
		category:      catalog.AllKey,
		budget:        hint.NewBudget(),
	}
	if g.sched == nil {
		g.sched = TimerScheduler{}
	}
	if g.selector == nil {
		g.selector = words.NewSelector(g.cat, nil)
	}
	if g.clues == nil {
		g.clues = hint.NewClues(words.NewRand())
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.advanceDelay <= 0 {
		g.advanceDelay = DefaultAdvanceDelay
	}
	if g.fallbackDelay <= 0 {
		g.fallbackDelay = DefaultFallbackDelay
	}
	return g
}

// Snapshot is a read model of the session for transports.
type Snapshot struct {
	WordLength     int                `json:"wordLength"`
	Hint           string             `json:"hint"`
	Input          string             `json:"input"`
	Letters        []game.LetterState `json:"letters"`
	Cursor         int                `json:"cursor"`
	Category       string             `json:"category"`
	Attempts       int                `json:"attempts"`
	Correct        bool               `json:"correct"`
	Solution       string             `json:"solution,omitempty"` // only once solved
	HelpUsed       int                `json:"helpUsed"`
	HelpMax        int                `json:"helpMax"`
	HelpLabel      string             `json:"helpLabel"`
	ElapsedSeconds int                `json:"elapsedSeconds"`
	Finished       bool               `json:"finished"` // every word solved
	LoggedIn       bool               `json:"loggedIn"`
}

// Snapshot reports the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		WordLength:     g.length,
		Input:          g.input,
		Letters:        append([]game.LetterState(nil), g.states...),
		Cursor:         g.Cursor(),
		Category:       g.category,
		Attempts:       g.attempts,
		Correct:        g.correct,
		HelpUsed:       g.budget.Used(),
		HelpMax:        g.budget.Max(),
		HelpLabel:      g.budget.Label(),
		ElapsedSeconds: int(g.Elapsed() / time.Second),
		Finished:       g.finished,
		LoggedIn:       g.store.IsLoggedIn(),
	}
	if g.word != "" {
		s.Hint, _ = g.cat.Hint(g.word)
	}
	if g.correct {
		s.Solution = g.word
	}
	return s
}

// Word is the current target ("" when no round is active).
func (g *Game) Word() string { return g.word }

// Category is the active category filter.
func (g *Game) Category() string { return g.category }

// Attempts counts full-length guesses for the current word.
func (g *Game) Attempts() int { return g.attempts }

// IsCurrentWordCorrect reports whether the current word has been found.
func (g *Game) IsCurrentWordCorrect() bool { return g.correct }

// Finished reports whether the logged-in player solved every word.
func (g *Game) Finished() bool { return g.finished }

// Budget exposes the hint budget for read-only inspection.
func (g *Game) Budget() *hint.Budget { return g.budget }

// Cursor is the first slot that is not confirmed correct, or -1 when every
// slot is (or no round is active).
func (g *Game) Cursor() int {
	for i, s := range g.states {
		if s != game.LetterCorrect {
			return i
		}
	}
	return -1
}

// Elapsed is the time spent on the current word; frozen once it is solved.
func (g *Game) Elapsed() time.Duration {
	if g.running {
		return g.now().Sub(g.startedAt)
	}
	return g.elapsed
}

func (g *Game) startTimer() {
	g.startedAt = g.now()
	g.elapsed = 0
	g.running = true
}

func (g *Game) stopTimer() time.Duration {
	if g.running {
		g.elapsed = g.now().Sub(g.startedAt)
		g.running = false
	}
	return g.elapsed
}
