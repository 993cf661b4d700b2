package session

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/motdevine/internal/catalog"
	"github.com/robalobadob/motdevine/internal/game"
	"github.com/robalobadob/motdevine/internal/hint"
	"github.com/robalobadob/motdevine/internal/store"
	"github.com/robalobadob/motdevine/internal/words"
)

type manualScheduler struct {
	delays []time.Duration
	tasks  []func()
}

func (s *manualScheduler) After(d time.Duration, fn func()) {
	s.delays = append(s.delays, d)
	s.tasks = append(s.tasks, fn)
}

// runPending runs the tasks queued so far; tasks they queue stay pending.
func (s *manualScheduler) runPending() {
	tasks := s.tasks
	s.tasks = nil
	s.delays = nil
	for _, fn := range tasks {
		fn()
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	game    *Game
	rec     *Recorder
	sched   *manualScheduler
	clock   *fakeClock
	profile *store.Profile
	st      store.Store
}

func newHarness(t *testing.T, doc, user string) *harness {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(doc), catalog.DefaultCategories)
	require.NoError(t, err)

	h := &harness{
		rec:   &Recorder{},
		sched: &manualScheduler{},
		clock: &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		st:    store.NewMemoryStore(),
	}
	h.profile = store.NewProfile(h.st, "browser-1")
	if user != "" {
		require.NoError(t, h.profile.Login(context.Background(), user))
	}
	h.game = New(Config{
		Catalog:     cat,
		Persistence: h.profile,
		Presenter:   h.rec,
		Scheduler:   h.sched,
		Selector:    words.NewSelector(cat, rand.New(rand.NewPCG(1, 2))),
		Clues:       hint.NewClues(rand.New(rand.NewPCG(3, 4))),
		Now:         h.clock.Now,
	})
	return h
}

func (h *harness) start() { h.game.Start(context.Background()) }

func (h *harness) key(input string) (game.GuessResult, bool) {
	return h.game.Keystroke(context.Background(), input)
}

// feedback drains the recorder and returns the last feedback event.
func (h *harness) feedback(t *testing.T) Event {
	t.Helper()
	var last Event
	found := false
	for _, e := range h.rec.Drain() {
		if e.Kind == EventFeedback {
			last, found = e, true
		}
	}
	require.True(t, found, "no feedback emitted")
	return last
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

const (
	oneWord = `{"chat": {"hint": "Il miaule", "cat": 1}}`
	twoCats = `{
		"chat":  {"hint": "Il miaule", "cat": 1},
		"pomme": {"hint": "Fruit", "cat": 2}
	}`
	longWord = `{"éléphant": {"hint": "Grande trompe", "cat": 1}}`
)

func TestStartOpensRound(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()

	events := h.rec.Drain()
	assert.Equal(t, []EventKind{EventCategories, EventBoard, EventHint, EventHideReveal, EventHelpLabel, EventFeedback}, kinds(events))
	assert.Equal(t, 4, events[1].Length)
	assert.Equal(t, "Il miaule", events[2].Text)
	assert.Equal(t, "💡", events[4].Text)
	assert.Equal(t, "Nouveau mot de 4 lettres ! Devine-le ! 💭", events[5].Text)
	assert.Equal(t, "chat", h.game.Word())
	assert.Equal(t, 0, h.game.Cursor())
}

func TestKeystrokeFeedbackTiers(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()
	h.rec.Drain()

	res, ok := h.key("ct")
	require.True(t, ok)
	assert.Equal(t, []game.LetterState{game.LetterCorrect, game.LetterWrongPlace}, res.LetterStates)
	fb := h.feedback(t)
	assert.Equal(t, SeverityInfo, fb.Severity)
	assert.Equal(t, "1/4 lettres bien placées", fb.Text)

	_, ok = h.key("ctah")
	require.True(t, ok)
	fb = h.feedback(t)
	assert.Equal(t, SeverityWarning, fb.Severity)
	assert.Contains(t, fb.Text, "2 bien placée(s), 2 mal placée(s)")
	assert.Equal(t, 1, h.game.Attempts())
	assert.False(t, h.game.IsCurrentWordCorrect())
}

func TestKeystrokeTruncatesAndNormalizes(t *testing.T) {
	h := newHarness(t, longWord, "")
	h.start()

	res, ok := h.key("  ELEPHANTS  ")
	require.True(t, ok)
	assert.True(t, res.Correct)
	assert.Len(t, res.LetterStates, 8)
	assert.True(t, h.game.IsCurrentWordCorrect())
}

func TestGreenPrefixIsLocked(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()

	_, ok := h.key("c")
	require.True(t, ok)
	h.rec.Drain()

	_, ok = h.key("")
	assert.False(t, ok)
	events := h.rec.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EventLetters, events[0].Kind)
	assert.Equal(t, "c", events[0].Input)
	assert.Equal(t, msgPrefixLocked, events[1].Text)
	assert.Equal(t, SeverityWarning, events[1].Severity)

	_, ok = h.key("x")
	assert.False(t, ok, "changing a green letter")

	_, ok = h.key("ch")
	require.True(t, ok)
	_, ok = h.key("c")
	assert.False(t, ok, "deleting a green letter")

	_, ok = h.key("chx")
	assert.True(t, ok)
	_, ok = h.key("ch")
	assert.True(t, ok, "non-green letters can be erased")
}

func TestWinRecordsSolvedWordAndAdvancesOnce(t *testing.T) {
	h := newHarness(t, twoCats, "alice")
	h.start()
	first := h.game.Word()
	h.clock.Advance(7 * time.Second)

	_, ok := h.key(first)
	require.True(t, ok)
	assert.True(t, h.game.IsCurrentWordCorrect())

	events := h.rec.Drain()
	var fb Event
	for _, e := range events {
		if e.Kind == EventFeedback {
			fb = e
		}
	}
	assert.Equal(t, SeveritySuccess, fb.Severity)
	assert.Equal(t, `🎉 BRAVO ! Tu as trouvé "`+strings.ToUpper(first)+`" en 7s !`, fb.Text)
	assert.Contains(t, h.profile.SolvedWords(context.Background()), first)

	require.Len(t, h.sched.tasks, 1)
	assert.Equal(t, DefaultAdvanceDelay, h.sched.delays[0])

	// Further input on a solved word is ignored and schedules nothing.
	_, ok = h.key(first)
	assert.False(t, ok)
	assert.Len(t, h.sched.tasks, 1)

	snap := h.game.Snapshot()
	assert.Equal(t, first, snap.Solution)
	assert.Equal(t, 7, snap.ElapsedSeconds)

	h.clock.Advance(time.Minute)
	assert.Equal(t, 7*time.Second, h.game.Elapsed(), "timer stops on win")

	h.sched.runPending()
	assert.NotEqual(t, first, h.game.Word())
	assert.False(t, h.game.IsCurrentWordCorrect())
	assert.Empty(t, h.sched.tasks)
}

func TestGuestWinIsNotRecorded(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()
	h.key("chat")

	assert.True(t, h.game.IsCurrentWordCorrect())
	assert.Empty(t, h.profile.SolvedWords(context.Background()))

	h.sched.runPending()
	assert.Equal(t, "chat", h.game.Word(), "guests replay the catalog")
	assert.False(t, h.game.IsCurrentWordCorrect())
}

func TestAdvanceDroppedAfterManualNewWord(t *testing.T) {
	h := newHarness(t, twoCats, "")
	h.start()
	h.key(h.game.Word())
	require.Len(t, h.sched.tasks, 1)

	h.game.NewWord(context.Background())
	manual := h.game.Word()
	h.rec.Drain()

	h.sched.runPending()
	assert.Equal(t, manual, h.game.Word())
	assert.Zero(t, h.rec.Pending())
}

func TestHelpSingleBudget(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()
	h.rec.Drain()

	require.True(t, h.game.Help(context.Background(), -1))
	events := h.rec.Drain()
	assert.Equal(t, []EventKind{EventReveal, EventHelpLabel, EventFeedback}, kinds(events))
	assert.True(t, strings.HasPrefix(events[0].Text, "💡 "))
	assert.True(t, events[1].Exhausted)
	assert.Equal(t, msgHelpLast, events[2].Text)

	h.key("c")
	assert.False(t, h.game.Help(context.Background(), -1))
	assert.Equal(t, msgHelpExhausted, h.feedback(t).Text)
}

func TestHelpRequiresCursorMove(t *testing.T) {
	h := newHarness(t, longWord, "")
	h.start()
	h.rec.Drain()

	require.True(t, h.game.Help(context.Background(), -1))
	assert.Equal(t, "💡 Indice révélé ! (1 aide restante) Tape une lettre pour réutiliser l'aide ! 💪", h.feedback(t).Text)
	assert.Equal(t, "💡1/2", h.game.Budget().Label())

	assert.False(t, h.game.Help(context.Background(), -1))
	fb := h.feedback(t)
	assert.Equal(t, msgHelpBlocked, fb.Text)
	assert.Equal(t, SeverityWarning, fb.Severity)

	// A wrong letter leaves the cursor where it was.
	h.key("x")
	assert.False(t, h.game.Help(context.Background(), -1))

	h.key("e")
	assert.Equal(t, 1, h.game.Cursor())
	require.True(t, h.game.Help(context.Background(), -1))
	assert.Equal(t, msgHelpLast, h.feedback(t).Text)
	assert.Equal(t, 2, h.game.Budget().Used())
}

func TestHelpIgnoredOnceSolved(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()
	h.key("chat")
	h.rec.Drain()

	assert.False(t, h.game.Help(context.Background(), 3))
	assert.Zero(t, h.rec.Pending())
	assert.Zero(t, h.game.Budget().Used())
}

func TestCategoryCompletionFallsBackToAll(t *testing.T) {
	h := newHarness(t, twoCats, "bob")
	h.start()
	h.game.SetCategory(context.Background(), "animaux")
	require.Equal(t, "chat", h.game.Word())
	assert.Equal(t, "animaux", h.profile.Preferences(context.Background()).SelectedCategory)

	h.key("chat")
	h.sched.runPending()

	fb := h.feedback(t)
	assert.Equal(t, SeveritySuccess, fb.Severity)
	assert.Equal(t, "🎉 Tous les mots 🐶 Animaux trouvés !", fb.Text)
	require.Len(t, h.sched.tasks, 1)
	assert.Equal(t, DefaultFallbackDelay, h.sched.delays[0])

	h.sched.runPending()
	assert.Equal(t, catalog.AllKey, h.game.Category())
	assert.Equal(t, "pomme", h.game.Word())
	assert.Equal(t, catalog.AllKey, h.profile.Preferences(context.Background()).SelectedCategory)
}

func TestFallbackDroppedWhenPlayerPicksCategory(t *testing.T) {
	h := newHarness(t, twoCats, "bob")
	h.start()
	h.game.SetCategory(context.Background(), "animaux")
	h.key("chat")
	h.sched.runPending()
	require.Len(t, h.sched.tasks, 1)

	h.game.SetCategory(context.Background(), "nourriture")
	h.sched.runPending()
	assert.Equal(t, "nourriture", h.game.Category())
	assert.Equal(t, "pomme", h.game.Word())
}

func TestGameCompleted(t *testing.T) {
	h := newHarness(t, oneWord, "carol")
	h.start()
	h.key("chat")
	h.sched.runPending()

	assert.True(t, h.game.Finished())
	assert.Empty(t, h.game.Word())
	assert.Equal(t, msgGameCompleted, h.feedback(t).Text)

	_, ok := h.key("c")
	assert.False(t, ok)
	assert.False(t, h.game.Help(context.Background(), 0))

	// Restarting keeps the completed state.
	h.game.Reload(context.Background())
	assert.True(t, h.game.Finished())

	// A guest gets a round again.
	h.profile.Logout()
	h.game.LoggedOut(context.Background())
	assert.Equal(t, "chat", h.game.Word())
	assert.False(t, h.game.Finished())
}

func TestStartRestoresSavedCategory(t *testing.T) {
	h := newHarness(t, twoCats, "")
	h.profile.SavePreferences(context.Background(), store.Preferences{SelectedCategory: "nourriture"})
	h.start()
	assert.Equal(t, "nourriture", h.game.Category())
	assert.Equal(t, "pomme", h.game.Word())

	var selected []string
	h.game.refreshCategories(context.Background())
	for _, e := range h.rec.Drain() {
		if e.Kind != EventCategories {
			continue
		}
		selected = selected[:0]
		for _, o := range e.Categories {
			if o.Selected {
				selected = append(selected, o.Key)
			}
		}
	}
	assert.Equal(t, []string{"nourriture"}, selected)
}

func TestStartIgnoresUnknownSavedCategory(t *testing.T) {
	h := newHarness(t, twoCats, "")
	h.profile.SavePreferences(context.Background(), store.Preferences{SelectedCategory: "dinosaures"})
	h.start()
	assert.Equal(t, catalog.AllKey, h.game.Category())
}

func TestSetCategoryUnknownKeyUsesMisc(t *testing.T) {
	h := newHarness(t, `{"chat": {"hint": "Il miaule", "cat": 1}, "truc": "Un machin"}`, "")
	h.start()
	h.game.SetCategory(context.Background(), "dinosaures")
	assert.Equal(t, catalog.MiscKey, h.game.Category())
	assert.Equal(t, "truc", h.game.Word())
}

func TestCategoryOptionsCountRemaining(t *testing.T) {
	h := newHarness(t, twoCats, "dave")
	h.start()
	h.game.SetCategory(context.Background(), "animaux")
	h.key("chat")
	h.rec.Drain()

	h.game.refreshCategories(context.Background())
	events := h.rec.Drain()
	require.Len(t, events, 1)
	opts := events[0].Categories
	require.Len(t, opts, 2)
	assert.Equal(t, catalog.AllKey, opts[0].Key)
	assert.False(t, opts[0].ShowCount)
	assert.Equal(t, "nourriture", opts[1].Key)
	assert.Equal(t, 1, opts[1].Remaining)
	assert.True(t, opts[1].ShowCount)
}

func TestResetAllClearsSolvedWords(t *testing.T) {
	h := newHarness(t, oneWord, "erin")
	h.start()
	h.key("chat")
	h.sched.runPending()
	require.True(t, h.game.Finished())

	h.game.ResetAll(context.Background())
	assert.False(t, h.game.Finished())
	assert.Equal(t, "chat", h.game.Word())
	assert.Empty(t, h.profile.SolvedWords(context.Background()))
}

func TestSnapshotBeforeWin(t *testing.T) {
	h := newHarness(t, oneWord, "")
	h.start()
	h.key("cx")

	snap := h.game.Snapshot()
	assert.Equal(t, 4, snap.WordLength)
	assert.Equal(t, "Il miaule", snap.Hint)
	assert.Equal(t, "cx", snap.Input)
	assert.Equal(t, []game.LetterState{game.LetterCorrect, game.LetterWrong, game.LetterUnknown, game.LetterUnknown}, snap.Letters)
	assert.Equal(t, 1, snap.Cursor)
	assert.Empty(t, snap.Solution)
	assert.Equal(t, 1, snap.HelpMax)
	assert.False(t, snap.LoggedIn)
}

func TestStartSkipsExhaustedSavedCategory(t *testing.T) {
	h := newHarness(t, twoCats, "bob")
	ctx := context.Background()
	h.profile.AddSolvedWord(ctx, "chat")
	h.profile.SavePreferences(ctx, store.Preferences{SelectedCategory: "animaux"})

	h.start()
	assert.Equal(t, catalog.AllKey, h.game.Category())
	assert.Equal(t, "pomme", h.game.Word())
	assert.Empty(t, h.sched.tasks)
	for _, e := range h.rec.Drain() {
		if e.Kind == EventFeedback {
			assert.NotContains(t, e.Text, "Tous les mots")
		}
	}
}

func TestFinishedCategoryListSelectsAll(t *testing.T) {
	h := newHarness(t, twoCats, "bob")
	h.start()
	h.game.SetCategory(context.Background(), "animaux")
	h.key("chat")
	h.rec.Drain()

	h.sched.runPending()
	var last []CategoryOption
	for _, e := range h.rec.Drain() {
		if e.Kind == EventCategories {
			last = e.Categories
		}
	}
	require.NotEmpty(t, last)
	for _, o := range last {
		assert.NotEqual(t, "animaux", o.Key)
		assert.Equal(t, o.Key == catalog.AllKey, o.Selected, o.Key)
	}
	assert.Equal(t, catalog.AllKey, h.game.Category())
}
