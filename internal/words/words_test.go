package words

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/motdevine/internal/catalog"
)

const doc = `{
	"chat":  {"hint": "Il miaule", "cat": 1},
	"chien": {"hint": "Il aboie", "cat": 1},
	"lapin": {"hint": "Grandes oreilles", "cat": 1},
	"pomme": {"hint": "Fruit", "cat": 2},
	"poire": {"hint": "Fruit aussi", "cat": 2},
	"arbre": {"hint": "Feuilles", "cat": 3}
}`

func newSelector(t *testing.T) (*Selector, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(doc), catalog.DefaultCategories)
	require.NoError(t, err)
	return NewSelector(c, rand.New(rand.NewPCG(42, 1))), c
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func TestSelectGuestUsesFilter(t *testing.T) {
	s, c := newSelector(t)
	for i := 0; i < 50; i++ {
		sel := s.Select("animaux", set("chat", "chien", "lapin"), false)
		require.NotEmpty(t, sel.Word)
		assert.Equal(t, 1, c.CategoryOf(sel.Word))
		assert.False(t, sel.CategoryCompleted)
		assert.False(t, sel.AllWordsCompleted)
	}
}

func TestSelectGuestEmptyCategoryFallsBackToAll(t *testing.T) {
	s, c := newSelector(t)
	sel := s.Select("sports", nil, false)
	assert.True(t, c.Has(sel.Word))
}

func TestSelectLoggedInNeverReturnsSolved(t *testing.T) {
	s, _ := newSelector(t)
	solved := set("chat", "pomme", "arbre")
	for i := 0; i < 200; i++ {
		sel := s.Select(catalog.AllKey, solved, true)
		require.NotEmpty(t, sel.Word)
		assert.NotContains(t, solved, sel.Word)
	}
}

func TestSelectEmptyFilterMeansAll(t *testing.T) {
	s, c := newSelector(t)
	sel := s.Select("", nil, true)
	assert.True(t, c.Has(sel.Word))
}

func TestSelectCategoryCompleted(t *testing.T) {
	s, c := newSelector(t)
	solved := set("chat", "chien", "lapin")

	sel := s.Select("animaux", solved, true)
	assert.Equal(t, Selection{CategoryCompleted: true}, sel)

	next := s.Select(catalog.AllKey, solved, true)
	require.NotEmpty(t, next.Word)
	assert.NotEqual(t, 1, c.CategoryOf(next.Word))
}

func TestSelectAllWordsCompleted(t *testing.T) {
	s, c := newSelector(t)
	solved := set(c.Words()...)

	assert.Equal(t, Selection{AllWordsCompleted: true}, s.Select("animaux", solved, true))
	assert.Equal(t, Selection{AllWordsCompleted: true}, s.Select(catalog.AllKey, solved, true))

	// Guests never see completion.
	assert.NotEmpty(t, s.Select(catalog.AllKey, solved, false).Word)
}

func TestSelectUniformOverCandidates(t *testing.T) {
	s, _ := newSelector(t)
	counts := map[string]int{}
	const draws = 3000
	for i := 0; i < draws; i++ {
		counts[s.Select("animaux", nil, true).Word]++
	}
	require.Len(t, counts, 3)
	for w, n := range counts {
		assert.InDelta(t, draws/3, n, draws/10, w)
	}
}

func TestSelectDeterministicForSeed(t *testing.T) {
	c, err := catalog.Load(strings.NewReader(doc), catalog.DefaultCategories)
	require.NoError(t, err)
	a := NewSelector(c, rand.New(rand.NewPCG(5, 5)))
	b := NewSelector(c, rand.New(rand.NewPCG(5, 5)))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Select(catalog.AllKey, nil, false), b.Select(catalog.AllKey, nil, false))
	}
}

func TestNewSelectorDefaultRand(t *testing.T) {
	c, err := catalog.Load(strings.NewReader(doc), catalog.DefaultCategories)
	require.NoError(t, err)
	s := NewSelector(c, nil)
	assert.True(t, c.Has(s.Select(catalog.AllKey, nil, false).Word))
}
