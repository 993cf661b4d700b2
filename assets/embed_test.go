package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/motdevine/internal/catalog"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	f, err := Catalog()
	require.NoError(t, err)
	defer f.Close()

	cat, err := catalog.Load(f, catalog.DefaultCategories)
	require.NoError(t, err)
	assert.Greater(t, cat.Len(), 40)

	// Every declared category has words.
	for _, c := range cat.Categories() {
		assert.NotEmpty(t, cat.WordsInCategory(c.Key), c.Key)
	}
	assert.Equal(t, catalog.MiscID, cat.CategoryOf("robot"))
}

func TestEmbeddedWordsHaveHints(t *testing.T) {
	f, err := Catalog()
	require.NoError(t, err)
	defer f.Close()
	cat, err := catalog.Load(f, catalog.DefaultCategories)
	require.NoError(t, err)

	for _, w := range cat.Words() {
		h, ok := cat.Hint(w)
		assert.True(t, ok, w)
		assert.NotEmpty(t, h, w)
	}
}
