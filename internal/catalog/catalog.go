// internal/catalog/catalog.go
//
// Static word catalog and category index.
// Responsibilities:
//   - Hold the category table (declaration order matters for selectors).
//   - Map every word to exactly one category id (misc bucket by default).
//   - Answer category queries: words in a category, categories that still
//     have unsolved words, and remaining counts.
//
// A Catalog is built once at load time and never mutated afterwards, so it is
// safe to share between sessions without locking.

package catalog

const (
	// AllKey / AllID name the "every category" pseudo-category. No word is
	// ever assigned to it.
	AllKey = "toutes"
	AllID  = 0

	// MiscKey / MiscID name the bucket for words without an explicit category.
	MiscKey = "autres"
	MiscID  = 99
)

// Category is one thematic grouping of words.
type Category struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Label is the display form, icon first.
func (c Category) Label() string {
	if c.Icon == "" {
		return c.Name
	}
	return c.Icon + " " + c.Name
}

// DefaultCategories is the category table shipped with the game.
var DefaultCategories = []Category{
	{ID: AllID, Key: AllKey, Name: "Toutes", Icon: "📦"},
	{ID: 1, Key: "animaux", Name: "Animaux", Icon: "🐶"},
	{ID: 2, Key: "nourriture", Name: "Nourriture", Icon: "🍎"},
	{ID: 3, Key: "nature", Name: "Nature", Icon: "🌍"},
	{ID: 4, Key: "vehicules", Name: "Véhicules", Icon: "🚗"},
	{ID: 5, Key: "nombres", Name: "Nombres", Icon: "🔢"},
	{ID: 6, Key: "temps", Name: "Temps", Icon: "📅"},
	{ID: 7, Key: "emotions", Name: "Émotions", Icon: "😊"},
	{ID: 8, Key: "personnages", Name: "Personnages", Icon: "🦸"},
	{ID: 9, Key: "corps", Name: "Corps", Icon: "🧍"},
	{ID: 10, Key: "maison", Name: "Maison", Icon: "🏠"},
	{ID: 11, Key: "couleurs", Name: "Couleurs", Icon: "🎨"},
	{ID: 12, Key: "objets", Name: "Objets", Icon: "⚔️"},
	{ID: 13, Key: "sports", Name: "Sports", Icon: "⚽"},
	{ID: MiscID, Key: MiscKey, Name: "Divers", Icon: "🎲"},
}

// Entry is the normalized catalog record for one word.
type Entry struct {
	Hint       string `json:"hint"`
	CategoryID int    `json:"cat"`
}

// Catalog is the immutable word list plus its category index.
type Catalog struct {
	categories []Category
	byID       map[int]Category
	byKey      map[string]Category

	words   []string         // declaration order
	entries map[string]Entry // keyed by word
}

// newCatalog indexes categories. The misc bucket is appended when the table
// lacks one so every fallback has somewhere to land.
func newCatalog(categories []Category) *Catalog {
	c := &Catalog{
		byID:    make(map[int]Category, len(categories)+1),
		byKey:   make(map[string]Category, len(categories)+1),
		entries: make(map[string]Entry),
	}
	for _, cat := range categories {
		if _, dup := c.byID[cat.ID]; dup {
			continue
		}
		c.categories = append(c.categories, cat)
		c.byID[cat.ID] = cat
		c.byKey[cat.Key] = cat
	}
	if _, ok := c.byID[MiscID]; !ok {
		misc := Category{ID: MiscID, Key: MiscKey, Name: "Divers", Icon: "🎲"}
		c.categories = append(c.categories, misc)
		c.byID[MiscID] = misc
		c.byKey[MiscKey] = misc
	}
	return c
}

// Categories returns the category table in declaration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryByID resolves id, falling back to the misc bucket.
func (c *Catalog) CategoryByID(id int) Category {
	if cat, ok := c.byID[id]; ok {
		return cat
	}
	return c.byID[MiscID]
}

// CategoryByKey resolves key, falling back to the misc bucket.
func (c *Catalog) CategoryByKey(key string) Category {
	if cat, ok := c.byKey[key]; ok {
		return cat
	}
	return c.byID[MiscID]
}

// HasCategory reports whether key names a declared category.
func (c *Catalog) HasCategory(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// CategoryName returns the display label for key.
func (c *Catalog) CategoryName(key string) string {
	return c.CategoryByKey(key).Label()
}

// Words returns every word in declaration order.
func (c *Catalog) Words() []string {
	out := make([]string, len(c.words))
	copy(out, c.words)
	return out
}

// Len is the number of words.
func (c *Catalog) Len() int { return len(c.words) }

// Has reports whether word is in the catalog.
func (c *Catalog) Has(word string) bool {
	_, ok := c.entries[word]
	return ok
}

// Hint returns the clue text for word.
func (c *Catalog) Hint(word string) (string, bool) {
	e, ok := c.entries[word]
	if !ok {
		return "", false
	}
	return e.Hint, true
}

// CategoryOf returns the category id of word, or MiscID for unknown words.
func (c *Catalog) CategoryOf(word string) int {
	if e, ok := c.entries[word]; ok {
		return e.CategoryID
	}
	return MiscID
}

// WordsInCategory lists the words of category key in declaration order.
// AllKey returns every word; unknown keys resolve to the misc bucket.
func (c *Catalog) WordsInCategory(key string) []string {
	cat := c.CategoryByKey(key)
	if cat.ID == AllID {
		return c.Words()
	}
	var out []string
	for _, w := range c.words {
		if c.entries[w].CategoryID == cat.ID {
			out = append(out, w)
		}
	}
	return out
}

// AvailableCategories lists the category keys that still have at least one
// unsolved word. AllKey comes first whenever anything is left; the others
// follow declaration order. A nil solved set means nothing is tracked.
func (c *Catalog) AvailableCategories(solved map[string]struct{}) []string {
	counts := make(map[int]int)
	total := 0
	for _, w := range c.words {
		if _, done := solved[w]; done {
			continue
		}
		counts[c.entries[w].CategoryID]++
		total++
	}

	var out []string
	if total > 0 {
		out = append(out, AllKey)
	}
	for _, cat := range c.categories {
		if cat.ID != AllID && counts[cat.ID] > 0 {
			out = append(out, cat.Key)
		}
	}
	return out
}

// RemainingCount is the number of unsolved words in category key. With a nil
// solved set (guest mode) it is the raw category size.
func (c *Catalog) RemainingCount(key string, solved map[string]struct{}) int {
	n := 0
	for _, w := range c.WordsInCategory(key) {
		if _, done := solved[w]; !done {
			n++
		}
	}
	return n
}
