// internal/catalog/load.go
//
// Catalog loading.
// Responsibilities:
//   - Stream the catalog JSON object, keeping word declaration order.
//   - Normalize each entry (object or legacy bare hint) into an Entry.
//   - Route legacy, missing, sentinel and undeclared category ids to the
//     misc bucket, logging each at warn level.
//
// Notes:
//   - Duplicate words keep their first position; the last value wins.
//   - A document with no usable word is ErrEmpty.

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrEmpty is returned when a catalog source holds no usable word.
var ErrEmpty = errors.New("catalog: no words")

// Load reads a catalog document: a JSON object mapping each word either to
// {"hint": "...", "cat": N} or, for legacy entries, to a bare hint string.
// Every entry is converted to a uniform Entry here; legacy strings, missing
// ids, the AllID sentinel and undeclared ids all land in the misc bucket.
// Word order follows the document.
func Load(r io.Reader, categories []Category) (*Catalog, error) {
	c := newCatalog(categories)

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("catalog: expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("catalog: read key: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("catalog: entry %q: %w", key, err)
		}

		word := strings.TrimSpace(key)
		if word == "" {
			log.Warn().Msg("catalog: skipping empty word key")
			continue
		}
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog: entry %q: %w", word, err)
		}
		c.add(word, e)
	}

	if len(c.words) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// decodeEntry accepts both entry shapes.
func decodeEntry(raw json.RawMessage) (Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var hint string
		if err := json.Unmarshal(raw, &hint); err != nil {
			return Entry{}, err
		}
		return Entry{Hint: hint, CategoryID: MiscID}, nil
	}

	var obj struct {
		Hint string `json:"hint"`
		Cat  *int   `json:"cat"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Entry{}, err
	}
	e := Entry{Hint: obj.Hint, CategoryID: MiscID}
	if obj.Cat != nil {
		e.CategoryID = *obj.Cat
	}
	return e, nil
}

// add stores one entry, resolving ids no word may carry.
func (c *Catalog) add(word string, e Entry) {
	if _, known := c.byID[e.CategoryID]; !known || e.CategoryID == AllID {
		log.Warn().Str("word", word).Int("cat", e.CategoryID).Msg("catalog: unknown category, using misc")
		e.CategoryID = MiscID
	}
	if _, dup := c.entries[word]; dup {
		log.Warn().Str("word", word).Msg("catalog: duplicate word, last entry wins")
	} else {
		c.words = append(c.words, word)
	}
	c.entries[word] = e
}
