// Package emoji resolves emoji shortcodes and raw emoji in chat text.
package emoji

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark-emoji/definition"
)

// presentationSelector (VS16) asks for emoji presentation of the preceding
// code point.
const presentationSelector = '\uFE0F'

// Entry is a resolved emoji.
type Entry struct {
	// ShortCode is the canonical short name, e.g. "+1".
	ShortCode string
	// Glyph is what the emoji is displayed as: its unicode sequence, or the
	// name of a custom emoji.
	Glyph string
	// Custom is set for emoji without a unicode form.
	Custom bool
}

// Table maps shortcodes to emoji and raw emoji back to their shortcode.
type Table struct {
	defs    definition.Emojis
	reverse map[string]Entry
}

type tableConfig struct {
	extra []definition.Emoji
}

// Option configures a Table.
type Option func(*tableConfig)

// WithCustom registers custom emoji. They have no unicode form and display
// as their name.
func WithCustom(names ...string) Option {
	return func(c *tableConfig) {
		for _, name := range names {
			name = strings.Trim(strings.TrimSpace(name), ":")
			if name == "" {
				continue
			}
			c.extra = append(c.extra, definition.NewEmoji(name, nil, name))
		}
	}
}

// WithEmojis registers additional emoji definitions.
func WithEmojis(emojis ...definition.Emoji) Option {
	return func(c *tableConfig) {
		c.extra = append(c.extra, emojis...)
	}
}

var githubReverse = sync.OnceValue(func() map[string]Entry {
	defs := definition.Github()
	m := make(map[string]Entry, len(githubNames))
	for _, name := range githubNames {
		e, ok := defs.Get(name)
		if !ok || !e.IsUnicode() {
			continue
		}
		entry := newEntry(e)
		key := reverseKey(entry.Glyph)
		if _, exists := m[key]; !exists {
			m[key] = entry
		}
	}
	return m
})

// NewTable returns a table over the GitHub emoji set plus any extra emoji.
func NewTable(opts ...Option) *Table {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table{reverse: githubReverse()}
	if len(cfg.extra) == 0 {
		t.defs = definition.Github()
		return t
	}

	t.defs = definition.Github(definition.WithEmojis(cfg.extra...))
	reverse := make(map[string]Entry, len(t.reverse)+len(cfg.extra))
	for k, v := range t.reverse {
		reverse[k] = v
	}
	for i := range cfg.extra {
		e := &cfg.extra[i]
		if !e.IsUnicode() {
			continue
		}
		entry := newEntry(e)
		key := reverseKey(entry.Glyph)
		if _, exists := reverse[key]; !exists {
			reverse[key] = entry
		}
	}
	t.reverse = reverse
	return t
}

// Lookup resolves a shortcode given without colons.
func (t *Table) Lookup(shortCode string) (Entry, bool) {
	e, ok := t.defs.Get(shortCode)
	if !ok {
		return Entry{}, false
	}
	return newEntry(e), true
}

// Reverse resolves a raw emoji grapheme. Variation selectors are ignored,
// so "❤" and "❤️" resolve to the same entry.
func (t *Table) Reverse(grapheme string) (Entry, bool) {
	e, ok := t.reverse[reverseKey(grapheme)]
	return e, ok
}

// Len returns the number of distinct raw emoji the table can resolve.
func (t *Table) Len() int {
	return len(t.reverse)
}

func newEntry(e *definition.Emoji) Entry {
	short := e.ShortNames[0]
	if !e.IsUnicode() {
		return Entry{ShortCode: short, Glyph: short, Custom: true}
	}
	glyph := string(e.Unicode)
	if len(e.Unicode) == 1 {
		glyph += string(presentationSelector)
	}
	return Entry{ShortCode: short, Glyph: glyph}
}

func reverseKey(s string) string {
	return strings.ReplaceAll(s, string(presentationSelector), "")
}
