package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark-emoji/definition"

	"github.com/lvrach/chatmark/internal/annotate"
)

func emojiAt(start, length uint, content string) annotate.Annotation {
	return annotate.Annotation{Kind: annotate.Emoji, Start: start, Length: length, Content: content}
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable(WithCustom("bitcoin", ":keet_music:"))

	e, ok := table.Lookup("+1")
	require.True(t, ok)
	assert.Equal(t, Entry{ShortCode: "+1", Glyph: "👍️"}, e)

	e, ok = table.Lookup("thumbsup")
	require.True(t, ok)
	assert.Equal(t, "+1", e.ShortCode)

	e, ok = table.Lookup("heart")
	require.True(t, ok)
	assert.Equal(t, "❤️", e.Glyph)

	e, ok = table.Lookup("bitcoin")
	require.True(t, ok)
	assert.Equal(t, Entry{ShortCode: "bitcoin", Glyph: "bitcoin", Custom: true}, e)

	_, ok = table.Lookup("keet_music")
	assert.True(t, ok)

	_, ok = table.Lookup("definitely_not_an_emoji")
	assert.False(t, ok)
}

func TestTable_Reverse(t *testing.T) {
	table := NewTable()

	e, ok := table.Reverse("👍")
	require.True(t, ok)
	assert.Equal(t, "+1", e.ShortCode)

	heart, ok := table.Reverse("❤")
	require.True(t, ok)
	withSelector, ok := table.Reverse("❤️")
	require.True(t, ok)
	assert.Equal(t, heart, withSelector)

	_, ok = table.Reverse("a")
	assert.False(t, ok)
	assert.Greater(t, table.Len(), 1000)
}

func TestTable_WithEmojis(t *testing.T) {
	table := NewTable(WithEmojis(definition.NewEmoji("pear", []rune{0x1F350}, "pear_fruit")))

	e, ok := table.Lookup("pear_fruit")
	require.True(t, ok)
	assert.Equal(t, "pear_fruit", e.ShortCode)

	_, ok = NewTable().Lookup("pear_fruit")
	assert.False(t, ok, "extra emoji must not leak into other tables")
}

func TestScanner(t *testing.T) {
	s := NewScanner(NewTable(WithCustom("bitcoin")))

	tests := []struct {
		name     string
		text     string
		base     uint
		ctx      annotate.ScanContext
		wantText string
		want     []annotate.Annotation
	}{
		{
			name:     "single raw emoji starts at zero",
			text:     "👍",
			wantText: "👍️",
			want:     []annotate.Annotation{emojiAt(0, 3, "+1")},
		},
		{
			name:     "shortcode",
			text:     ":+1:",
			wantText: "👍️",
			want:     []annotate.Annotation{emojiAt(0, 3, "+1")},
		},
		{
			name:     "alias resolves to canonical shortcode",
			text:     "ok :thumbsup:",
			wantText: "ok 👍️",
			want:     []annotate.Annotation{emojiAt(3, 3, "+1")},
		},
		{
			name:     "custom emoji displays as name",
			text:     "Qwe :bitcoin::bitcoin:",
			wantText: "Qwe bitcoinbitcoin",
			want:     []annotate.Annotation{emojiAt(4, 7, "bitcoin"), emojiAt(11, 7, "bitcoin")},
		},
		{
			name:     "base offset",
			text:     "a :bitcoin:",
			base:     10,
			wantText: "a bitcoin",
			want:     []annotate.Annotation{emojiAt(12, 7, "bitcoin")},
		},
		{
			name:     "offsets follow rewritten text",
			text:     "😎 :+1:",
			wantText: "😎️ 👍️",
			want:     []annotate.Annotation{emojiAt(0, 3, "sunglasses"), emojiAt(4, 3, "+1")},
		},
		{
			name:     "unknown shortcode kept",
			text:     "time :nope: now",
			wantText: "time :nope: now",
		},
		{
			name:     "unknown shortcode consumes its colons",
			text:     ":nope:smile:",
			wantText: ":nope:smile:",
		},
		{
			name:     "raw emoji kept inside links",
			text:     "@Nick 😎 Android",
			ctx:      annotate.ScanContext{InLink: true},
			wantText: "@Nick 😎 Android",
		},
		{
			name:     "shortcodes resolve inside links",
			text:     "go :bitcoin:",
			ctx:      annotate.ScanContext{InLink: true},
			wantText: "go bitcoin",
			want:     []annotate.Annotation{emojiAt(3, 7, "bitcoin")},
		},
		{
			name:     "plain text",
			text:     "nothing to see: here",
			wantText: "nothing to see: here",
		},
		{
			name:     "accented text is not emoji",
			text:     "café",
			wantText: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, got := s.Scan(tt.text, tt.base, tt.ctx)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.want, got)
			for _, a := range got {
				assert.LessOrEqual(t, a.End(), tt.base+annotate.Len(text))
			}
		})
	}
}
