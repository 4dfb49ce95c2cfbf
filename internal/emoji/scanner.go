package emoji

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/lvrach/chatmark/internal/annotate"
)

var shortCodePattern = regexp.MustCompile(`^:([a-zA-Z0-9_\-+]+):`)

// Scanner replaces shortcodes and raw emoji with their display glyph and
// annotates each one.
type Scanner struct {
	table *Table
}

// NewScanner returns a scanner over t.
func NewScanner(t *Table) *Scanner {
	return &Scanner{table: t}
}

// Scan implements annotate.Scanner. Shortcodes resolve everywhere; raw
// emoji are left alone inside links so labels display as typed.
func (s *Scanner) Scan(text string, base uint, ctx annotate.ScanContext) (string, []annotate.Annotation) {
	if !strings.ContainsRune(text, ':') && (ctx.InLink || isASCII(text)) {
		return text, nil
	}

	var (
		out   strings.Builder
		n     uint
		found []annotate.Annotation
	)
	emit := func(e Entry) {
		length := annotate.Len(e.Glyph)
		found = append(found, annotate.Annotation{
			Kind:    annotate.Emoji,
			Start:   base + n,
			Length:  length,
			Content: e.ShortCode,
		})
		out.WriteString(e.Glyph)
		n += length
	}
	write := func(str string) {
		out.WriteString(str)
		n += annotate.Len(str)
	}

	rest := text
	state := -1
	for rest != "" {
		if rest[0] == ':' {
			if m := shortCodePattern.FindStringSubmatchIndex(rest); m != nil {
				if e, ok := s.table.Lookup(rest[m[2]:m[3]]); ok {
					emit(e)
				} else {
					write(rest[:m[1]])
				}
				rest = rest[m[1]:]
				state = -1
				continue
			}
		}

		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if !ctx.InLink && !isASCII(cluster) {
			if e, ok := s.table.Reverse(cluster); ok {
				emit(e)
				continue
			}
		}
		write(cluster)
	}
	return out.String(), found
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
