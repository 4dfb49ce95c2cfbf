// Package pearlink finds peer-to-peer app links such as
// "pear://keet/abc" in plain text.
package pearlink

import (
	"regexp"

	"github.com/lvrach/chatmark/internal/annotate"
)

// DefaultScheme is the scheme scanned for when none is configured.
const DefaultScheme = "pear"

// Scanner annotates links of a single scheme without rewriting the text.
type Scanner struct {
	scheme  string
	pattern *regexp.Regexp
}

// NewScanner returns a scanner for scheme, or DefaultScheme when empty.
func NewScanner(scheme string) *Scanner {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Scanner{
		scheme:  scheme,
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(scheme) + `://\S+`),
	}
}

// Scheme returns the scanned scheme.
func (s *Scanner) Scheme() string { return s.scheme }

// Scan implements annotate.Scanner. Links inside markdown links are already
// annotated as such and are skipped.
func (s *Scanner) Scan(text string, base uint, ctx annotate.ScanContext) (string, []annotate.Annotation) {
	if ctx.InLink {
		return text, nil
	}
	var found []annotate.Annotation
	for _, m := range s.pattern.FindAllStringIndex(text, -1) {
		found = append(found, annotate.Annotation{
			Kind:    annotate.PearLink,
			Start:   base + annotate.Len(text[:m[0]]),
			Length:  annotate.Len(text[m[0]:m[1]]),
			Content: text[m[0]:m[1]],
		})
	}
	return text, found
}

// Find returns every link of the scheme in text.
func (s *Scanner) Find(text string) []string {
	return s.pattern.FindAllString(text, -1)
}
