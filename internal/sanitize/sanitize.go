// Package sanitize normalises chat input before it is tokenized.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/lvrach/chatmark/internal/mention"
)

var (
	leadingSpaces   = regexp.MustCompile(`(?m)^ +`)
	fenceThenWord   = regexp.MustCompile("``` *(\\w)")
	wordThenFence   = regexp.MustCompile("(\\w)```")
	markdownLink    = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	linkLabelMarkup = regexp.MustCompile("[*_`~]")
	nestedQuote     = regexp.MustCompile(`(?m)^([ \t]*)>(?:[ \t]*>)+`)
	mentionLink     = regexp.MustCompile(`\[@((?:\\.|[^\]\\\n])*)\]\(` + mention.Scheme + `://` + mention.TypeUser + `/([^/)\s]+)(?:/([^)\s]*))?\)`)
)

// Input applies every normalisation step in order.
func Input(s string) string {
	s = RemoveLeadingSpaces(s)
	s = FormatCodeFences(s)
	s = CleanLinkLabels(s)
	s = EscapeMentions(s)
	return LimitQuoteNesting(s)
}

// RemoveLeadingSpaces strips spaces at the start of every line. Code
// blocks must be fenced; indentation never starts one.
func RemoveLeadingSpaces(s string) string {
	return leadingSpaces.ReplaceAllString(s, "")
}

// FormatCodeFences moves text touching a ``` fence onto its own line, so
// "```code```" becomes a fenced block.
func FormatCodeFences(s string) string {
	s = fenceThenWord.ReplaceAllString(s, "```\n$1")
	return wordThenFence.ReplaceAllString(s, "$1\n```")
}

// CleanLinkLabels removes emphasis and code markup from link labels.
// Mention labels are left for EscapeMentions.
func CleanLinkLabels(s string) string {
	return markdownLink.ReplaceAllStringFunc(s, func(match string) string {
		m := markdownLink.FindStringSubmatch(match)
		label, dest := m[1], m[2]
		if strings.HasPrefix(dest, "mention://") {
			return match
		}
		return "[" + linkLabelMarkup.ReplaceAllString(label, "") + "](" + dest + ")"
	})
}

// EscapeMentions escapes markdown in mention labels so a label like
// "@a *b*" displays as typed. Labels that are already escaped are left as
// they are.
func EscapeMentions(s string) string {
	return mentionLink.ReplaceAllStringFunc(s, func(match string) string {
		m := mentionLink.FindStringSubmatch(match)
		return mention.Format(mention.Unescape(m[1]), m[2], m[3])
	})
}

// LimitQuoteNesting collapses nested quote markers to a single level.
func LimitQuoteNesting(s string) string {
	return nestedQuote.ReplaceAllString(s, "${1}>")
}
