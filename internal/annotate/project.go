package annotate

import (
	"slices"
	"strings"

	"github.com/lvrach/chatmark/internal/mention"
	"github.com/lvrach/chatmark/internal/token"
)

// Project turns the container kinds enclosing a leaf into annotations over
// the leaf's range, outermost first. A mention link replaces text with the
// mention's display form; every annotation of the call then spans the
// replacement.
func Project(parents []token.Kind, start, length uint, href, raw, text string) (string, []Annotation) {
	m, isMention := mention.Parse(raw)
	if isMention && slices.Contains(parents, token.KindLink) && !isMailto(href) {
		text = m.Display()
		length = Len(text)
	}

	var out []Annotation
	for _, kind := range parents {
		switch kind {
		case token.KindStrong:
			out = append(out, span(Bold, start, length))
		case token.KindEm:
			out = append(out, span(Italic, start, length))
		case token.KindDel:
			out = append(out, span(Strikethrough, start, length))
		case token.KindLink:
			switch {
			case isMailto(href):
			case isMention:
				out = append(out, Annotation{Kind: Mention, Start: start, Length: length, MemberID: m.MemberID})
			default:
				out = append(out, Annotation{Kind: HTTPLink, Start: start, Length: length, Content: href})
			}
		}
	}
	return text, out
}

func isMailto(href string) bool {
	return strings.HasPrefix(href, "mailto:")
}
