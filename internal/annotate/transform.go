package annotate

import (
	"strings"

	"github.com/lvrach/chatmark/internal/token"
)

// Transform applies the per-kind rules of a leaf: which annotation it
// carries and how its text is rewritten before it is appended.
func Transform(kind token.Kind, text string, start, length uint) (string, []Annotation) {
	switch kind {
	case token.KindSpace:
		return text + "\n\n", nil
	case token.KindCodespan:
		return text, []Annotation{span(Code, start, length)}
	case token.KindCode:
		return text + "\n", []Annotation{span(CodeBlock, start, length)}
	case token.KindHTML:
		if isLineBreakTag(text) {
			return "\n", nil
		}
		return text, nil
	default:
		return text, nil
	}
}

func isLineBreakTag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<br>", "<br/>", "<br />":
		return true
	}
	return false
}
