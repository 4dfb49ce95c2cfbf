// Package annotate compiles a token tree into display text plus a flat list
// of styled ranges over that text.
package annotate

import "fmt"

// Kind is the type tag of an annotation. The numeric values are shared with
// existing renderers and must not change.
type Kind uint8

const (
	Mention       Kind = 1
	HTTPLink      Kind = 2
	PearLink      Kind = 3
	Bold          Kind = 4
	Italic        Kind = 5
	Code          Kind = 6
	Emoji         Kind = 7
	CodeBlock     Kind = 8
	Strikethrough Kind = 9
)

func (k Kind) String() string {
	switch k {
	case Mention:
		return "MENTION"
	case HTTPLink:
		return "HTTP_LINK"
	case PearLink:
		return "PEAR_LINK"
	case Bold:
		return "BOLD"
	case Italic:
		return "ITALIC"
	case Code:
		return "CODE"
	case Emoji:
		return "EMOJI"
	case CodeBlock:
		return "CODE_BLOCK"
	case Strikethrough:
		return "STRIKETHROUGH"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Annotation styles FinalText[Start:Start+Length], counted in UTF-16 code
// units.
type Annotation struct {
	Kind     Kind   `json:"type"`
	Start    uint   `json:"start"`
	Length   uint   `json:"length"`
	Content  string `json:"content,omitempty"`
	MemberID string `json:"memberId,omitempty"`
}

// End returns the offset just past the annotated range.
func (a Annotation) End() uint { return a.Start + a.Length }

func (a Annotation) String() string {
	s := fmt.Sprintf("%s(%d,%d)", a.Kind, a.Start, a.Length)
	if a.Content != "" {
		s += " " + a.Content
	}
	if a.MemberID != "" {
		s += " @" + a.MemberID
	}
	return s
}

// Result is the output of a compile: the display text and its annotations
// in emission order.
type Result struct {
	FinalText   string       `json:"finalText"`
	Annotations []Annotation `json:"annotations"`
}

func span(kind Kind, start, length uint) Annotation {
	return Annotation{Kind: kind, Start: start, Length: length}
}
