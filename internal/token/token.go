// Package token defines the tree the lexer produces and the annotation
// compiler consumes.
package token

// Kind identifies a token type.
type Kind int

const (
	KindText Kind = iota
	KindStrong
	KindEm
	KindDel
	KindLink
	KindCodespan
	KindCode
	KindHTML
	KindSpace
	KindParagraph
	KindList
	KindListItem
)

var kindNames = [...]string{
	KindText:      "text",
	KindStrong:    "strong",
	KindEm:        "em",
	KindDel:       "del",
	KindLink:      "link",
	KindCodespan:  "codespan",
	KindCode:      "code",
	KindHTML:      "html",
	KindSpace:     "space",
	KindParagraph: "paragraph",
	KindList:      "list",
	KindListItem:  "list_item",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Token is either a leaf carrying text or a container carrying children.
type Token interface {
	Kind() Kind
	token()
}

// Leaf contributes Text to the output and has no children.
type Leaf struct {
	Type Kind
	Text string
}

func (l Leaf) Kind() Kind { return l.Type }
func (Leaf) token()       {}

// Container only carries structure; its text comes from its leaves.
type Container struct {
	Type     Kind
	Children []Token
}

func (c Container) Kind() Kind { return c.Type }
func (Container) token()       {}

// Link is a container that also carries its target and the raw source
// it was parsed from. Raw is what mention detection looks at.
type Link struct {
	Href     string
	Raw      string
	Children []Token
}

func (Link) Kind() Kind { return KindLink }
func (Link) token()     {}

// Children returns the children of a container token, or nil for a leaf.
func Children(t Token) []Token {
	switch v := t.(type) {
	case Container:
		return v.Children
	case Link:
		return v.Children
	}
	return nil
}

func Text(s string) Leaf     { return Leaf{Type: KindText, Text: s} }
func Codespan(s string) Leaf { return Leaf{Type: KindCodespan, Text: s} }
func Code(s string) Leaf     { return Leaf{Type: KindCode, Text: s} }
func HTML(s string) Leaf     { return Leaf{Type: KindHTML, Text: s} }

// Space marks a paragraph break.
func Space() Leaf { return Leaf{Type: KindSpace} }

func Strong(children ...Token) Container {
	return Container{Type: KindStrong, Children: children}
}

func Em(children ...Token) Container {
	return Container{Type: KindEm, Children: children}
}

func Del(children ...Token) Container {
	return Container{Type: KindDel, Children: children}
}

func Paragraph(children ...Token) Container {
	return Container{Type: KindParagraph, Children: children}
}

func List(children ...Token) Container {
	return Container{Type: KindList, Children: children}
}

func ListItem(children ...Token) Container {
	return Container{Type: KindListItem, Children: children}
}

// NewLink builds a link token. raw is the source the link was written as,
// e.g. "[label](href)".
func NewLink(href, raw string, children ...Token) Link {
	return Link{Href: href, Raw: raw, Children: children}
}
