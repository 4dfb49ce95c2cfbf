package annotate

import (
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/lvrach/chatmark/internal/mention"
	"github.com/lvrach/chatmark/internal/token"
)

// ScanContext tells a scanner where the leaf it is scanning sits.
type ScanContext struct {
	// InLink is set for leaves inside a link label.
	InLink bool
}

// Scanner finds inline entities in a leaf's text after the structural
// rules ran. It may rewrite the text; annotation starts are base plus the
// offset in the rewritten text.
type Scanner interface {
	Scan(text string, base uint, ctx ScanContext) (string, []Annotation)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(text string, base uint, ctx ScanContext) (string, []Annotation)

func (f ScannerFunc) Scan(text string, base uint, ctx ScanContext) (string, []Annotation) {
	return f(text, base, ctx)
}

// Compiler walks token trees. It holds no per-call state and is safe for
// concurrent use.
type Compiler struct {
	scanners []Scanner
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithScanner appends an inline scanner. Scanners run in the order they
// were added, each over the previous one's output.
func WithScanner(s Scanner) Option {
	return func(c *Compiler) {
		if s != nil {
			c.scanners = append(c.scanners, s)
		}
	}
}

// NewCompiler returns a Compiler with the given scanners.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile walks tokens depth first and returns the display text with its
// annotations in emission order.
func (c *Compiler) Compile(tokens []token.Token) Result {
	w := &walker{compiler: c}
	w.walk(tokens, nil, nil)
	if w.annotations == nil {
		w.annotations = []Annotation{}
	}
	return Result{FinalText: w.out.String(), Annotations: w.annotations}
}

// CompileSource is Compile with the fallback for input that produced no
// tokens at all: the source is returned as is.
func (c *Compiler) CompileSource(source string, tokens []token.Token) Result {
	if len(tokens) == 0 {
		return Result{FinalText: source, Annotations: []Annotation{}}
	}
	return c.Compile(tokens)
}

type linkState struct {
	href      string
	raw       string
	isMention bool
	emitted   bool
}

type walker struct {
	compiler    *Compiler
	out         strings.Builder
	length      uint
	annotations []Annotation
}

func (w *walker) walk(tokens []token.Token, parents []token.Kind, link *linkState) {
	for _, t := range tokens {
		switch v := t.(type) {
		case token.Leaf:
			w.leaf(v, parents, link)
		case token.Link:
			_, isMention := mention.Parse(v.Raw)
			next := &linkState{href: v.Href, raw: v.Raw, isMention: isMention}
			w.walk(v.Children, withKind(parents, token.KindLink), next)
		case token.Container:
			w.walk(v.Children, withKind(parents, v.Type), link)
		}
	}
}

func (w *walker) leaf(t token.Leaf, parents []token.Kind, link *linkState) {
	if link != nil && link.isMention {
		// The first leaf already rendered the whole label.
		if link.emitted {
			return
		}
		link.emitted = true
	}

	start := w.length
	text := html.UnescapeString(t.Text)
	length := Len(text)

	var styles []Annotation
	if len(parents) > 0 {
		var href, raw string
		if link != nil {
			href, raw = link.href, link.raw
		}
		text, styles = Project(parents, start, length, href, raw, text)
		length = Len(text)
	}

	text, leafStyles := Transform(t.Type, text, start, length)
	styles = append(styles, leafStyles...)

	before := Len(text)
	ctx := ScanContext{InLink: slices.Contains(parents, token.KindLink)}
	var found []Annotation
	for _, s := range w.compiler.scanners {
		var more []Annotation
		text, more = s.Scan(text, start, ctx)
		found = append(found, more...)
	}
	if after := Len(text); after != before {
		resize(styles, int(after)-int(before))
	}

	w.annotations = append(w.annotations, styles...)
	w.annotations = append(w.annotations, found...)
	w.out.WriteString(text)
	w.length += Len(text)
}

// resize grows or shrinks leaf-wide annotations after a scanner changed the
// leaf's length.
func resize(styles []Annotation, delta int) {
	for i := range styles {
		n := int(styles[i].Length) + delta
		if n < 0 {
			n = 0
		}
		styles[i].Length = uint(n)
	}
}

// withKind returns parents plus k, keeping first-insertion order. The input
// is never modified so siblings do not see each other's kinds.
func withKind(parents []token.Kind, k token.Kind) []token.Kind {
	if slices.Contains(parents, k) {
		return parents
	}
	next := make([]token.Kind, len(parents), len(parents)+1)
	copy(next, parents)
	return append(next, k)
}
