// Package lexer tokenizes chat markdown with goldmark and converts the
// resulting AST into the token tree the compiler walks.
//
// Chat markdown is a subset of CommonMark: headings, lists, block quotes,
// thematic breaks and HTML blocks are not recognised and stay literal text.
package lexer

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"github.com/lvrach/chatmark/internal/token"
)

// Lexer turns source text into tokens. It is safe for concurrent use.
type Lexer struct {
	parser parser.Parser
}

type config struct {
	linkify bool
}

// Option configures a Lexer.
type Option func(*config)

// WithLinkify toggles turning bare URLs, www. hosts and e-mail addresses
// into links. It is on by default.
func WithLinkify(on bool) Option {
	return func(c *config) { c.linkify = on }
}

// New returns a Lexer for chat markdown.
func New(opts ...Option) *Lexer {
	cfg := config{linkify: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	inlines := []util.PrioritizedValue{
		util.Prioritized(parser.NewCodeSpanParser(), 100),
		util.Prioritized(parser.NewLinkParser(), 200),
		util.Prioritized(parser.NewAutoLinkParser(), 300),
		util.Prioritized(parser.NewRawHTMLParser(), 400),
		util.Prioritized(parser.NewEmphasisParser(), 500),
		util.Prioritized(extension.NewStrikethroughParser(), 500),
	}
	if cfg.linkify {
		inlines = append(inlines, util.Prioritized(extension.NewLinkifyParser(), 999))
	}

	return &Lexer{
		parser: parser.NewParser(
			parser.WithBlockParsers(
				util.Prioritized(parser.NewCodeBlockParser(), 500),
				util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
				util.Prioritized(parser.NewParagraphParser(), 1000),
			),
			parser.WithInlineParsers(inlines...),
			parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
		),
	}
}

// Lex tokenizes source. Input made only of link reference definitions
// yields no tokens.
func (l *Lexer) Lex(source string) []token.Token {
	src := []byte(source)
	doc := l.parser.Parse(text.NewReader(src))
	c := converter{source: src}
	return c.blocks(doc)
}

type converter struct {
	source []byte
}

func (c *converter) blocks(doc ast.Node) []token.Token {
	var out []token.Token
	var prev ast.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		// Reference definitions can leave a block with nothing in it.
		if !isCodeBlock(n) && n.Lines().Len() == 0 && !n.HasChildren() {
			continue
		}
		t := c.block(n)
		if prev != nil {
			switch {
			case c.blankBetween(prev, n):
				out = append(out, token.Space())
			case !isCodeBlock(prev):
				out = append(out, token.Text("\n"))
			}
		}
		out = append(out, t)
		prev = n
	}
	return out
}

// blankBetween reports whether a blank line separates two sibling blocks
// in the source. HasBlankPreviousLines is unreliable after a closing fence.
func (c *converter) blankBetween(prev, n ast.Node) bool {
	pl, nl := prev.Lines(), n.Lines()
	if pl.Len() == 0 || nl.Len() == 0 {
		return n.HasBlankPreviousLines()
	}
	start, end := pl.At(pl.Len()-1).Stop, nl.At(0).Start
	if start > end || end > len(c.source) {
		return n.HasBlankPreviousLines()
	}
	if start > 0 && c.source[start-1] != '\n' {
		i := bytes.IndexByte(c.source[start:end], '\n')
		if i < 0 {
			return false
		}
		start += i + 1
	}
	for _, line := range bytes.SplitAfter(c.source[start:end], []byte("\n")) {
		if bytes.HasSuffix(line, []byte("\n")) && len(bytes.TrimSpace(line)) == 0 {
			return true
		}
	}
	return false
}

func (c *converter) block(n ast.Node) token.Token {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return token.Code(html.EscapeString(c.lines(n)))
	case ast.KindParagraph:
		return token.Paragraph(c.inlines(n)...)
	default:
		return token.Paragraph(token.Text(c.lines(n)))
	}
}

// lines joins a block's source lines, without the final newline.
func (c *converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (c *converter) inlines(parent ast.Node) []token.Token {
	var out []token.Token
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *ast.Text:
			s := string(v.Value(c.source))
			if (v.SoftLineBreak() || v.HardLineBreak()) && followedByInline(v) {
				s += "\n"
			}
			out = appendText(out, s)
		case *ast.String:
			out = appendText(out, string(v.Value))
		case *ast.Emphasis:
			if v.Level >= 2 {
				out = append(out, token.Strong(c.inlines(v)...))
			} else {
				out = append(out, token.Em(c.inlines(v)...))
			}
		case *east.Strikethrough:
			out = append(out, token.Del(c.inlines(v)...))
		case *ast.CodeSpan:
			out = append(out, token.Codespan(html.EscapeString(c.codeSpan(v))))
		case *ast.Link:
			out = append(out, token.NewLink(string(v.Destination), c.linkRaw(v), c.inlines(v)...))
		case *ast.AutoLink:
			out = append(out, autoLink(v, c.source))
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				b.Write(seg.Value(c.source))
			}
			out = append(out, token.HTML(b.String()))
		case *ast.Image:
			out = appendText(out, c.plain(v))
		default:
			out = append(out, c.inlines(v)...)
		}
	}
	return out
}

// appendText merges adjacent text leaves; goldmark splits text at every
// delimiter it considered.
func appendText(out []token.Token, s string) []token.Token {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 {
		if prev, ok := out[n-1].(token.Leaf); ok && prev.Type == token.KindText {
			out[n-1] = token.Text(prev.Text + s)
			return out
		}
	}
	return append(out, token.Text(s))
}

func (c *converter) codeSpan(n *ast.CodeSpan) string {
	var b bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Value(c.source))
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

// plain concatenates the text under n, dropping all markup.
func (c *converter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := child.(type) {
		case *ast.Text:
			b.Write(v.Value(c.source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// linkRaw rebuilds "[label](destination)" from the source. Mention
// detection matches on this form.
func (c *converter) linkRaw(n *ast.Link) string {
	first, last := -1, -1
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := child.(*ast.Text); ok && entering {
			if first < 0 {
				first = t.Segment.Start
			}
			last = t.Segment.Stop
		}
		return ast.WalkContinue, nil
	})

	label := ""
	if first >= 0 {
		if open := bytes.LastIndexByte(c.source[:first], '['); open >= 0 {
			first = open + 1
		}
		if end := bytes.IndexByte(c.source[last:], ']'); end >= 0 {
			last += end
		}
		label = string(c.source[first:last])
	}
	return "[" + label + "](" + string(n.Destination) + ")"
}

func autoLink(n *ast.AutoLink, source []byte) token.Link {
	label := string(n.Label(source))
	href := string(n.URL(source))
	if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		href = "mailto:" + href
	}
	return token.NewLink(href, label, token.Text(label))
}

// followedByInline reports whether anything follows n inside its block.
// Line breaks at the end of a block are dropped.
func followedByInline(n ast.Node) bool {
	for cur := n; cur != nil && cur.Type() == ast.TypeInline; cur = cur.Parent() {
		if cur.NextSibling() != nil {
			return true
		}
	}
	return false
}

func isCodeBlock(n ast.Node) bool {
	k := n.Kind()
	return k == ast.KindFencedCodeBlock || k == ast.KindCodeBlock
}
