package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvrach/chatmark/internal/token"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Token
	}{
		{
			name:   "plain text",
			source: "hello",
			want:   []token.Token{token.Paragraph(token.Text("hello"))},
		},
		{
			name:   "bold",
			source: "text **bold space**",
			want: []token.Token{token.Paragraph(
				token.Text("text "),
				token.Strong(token.Text("bold space")),
			)},
		},
		{
			name:   "unclosed bold",
			source: "**bold space",
			want:   []token.Token{token.Paragraph(token.Text("**bold space"))},
		},
		{
			name:   "underscore italic",
			source: "_it_",
			want:   []token.Token{token.Paragraph(token.Em(token.Text("it")))},
		},
		{
			name:   "strikethrough with bold",
			source: "~~a **b** c~~",
			want: []token.Token{token.Paragraph(token.Del(
				token.Text("a "),
				token.Strong(token.Text("b")),
				token.Text(" c"),
			))},
		},
		{
			name:   "codespan trims one space on each side",
			source: "` inline code `",
			want:   []token.Token{token.Paragraph(token.Codespan("inline code"))},
		},
		{
			name:   "codespan with shorter backtick runs inside",
			source: "`inline1``inline2`",
			want:   []token.Token{token.Paragraph(token.Codespan("inline1``inline2"))},
		},
		{
			name:   "double backtick codespan",
			source: "``inline `nested` code``",
			want:   []token.Token{token.Paragraph(token.Codespan("inline `nested` code"))},
		},
		{
			name:   "codespan content is escaped for the compiler",
			source: "`a<b`",
			want:   []token.Token{token.Paragraph(token.Codespan("a&lt;b"))},
		},
		{
			name:   "fenced code then paragraphs",
			source: "```\nCode\nBlock\n```\n\n\nAnother\n\nLine",
			want: []token.Token{
				token.Code("Code\nBlock"),
				token.Space(),
				token.Paragraph(token.Text("Another")),
				token.Space(),
				token.Paragraph(token.Text("Line")),
			},
		},
		{
			name:   "fenced code directly followed by text",
			source: "```\nx\n```\ny",
			want: []token.Token{
				token.Code("x"),
				token.Paragraph(token.Text("y")),
			},
		},
		{
			name:   "heading is literal",
			source: "### heading",
			want:   []token.Token{token.Paragraph(token.Text("### heading"))},
		},
		{
			name:   "list is literal",
			source: "Qwe *aaa*\n1. qwe\n2. qwe",
			want: []token.Token{token.Paragraph(
				token.Text("Qwe "),
				token.Em(token.Text("aaa")),
				token.Text("\n1. qwe\n2. qwe"),
			)},
		},
		{
			name:   "block quote is literal",
			source: "> quoted",
			want:   []token.Token{token.Paragraph(token.Text("> quoted"))},
		},
		{
			name:   "fenced code then blank line then text",
			source: "```\nx\n```\n\ny",
			want: []token.Token{
				token.Code("x"),
				token.Space(),
				token.Paragraph(token.Text("y")),
			},
		},
		{
			name:   "text directly followed by fenced code",
			source: "a\n```\nx\n```",
			want: []token.Token{
				token.Paragraph(token.Text("a")),
				token.Text("\n"),
				token.Code("x"),
			},
		},
		{
			name:   "reference definition before text",
			source: "[r]: https://x.io\n\ntext",
			want: []token.Token{
				token.Paragraph(token.Text("text")),
			},
		},
		{
			name:   "reference definition only",
			source: "[Reference]: https://example.com",
			want:   nil,
		},
		{
			name:   "link",
			source: "[www.google.com](https://www.bbc.co.uk)",
			want: []token.Token{token.Paragraph(token.NewLink(
				"https://www.bbc.co.uk",
				"[www.google.com](https://www.bbc.co.uk)",
				token.Text("www.google.com"),
			))},
		},
		{
			name:   "www autolink gets a scheme",
			source: "www.google.com",
			want: []token.Token{token.Paragraph(token.NewLink(
				"http://www.google.com", "www.google.com", token.Text("www.google.com"),
			))},
		},
		{
			name:   "angle autolink",
			source: "<https://example.com>",
			want: []token.Token{token.Paragraph(token.NewLink(
				"https://example.com", "https://example.com", token.Text("https://example.com"),
			))},
		},
		{
			name:   "mention keeps raw source",
			source: "Hi [@Nick](mention://user/u1) How",
			want: []token.Token{token.Paragraph(
				token.Text("Hi "),
				token.NewLink("mention://user/u1", "[@Nick](mention://user/u1)", token.Text("@Nick")),
				token.Text(" How"),
			)},
		},
		{
			name:   "raw html",
			source: "a<br>b",
			want:   []token.Token{token.Paragraph(token.Text("a"), token.HTML("<br>"), token.Text("b"))},
		},
		{
			name:   "image becomes alt text",
			source: "![a cat](cat.png)",
			want:   []token.Token{token.Paragraph(token.Text("a cat"))},
		},
		{
			name:   "escapes are kept",
			source: `\*not bold\*`,
			want:   []token.Token{token.Paragraph(token.Text(`\*not bold\*`))},
		},
	}

	l := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Lex(tt.source))
		})
	}
}

func TestLex_EmailAutolink(t *testing.T) {
	tokens := New().Lex("asd@asd.com")

	assert.Len(t, tokens, 1)
	children := token.Children(tokens[0])
	if assert.Len(t, children, 1) {
		if link, ok := children[0].(token.Link); ok {
			assert.Equal(t, "mailto:asd@asd.com", link.Href)
		} else {
			assert.Equal(t, token.Text("asd@asd.com"), children[0])
		}
	}
}

func TestLex_WithoutLinkify(t *testing.T) {
	tokens := New(WithLinkify(false)).Lex("www.google.com")
	assert.Equal(t, []token.Token{token.Paragraph(token.Text("www.google.com"))}, tokens)
}
