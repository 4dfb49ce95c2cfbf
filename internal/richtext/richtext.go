// Package richtext is the end-to-end chat formatter: it normalises input,
// tokenizes it and compiles the tokens into display text and annotations.
package richtext

import (
	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/emoji"
	"github.com/lvrach/chatmark/internal/lexer"
	"github.com/lvrach/chatmark/internal/pearlink"
	"github.com/lvrach/chatmark/internal/sanitize"
	"github.com/lvrach/chatmark/internal/token"
)

// Formatter compiles chat messages. It is safe for concurrent use.
type Formatter struct {
	lexer    *lexer.Lexer
	compiler *annotate.Compiler
	sanitize bool
}

type settings struct {
	table      *emoji.Table
	pearScheme string
	sanitize   bool
	linkify    bool
}

// Option configures a Formatter.
type Option func(*settings)

// WithEmojiTable sets the emoji table. The default is the GitHub set.
func WithEmojiTable(t *emoji.Table) Option {
	return func(s *settings) { s.table = t }
}

// WithPearScheme sets the scheme of peer links to annotate.
func WithPearScheme(scheme string) Option {
	return func(s *settings) { s.pearScheme = scheme }
}

// WithSanitize toggles input normalisation. It is on by default.
func WithSanitize(on bool) Option {
	return func(s *settings) { s.sanitize = on }
}

// WithLinkify toggles autolinking of bare URLs.
func WithLinkify(on bool) Option {
	return func(s *settings) { s.linkify = on }
}

// New returns a Formatter.
func New(opts ...Option) *Formatter {
	s := settings{sanitize: true, linkify: true}
	for _, opt := range opts {
		opt(&s)
	}
	if s.table == nil {
		s.table = emoji.NewTable()
	}

	return &Formatter{
		lexer: lexer.New(lexer.WithLinkify(s.linkify)),
		compiler: annotate.NewCompiler(
			annotate.WithScanner(emoji.NewScanner(s.table)),
			annotate.WithScanner(pearlink.NewScanner(s.pearScheme)),
		),
		sanitize: s.sanitize,
	}
}

// Tokens returns the token tree text compiles from.
func (f *Formatter) Tokens(text string) []token.Token {
	if f.sanitize {
		text = sanitize.Input(text)
	}
	return f.lexer.Lex(text)
}

// Format compiles text. Input that yields no tokens is returned unchanged.
func (f *Formatter) Format(text string) annotate.Result {
	tokens := f.Tokens(text)
	if len(tokens) == 0 {
		return f.compiler.CompileSource(text, nil)
	}
	return annotate.TrimOuterNewlines(f.compiler.Compile(tokens))
}

// FromConfig builds a Formatter from the saved configuration and the
// workspace's custom emoji.
func FromConfig(cfg config.Config, pack config.EmojiPack) *Formatter {
	return New(
		WithEmojiTable(emoji.NewTable(emoji.WithCustom(pack.Custom...))),
		WithPearScheme(cfg.PearScheme),
		WithSanitize(!cfg.RawInput),
		WithLinkify(!cfg.DisableLinkify),
	)
}
