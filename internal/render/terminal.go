package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lvrach/chatmark/internal/annotate"
)

// Terminal renders compiled messages with ANSI styling.
type Terminal struct {
	dir    Directory
	width  int
	styles styles
}

type styles struct {
	plain     lipgloss.Style
	code      lipgloss.Style
	codeBlock lipgloss.Style
	link      lipgloss.Style
	href      lipgloss.Style
	pear      lipgloss.Style
	mention   lipgloss.Style
	emoji     lipgloss.Style
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithDirectory resolves mentions to current member names.
func WithDirectory(d Directory) TerminalOption {
	return func(t *Terminal) { t.dir = d }
}

// WithWidth wraps output at width columns. Zero disables wrapping.
func WithWidth(width int) TerminalOption {
	return func(t *Terminal) { t.width = width }
}

// NewTerminal returns a Terminal that styles for r. A nil renderer uses
// lipgloss's default renderer on stdout.
func NewTerminal(r *lipgloss.Renderer, opts ...TerminalOption) *Terminal {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := &Terminal{
		dir: MapDirectory(nil),
		styles: styles{
			plain:     r.NewStyle(),
			code:      r.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236")),
			codeBlock: r.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).PaddingLeft(1),
			link:      r.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
			href:      r.NewStyle().Foreground(lipgloss.Color("240")),
			pear:      r.NewStyle().Foreground(lipgloss.Color("42")).Underline(true),
			mention:   r.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			emoji:     r.NewStyle().Bold(true).Padding(0, 1),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render styles every fragment of res. Code blocks are drawn as a block
// with a left rule.
func (t *Terminal) Render(res annotate.Result) string {
	if IsSingleEmoji(res) {
		return t.styles.emoji.Render(res.FinalText)
	}

	var (
		b        strings.Builder
		block    strings.Builder
		inBlock  bool
		blockEnd uint
	)
	flushBlock := func() {
		if inBlock {
			b.WriteString(t.styles.codeBlock.Render(block.String()))
			block.Reset()
			inBlock = false
		}
	}

	frags := Fragments(res)
	for i, f := range frags {
		if cb, ok := f.Find(annotate.CodeBlock); ok {
			if inBlock && cb.End() != blockEnd {
				flushBlock()
			}
			inBlock, blockEnd = true, cb.End()
			block.WriteString(f.Text)
			continue
		}
		flushBlock()

		if m, ok := f.Find(annotate.Mention); ok {
			if f.Start != m.Start {
				continue
			}
			b.WriteString(t.renderMention(res, m, f))
			continue
		}

		b.WriteString(renderLines(t.fragmentStyle(f), f.Text))

		if l, ok := f.Find(annotate.HTTPLink); ok && endsAt(frags, i, l) {
			if label := annotate.Slice(res.FinalText, l); label != l.Content {
				b.WriteString(t.styles.href.Render(" (" + l.Content + ")"))
			}
		}
	}
	flushBlock()

	out := b.String()
	if t.width > 0 {
		out = lipgloss.NewStyle().Width(t.width).Render(out)
	}
	return out
}

// renderMention draws the whole mention once, on its first fragment.
func (t *Terminal) renderMention(res annotate.Result, m annotate.Annotation, f Fragment) string {
	text := annotate.Slice(res.FinalText, m)
	if name, ok := t.dir.Name(m.MemberID); ok {
		text = "@" + name
	}
	return renderLines(applyEmphasis(t.styles.mention, f), text)
}

func (t *Terminal) fragmentStyle(f Fragment) lipgloss.Style {
	var st lipgloss.Style
	switch {
	case f.Has(annotate.Code):
		st = t.styles.code
	case f.Has(annotate.HTTPLink):
		st = t.styles.link
	case f.Has(annotate.PearLink):
		st = t.styles.pear
	default:
		st = t.styles.plain
	}
	return applyEmphasis(st, f)
}

func applyEmphasis(st lipgloss.Style, f Fragment) lipgloss.Style {
	for _, a := range f.Annotations {
		switch a.Kind {
		case annotate.Bold:
			st = st.Bold(true)
		case annotate.Italic:
			st = st.Italic(true)
		case annotate.Strikethrough:
			st = st.Strikethrough(true)
		}
	}
	return st
}

// renderLines styles each line on its own so multi-line fragments are not
// padded into a box.
func renderLines(st lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = st.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// endsAt reports whether fragment i is the last one covered by a.
func endsAt(frags []Fragment, i int, a annotate.Annotation) bool {
	if frags[i].End >= a.End() {
		return true
	}
	return i+1 == len(frags)
}
