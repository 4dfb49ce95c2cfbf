package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/render"
)

// PreviewCmd renders a message the way a chat client would.
type PreviewCmd struct {
	MessageInput

	Source bool `help:"Also render the source as full markdown, for comparison."`
	Width  int  `help:"Wrap output at this many columns (0: no wrapping)." default:"0"`
}

func (cmd *PreviewCmd) Run(globals *Globals) error {
	text, err := cmd.Resolve()
	if err != nil {
		return err
	}

	cfg, f, err := setup(globals, cmd.override)
	if err != nil {
		return err
	}
	dir, err := newDirectory(cfg)
	if err != nil {
		return err
	}

	res := f.Format(text)

	// JSON mode: the preview is not meaningful for scripts, emit fragments.
	if globals.JSON {
		return printJSON(fragmentsJSON(res))
	}

	term := render.NewTerminal(nil, render.WithDirectory(dir), render.WithWidth(cmd.Width))
	fmt.Fprintln(os.Stdout, term.Render(res))

	if cmd.Source {
		width := cmd.Width
		if width == 0 {
			width = 80
		}
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("── markdown ──"))
		fmt.Fprint(os.Stdout, renderMarkdown(text, width))
	}
	return nil
}

type fragmentJSON struct {
	Text   string   `json:"text"`
	Start  uint     `json:"start"`
	End    uint     `json:"end"`
	Styles []string `json:"styles"`
}

func fragmentsJSON(res annotate.Result) []fragmentJSON {
	frags := render.Fragments(res)
	out := make([]fragmentJSON, 0, len(frags))
	for _, f := range frags {
		styles := make([]string, 0, len(f.Annotations))
		for _, a := range f.Annotations {
			styles = append(styles, a.Kind.String())
		}
		out = append(out, fragmentJSON{Text: f.Text, Start: f.Start, End: f.End, Styles: styles})
	}
	return out
}
