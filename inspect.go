package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/history"
	"github.com/lvrach/chatmark/internal/render"
	"github.com/lvrach/chatmark/internal/richtext"
)

// InspectCmd opens an editor with a live preview of the compiled message.
type InspectCmd struct {
	Message string `arg:"" optional:"" help:"Initial message text."`
	Entry   string `help:"Start from a saved history entry (ID or ID prefix)." short:"e"`
}

func (cmd *InspectCmd) Run(globals *Globals) error {
	initial := cmd.Message
	if cmd.Entry != "" {
		e, err := lookupEntry(cmd.Entry)
		if err != nil {
			return err
		}
		initial = e.Source
	}

	cfg, f, err := setup(globals)
	if err != nil {
		return err
	}

	// JSON mode: compile once (TUI not meaningful for scripts).
	if globals.JSON {
		return printJSON(f.Format(initial))
	}

	dir, err := newDirectory(cfg)
	if err != nil {
		return err
	}

	m := newInspectModel(f, dir, initial)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("inspect TUI: %w", err)
	}

	fm := finalModel.(inspectModel)
	if fm.saved > 0 {
		fmt.Fprintf(os.Stdout, "Saved %d result(s) to history.\n", fm.saved)
	}
	return nil
}

const (
	inspectSepWidth = 3  // " │ " separator between panes
	minSplitWidth   = 60 // minimum terminal width for horizontal split
)

// inspectModel is the Bubble Tea model for the message inspector.
type inspectModel struct {
	formatter     *richtext.Formatter
	dir           render.Directory
	term          *render.Terminal
	editor        textarea.Model
	preview       viewport.Model
	source        string
	result        annotate.Result
	width, height int
	focusPreview  bool
	saved         int
	message       string // transient status message
}

func newInspectModel(f *richtext.Formatter, dir render.Directory, initial string) inspectModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message… **bold**, _italic_, `code`, :emoji:"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(initial)
	ta.Focus()

	vp := viewport.New(80, 10)
	vp.KeyMap.Left.SetEnabled(false)
	vp.KeyMap.Right.SetEnabled(false)
	// Keep "d"/"u"/"f"/"b" for typing; the preview only scrolls with ctrl keys.
	vp.KeyMap.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	vp.KeyMap.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))

	m := inspectModel{
		formatter: f,
		dir:       dir,
		term:      render.NewTerminal(nil, render.WithDirectory(dir)),
		editor:    ta,
		preview:   vp,
	}
	m.recompile()
	return m
}

func (m inspectModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// 1. Global keys.
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.focusPreview = !m.focusPreview
			if m.focusPreview {
				m.editor.Blur()
				return m, nil
			}
			return m, m.editor.Focus()

		case "ctrl+s":
			return m.doSave()
		}

		// 2. Route to focused pane.
		if m.focusPreview {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != m.source {
			m.message = ""
			m.recompile()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.syncPreview()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// doSave appends the current result to history.
func (m inspectModel) doSave() (tea.Model, tea.Cmd) {
	if strings.TrimSpace(m.source) == "" {
		m.message = "Nothing to save."
		return m, nil
	}
	entry, err := history.Append(m.source, m.result)
	if err != nil {
		m.message = fmt.Sprintf("Save failed: %s", err)
		return m, nil
	}
	m.saved++
	m.message = fmt.Sprintf("Saved %s", entry.ID)
	return m, nil
}

// recompile formats the editor contents and refreshes the preview.
func (m *inspectModel) recompile() {
	m.source = m.editor.Value()
	m.result = m.formatter.Format(m.source)
	m.syncPreview()
}

// contentRows returns the number of rows available for the panes.
func (m inspectModel) contentRows() int {
	overhead := 2 // title + help
	if m.message != "" {
		overhead++
	}
	return max(m.height-overhead, 2)
}

func (m inspectModel) split() bool {
	return m.width >= minSplitWidth
}

// paneWidths returns the editor and preview widths.
func (m inspectModel) paneWidths() (int, int) {
	if !m.split() {
		return max(m.width, 1), max(m.width, 1)
	}
	left := max((m.width-inspectSepWidth)/2, 1)
	return left, max(m.width-inspectSepWidth-left, 1)
}

// updateLayout resizes the editor and preview to the window.
func (m *inspectModel) updateLayout() {
	leftW, rightW := m.paneWidths()
	rows := m.contentRows()

	editorRows, previewRows := rows, rows
	if !m.split() {
		editorRows = max(rows/2, 1)
		previewRows = max(rows-editorRows-1, 1)
	}

	m.editor.SetWidth(leftW)
	m.editor.SetHeight(editorRows)
	m.preview.Width = rightW
	m.preview.Height = previewRows
	m.term = render.NewTerminal(nil, render.WithDirectory(m.dir), render.WithWidth(rightW))
}

// syncPreview renders the current result into the preview pane.
func (m *inspectModel) syncPreview() {
	var b strings.Builder
	b.WriteString(m.term.Render(m.result))
	b.WriteString("\n\n")
	b.WriteString(inspectDimStyle.Render(strings.Repeat("─", max(m.preview.Width, 10))))
	b.WriteString("\n")
	if len(m.result.Annotations) == 0 {
		b.WriteString(inspectDimStyle.Render("no annotations"))
	}
	for _, a := range m.result.Annotations {
		b.WriteString(inspectDimStyle.Render(fmt.Sprintf("%s  %q", a, annotate.Slice(m.result.FinalText, a))))
		b.WriteString("\n")
	}
	m.preview.SetContent(b.String())
}

// --- View styles ---

var (
	inspectTitleStyle = lipgloss.NewStyle().Bold(true)
	inspectDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	inspectHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	inspectMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (m inspectModel) View() string {
	var b strings.Builder

	// Title.
	b.WriteString(inspectTitleStyle.Render(fmt.Sprintf("chatmark inspect · %d annotation(s) · %d UTF-16 units",
		len(m.result.Annotations), annotate.Len(m.result.FinalText))))
	b.WriteString("\n")

	if m.split() {
		rows := m.contentRows()
		sepColor := lipgloss.Color("240")
		if m.focusPreview {
			sepColor = lipgloss.Color("212")
		}
		sep := lipgloss.NewStyle().Foreground(sepColor).Render(
			strings.TrimSuffix(strings.Repeat(" │ \n", rows), "\n"))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.editor.View(), sep, m.preview.View()))
	} else {
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		b.WriteString(inspectDimStyle.Render(strings.Repeat("─", max(m.width, 1))))
		b.WriteString("\n")
		b.WriteString(m.preview.View())
	}
	b.WriteString("\n")

	// Transient status message.
	if m.message != "" {
		b.WriteString(inspectMsgStyle.Render(m.message))
		b.WriteString("\n")
	}

	// Help bar.
	b.WriteString(inspectHelpStyle.Render(m.helpText()))

	return b.String()
}

func (m inspectModel) helpText() string {
	if m.focusPreview {
		return "↑↓: scroll   tab: editor   ctrl+s: save   esc: quit"
	}
	return "tab: preview   ctrl+s: save   esc: quit"
}
