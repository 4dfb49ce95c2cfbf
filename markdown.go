package main

import (
	"github.com/charmbracelet/glamour"
)

// Cached glamour renderer, avoids re-creating on every call.
// WithAutoStyle() performs OS I/O to detect dark/light theme; caching
// eliminates this from the hot path in interactive TUIs.
var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
)

// renderMarkdown renders the raw message source as full markdown with
// glamour, for comparison with the chat rendering. If rendering fails, the
// raw input text is returned as a fallback.
func renderMarkdown(s string, width int) string {
	if cachedRenderer == nil || cachedRendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return s
		}
		cachedRenderer = r
		cachedRendererWidth = width
	}

	rendered, err := cachedRenderer.Render(s)
	if err != nil {
		return s
	}

	return rendered
}
