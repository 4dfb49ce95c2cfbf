// Package render turns compiled messages back into styled output.
package render

import (
	"slices"

	"github.com/lvrach/chatmark/internal/annotate"
)

// Fragment is a maximal run of display text covered by the same set of
// annotations. Start and End are UTF-16 offsets into the display text.
type Fragment struct {
	Text        string
	Start, End  uint
	Annotations []annotate.Annotation
}

// Has reports whether an annotation of kind covers the fragment.
func (f Fragment) Has(kind annotate.Kind) bool {
	_, ok := f.Find(kind)
	return ok
}

// Find returns the first annotation of kind covering the fragment.
func (f Fragment) Find(kind annotate.Kind) (annotate.Annotation, bool) {
	for _, a := range f.Annotations {
		if a.Kind == kind {
			return a, true
		}
	}
	return annotate.Annotation{}, false
}

// Fragments splits the display text of r at every annotation boundary.
// Annotations inside a fragment keep their emission order.
func Fragments(r annotate.Result) []Fragment {
	total := annotate.Len(r.FinalText)
	cuts := []uint{0, total}
	for _, a := range r.Annotations {
		cuts = append(cuts, min(a.Start, total), min(a.End(), total))
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var out []Fragment
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		text := r.FinalText[annotate.ByteOffset(r.FinalText, start):annotate.ByteOffset(r.FinalText, end)]
		if text == "" {
			continue
		}

		var active []annotate.Annotation
		for _, a := range r.Annotations {
			if a.Length > 0 && a.Start <= start && a.End() >= end {
				active = append(active, a)
			}
		}

		if n := len(out); n > 0 && out[n-1].End == start && slices.Equal(out[n-1].Annotations, active) {
			out[n-1].Text += text
			out[n-1].End = end
			continue
		}
		out = append(out, Fragment{Text: text, Start: start, End: end, Annotations: active})
	}
	return out
}

// IsSingleEmoji reports whether the message is exactly one emoji. Chat
// clients show such messages enlarged.
func IsSingleEmoji(r annotate.Result) bool {
	if len(r.Annotations) != 1 {
		return false
	}
	a := r.Annotations[0]
	return a.Kind == annotate.Emoji && a.Start == 0 && a.Length > 0 && a.Length == annotate.Len(r.FinalText)
}
