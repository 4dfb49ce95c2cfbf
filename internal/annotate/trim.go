package annotate

import "strings"

// TrimOuterNewlines removes runs of "\n" at both ends of the final text.
// Other whitespace is kept because it may be annotated. Starts are shifted
// by the trimmed prefix; anything left outside the text is clamped or
// dropped.
func TrimOuterNewlines(r Result) Result {
	trimmed := strings.TrimLeft(r.FinalText, "\n")
	prefix := uint(len(r.FinalText) - len(trimmed))
	trimmed = strings.TrimRight(trimmed, "\n")
	total := Len(trimmed)

	out := Result{FinalText: trimmed, Annotations: make([]Annotation, 0, len(r.Annotations))}
	for _, a := range r.Annotations {
		start, end := a.Start, a.End()
		start = clampSub(start, prefix)
		end = clampSub(end, prefix)
		end = min(end, total)
		if start >= end {
			continue
		}
		a.Start = start
		a.Length = end - start
		out.Annotations = append(out.Annotations, a)
	}
	return out
}

func clampSub(v, d uint) uint {
	if v < d {
		return 0
	}
	return v - d
}
