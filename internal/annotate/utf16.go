package annotate

import "unicode/utf16"

// Len returns the length of s in UTF-16 code units, the unit every
// annotation offset is expressed in.
func Len(s string) uint {
	var n uint
	for _, r := range s {
		n += runeLen(r)
	}
	return n
}

func runeLen(r rune) uint {
	if l := utf16.RuneLen(r); l > 0 {
		return uint(l)
	}
	return 1
}

// ByteOffset converts an offset in UTF-16 code units into a byte index
// into s. Offsets past the end, or inside a surrogate pair, round up to
// the next rune boundary.
func ByteOffset(s string, units uint) int {
	var n uint
	for i, r := range s {
		if n >= units {
			return i
		}
		n += runeLen(r)
	}
	return len(s)
}

// Slice returns the part of s an annotation covers.
func Slice(s string, a Annotation) string {
	return s[ByteOffset(s, a.Start):ByteOffset(s, a.End())]
}
