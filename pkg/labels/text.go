package labels

import "unicode/utf8"

const (
	fontCharWidth   = 0.55
	fontSizeMin     = 6.0
	fontSizeDefault = 12.0
)

// MeasureText estimates the pixel size of name rendered at fontSize. It uses
// a fixed average glyph width, which is close enough for sans-serif labels.
func MeasureText(name string, fontSize float64) (width, height float64) {
	if fontSize <= 0 {
		fontSize = fontSizeDefault
	}
	fontSize = max(fontSizeMin, fontSize)
	n := utf8.RuneCountInString(name)
	return float64(n) * fontSize * fontCharWidth, fontSize
}

// Truncate shortens name to at most maxChars runes, marking the cut with "..".
func Truncate(name string, maxChars int) string {
	maxChars = max(3, maxChars)
	if utf8.RuneCountInString(name) <= maxChars {
		return name
	}
	r := []rune(name)
	return string(r[:maxChars-2]) + ".."
}
