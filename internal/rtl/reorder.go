package rtl

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

// Reorder converts each line of s from logical to visual order.
// The paragraph direction of a line follows its first strong character.
func Reorder(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = reorderLine(line)
	}
	return strings.Join(lines, "\n")
}

// reorderLine splits a line at the remaining paragraph separators, since a
// bidi.Paragraph only resolves text up to the first one.
func reorderLine(line string) string {
	var b strings.Builder
	start := 0
	for i, r := range line {
		if p, _ := bidi.LookupRune(r); p.Class() == bidi.B {
			b.WriteString(reorderParagraph(line[start:i]))
			b.WriteRune(r)
			start = i + utf8.RuneLen(r)
		}
	}
	b.WriteString(reorderParagraph(line[start:]))
	return b.String()
}

// reorderParagraph lays out the runs resolved by x/text in display order:
// right-to-left runs are reversed with mirrored brackets, and a
// right-to-left paragraph shows its runs last to first.
func reorderParagraph(s string) string {
	if s == "" {
		return s
	}

	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return s
	}
	order, err := p.Order()
	if err != nil || order.NumRuns() == 0 {
		return s
	}

	runs := make([]string, order.NumRuns())
	for i := range runs {
		run := order.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}
		runs[i] = text
	}

	if rightToLeft(s) {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}
	return strings.Join(runs, "")
}

// rightToLeft reports whether the first strong character of s is
// right-to-left. Text without one is left-to-right.
func rightToLeft(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}
