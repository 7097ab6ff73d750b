package rtl

// Arabic block bounds.
const (
	arabicFirst = 0x0600
	arabicLast  = 0x06FF
)

// ContainsArabic reports whether s has any character in the Arabic block.
func ContainsArabic(s string) bool {
	for _, r := range s {
		if r >= arabicFirst && r <= arabicLast {
			return true
		}
	}
	return false
}

// NeedsNormalization reports whether s holds Arabic letters still in
// logical (unshaped) form.
func NeedsNormalization(s string) bool {
	for _, r := range s {
		if r < arabicFirst || r > arabicLast {
			continue
		}
		if _, ok := letters[r]; ok {
			return true
		}
	}
	return false
}

// Normalize shapes and visually reorders text containing Arabic letters.
// Other text is returned unchanged.
func Normalize(s string) string {
	if !NeedsNormalization(s) {
		return s
	}
	return Reorder(Shape(s))
}

// Normalizer exposes Normalize behind a value for injection.
type Normalizer struct{}

// Normalize implements text normalisation for display scripts.
func (Normalizer) Normalize(s string) string {
	return Normalize(s)
}
