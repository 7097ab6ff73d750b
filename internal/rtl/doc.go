// Package rtl prepares right-to-left text for storage and display.
//
// Normalize applies Arabic contextual shaping (letters become their
// isolated, initial, medial or final presentation forms, lam-alef pairs
// become ligatures) followed by bidirectional reordering of each line into
// visual order. Shaped output contains no logical-form Arabic letters, so
// Normalize is idempotent: text that was already normalised is returned
// unchanged.
package rtl
