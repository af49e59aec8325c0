// Package classifier implements the keyword-driven attribute
// classifiers and the pipeline that runs them over product text. All
// classification is pure: no I/O, no shared mutable state, same input
// always yields the same result.
package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldSeparator joins normalized fields in CombineFields. It survives
// normalization-free so a phrase keyword can never match across two
// unrelated fields.
const FieldSeparator = " | "

// stripMarks removes diacritics: decompose, drop combining marks,
// recompose. "Paté" folds to "Pate".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctFolder maps typographic dashes and quotes onto their ASCII
// equivalents before stripping, so "freeze–dried" and "brewer’s" keep
// their hyphen and apostrophe.
var punctFolder = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‛", "'", // reversed single quote
)

// Normalize lower-cases text, folds accents and typographic punctuation
// to ASCII, replaces everything except word characters, hyphen and
// apostrophe with spaces, and collapses whitespace runs to single
// spaces. Pure; empty in, empty out.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = punctFolder.Replace(text)
	if folded, _, err := transform.String(stripMarks, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case isWordRune(r) || r == '-' || r == '\'':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		default:
			// Stripped characters separate words the way whitespace
			// does, so "chicken(dehydrated)" keeps its word boundary.
			if b.Len() > 0 {
				pendingSpace = true
			}
		}
	}
	return b.String()
}

// isWordRune reports whether r counts as a word character for boundary
// purposes. Hyphen and apostrophe are kept by Normalize but still act
// as boundaries, so "non-extruded" exposes "extruded" to word matching.
func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_'
}

// CombineFields normalizes each field, drops the empty ones and joins
// the rest with FieldSeparator.
func CombineFields(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, FieldSeparator)
}
