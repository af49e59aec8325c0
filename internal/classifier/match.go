// internal/classifier/match.go
package classifier

import "strings"

// MatchKind grades how a keyword occurred in text.
type MatchKind int

const (
	MatchNone MatchKind = iota
	// MatchWord is a word-boundary hit for a keyword made of word
	// characters only.
	MatchWord
	// MatchPhrase is a literal substring hit for a keyword containing
	// spaces, hyphens or apostrophes.
	MatchPhrase
	// MatchPartial means every word of a multi-word keyword occurs
	// somewhere in the text, in any order. Only classifiers that opt in
	// see this grade.
	MatchPartial
)

// Match reports how keyword occurs in text. Both arguments must
// already be normalized.
func Match(text, keyword string) MatchKind {
	kind, _ := MatchAt(text, keyword)
	return kind
}

// MatchAt additionally returns the byte offset of the first occurrence
// so the processing classifier can run its negation lookback. The
// offset is -1 when kind is MatchNone or MatchPartial.
func MatchAt(text, keyword string) (MatchKind, int) {
	if text == "" || keyword == "" {
		return MatchNone, -1
	}

	if isSingleWord(keyword) {
		if pos := indexWord(text, keyword); pos >= 0 {
			return MatchWord, pos
		}
		return MatchNone, -1
	}

	if pos := strings.Index(text, keyword); pos >= 0 {
		return MatchPhrase, pos
	}
	return MatchNone, -1
}

// MatchPartialWords reports whether every word of keyword occurs in
// text at a word boundary, in any order. Single-word keywords fall
// back to a plain word match.
func MatchPartialWords(text, keyword string) bool {
	if text == "" || keyword == "" {
		return false
	}
	for _, w := range strings.FieldsFunc(keyword, func(r rune) bool { return !isWordRune(r) }) {
		if indexWord(text, w) < 0 {
			return false
		}
	}
	return true
}

func isSingleWord(keyword string) bool {
	for _, r := range keyword {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

// indexWord finds word at a word boundary in text and returns its byte
// offset, or -1. Hyphens and apostrophes count as boundaries, so
// "un-cooked" exposes "cooked" and "brewer's" exposes "brewer".
func indexWord(text, word string) int {
	from := 0
	for {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		pos := from + i
		end := pos + len(word)
		startOK := pos == 0 || !isWordByte(text[pos-1])
		endOK := end == len(text) || !isWordByte(text[end])
		if startOK && endOK {
			return pos
		}
		from = pos + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
