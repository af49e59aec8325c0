// internal/classifier/normalize_test.go
package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Normalizer Tests
// ==========================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and collapses whitespace",
			input:    "  Chicken   Recipe\t\nKibble ",
			expected: "chicken recipe kibble",
		},
		{
			name:     "strips punctuation except hyphen and apostrophe",
			input:    "Grain-Free! Brewer's Rice (dried), 100%",
			expected: "grain-free brewer's rice dried 100",
		},
		{
			name:     "stripped punctuation still separates words",
			input:    "Chicken(dehydrated),Beef Meal:32%",
			expected: "chicken dehydrated beef meal 32",
		},
		{
			name:     "folds typographic dashes and quotes",
			input:    "freeze–dried ‘raw’ brewer’s",
			expected: "freeze-dried 'raw' brewer's",
		},
		{
			name:     "folds accents to ascii",
			input:    "Pâté Entrée",
			expected: "pate entree",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "   \t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestCombineFields(t *testing.T) {
	combined := CombineFields("Chicken Dinner", "", "  ", "keep FROZEN")
	assert.Equal(t, "chicken dinner | keep frozen", combined)

	// A phrase keyword must not match across the field boundary.
	assert.Equal(t, MatchNone, Match(CombineFields("fresh chicken", "fat"), "chicken fat"))
}

// ==========================
// Match Primitive Tests
// ==========================

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keyword  string
		expected MatchKind
	}{
		{
			name:     "single word at boundary",
			text:     "crunchy kibble for adult dogs",
			keyword:  "kibble",
			expected: MatchWord,
		},
		{
			name:     "single word inside another word does not match",
			text:     "unfrozen broth",
			keyword:  "frozen",
			expected: MatchNone,
		},
		{
			name:     "word exposed by a hyphen boundary",
			text:     "non-extruded recipe",
			keyword:  "extruded",
			expected: MatchWord,
		},
		{
			name:     "multi token phrase as substring",
			text:     "our oven baked biscuits",
			keyword:  "oven baked",
			expected: MatchPhrase,
		},
		{
			name:     "hyphenated keyword as substring",
			text:     "freeze-dried raw coating",
			keyword:  "freeze-dried",
			expected: MatchPhrase,
		},
		{
			name:     "phrase with words out of order does not match",
			text:     "baked in a stone oven",
			keyword:  "oven baked",
			expected: MatchNone,
		},
		{
			name:     "empty text",
			text:     "",
			keyword:  "kibble",
			expected: MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.text, tt.keyword))
		})
	}
}

func TestMatchAtReportsPosition(t *testing.T) {
	kind, pos := MatchAt("not frozen raw food", "frozen")
	assert.Equal(t, MatchWord, kind)
	assert.Equal(t, 4, pos)

	kind, pos = MatchAt("plain text", "frozen")
	assert.Equal(t, MatchNone, kind)
	assert.Equal(t, -1, pos)
}

func TestMatchPartialWords(t *testing.T) {
	assert.True(t, MatchPartialWords("baked slowly in a stone oven", "oven baked"))
	assert.False(t, MatchPartialWords("baked slowly in a stone kiln", "oven baked"))
	assert.False(t, MatchPartialWords("", "oven baked"))
}
