package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Canonicalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Great App", "great app"},
		{"strips protocol", "https://example.com/reviews", "example com reviews"},
		{"strips www prefix", "www.example.com", "example com"},
		{"collapses punctuation runs", "great---app!!!", "great app"},
		{"trims surrounding noise", "  **Great app**  ", "great app"},
		{"keeps digits", "version 2.0 rocks", "version 2 0 rocks"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.input))
		})
	}
}

func TestKey_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.Example.com/Path?x=1",
		"Großartige App — wirklich!",
		"Cafè Réview ***",
		"www foo",
		"",
	}
	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "Key must be idempotent for %q", in)
	}
}

func TestKey_UnicodeLettersPreserved(t *testing.T) {
	assert.Equal(t, "großartige app", Key("Großartige App"))
	assert.Equal(t, "crédit agricole", Key("Crédit Agricole"))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tags", "<b>Great</b> app", "Great app"},
		{"unescapes entities", "Fast &amp; simple", "Fast & simple"},
		{"collapses whitespace", "too   many\n\nspaces", "too many spaces"},
		{"keeps punctuation", "Great app!", "Great app!"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Crédit Agricole", "crédit-agricole"))
	assert.False(t, Equal("Great app", "Great app!extra"))
}
