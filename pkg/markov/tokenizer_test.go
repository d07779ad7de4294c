package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tok := NewTokenizer()

	got := tok.Split("Hello, world! How are you?")
	want := []string{"Hello", ",", "world", "!", "How", "are", "you", "?"}
	assert.Equal(t, want, got)
}

func TestSplitPunctuationRuns(t *testing.T) {
	tok := NewTokenizer()

	// Quotes are legal inside word tokens, so `"Wow` scans as one word and
	// the closing `."` as one punctuation run.
	got := tok.Split(`He said, "Wow."`)
	assert.Equal(t, []string{"He", "said", ",", `"Wow`, `."`}, got)

	got = tok.Split("wait... what?!")
	assert.Equal(t, []string{"wait", "...", "what", "?!"}, got)
}

func TestSplitWhitespaceSeparators(t *testing.T) {
	tok := NewTokenizer()
	got := tok.Split("one\ttwo\nthree\r\nfour  five")
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, got)
}

func TestUnits(t *testing.T) {
	tok := NewTokenizer()

	units := tok.Units("Hello, world! How are you?")
	require.Len(t, units, 2)
	assert.Equal(t, []string{"Hello", ",", "world", "!"}, units[0])
	assert.Equal(t, []string{"How", "are", "you", "?"}, units[1])
}

func TestUnitsTrailingPartial(t *testing.T) {
	tok := NewTokenizer()

	units := tok.Units("Done. and then some")
	require.Len(t, units, 2)
	assert.Equal(t, []string{"Done", "."}, units[0])
	assert.Equal(t, []string{"and", "then", "some"}, units[1])

	assert.Empty(t, tok.Units("   \n\t "))
}

func TestIsBreak(t *testing.T) {
	tok := NewTokenizer()
	for _, brk := range []string{".", "?", "!", `."`, `!"`, `?"`, `,"`} {
		assert.True(t, tok.IsBreak(brk), "expected %q to break a sentence", brk)
	}
	for _, word := range []string{",", "-", "word", "..", ""} {
		assert.False(t, tok.IsBreak(word), "expected %q not to break a sentence", word)
	}
}

func TestSeparator(t *testing.T) {
	tok := NewTokenizer()
	assert.Equal(t, " ", tok.Separator("word"))
	assert.Equal(t, "", tok.Separator(","))
	assert.Equal(t, "", tok.Separator("."))
	assert.Equal(t, "", tok.Separator(`?"`))
}

func TestTokenizerOptions(t *testing.T) {
	tok := NewTokenizer(
		WithPattern(`\S+`),
		WithBreakTokens("STOP"),
		WithSeparator("_"),
	)

	assert.Equal(t, []string{"a.b", "c!"}, tok.Split("a.b c!"))
	assert.True(t, tok.IsBreak("STOP"))
	assert.False(t, tok.IsBreak("."))
	assert.Equal(t, "_", tok.Separator("word"))
}
