package markov

import "regexp"

var (
	// defaultPattern matches maximal runs of word characters (anything that is
	// not whitespace or sentence punctuation) or maximal runs of punctuation.
	// Every non-whitespace character belongs to exactly one token.
	defaultPattern = regexp.MustCompile(`[^ .!?,\-\n\r\t]+|[.,!?\-"]+`)

	// defaultBreaks are the token spellings that terminate a sentence.
	defaultBreaks = []string{".", "?", "!", `."`, `!"`, `?"`, `,"`}
)

// Tokenizer splits raw text into word and punctuation tokens and knows which
// tokens end a sentence. The zero configuration reproduces the default
// scanner; behavior can be customized with functional options.
type Tokenizer struct {
	pattern   *regexp.Regexp
	separator string
	breaks    map[string]struct{}
}

// TokenizerOption is a function that configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithPattern sets the regex used to scan tokens out of input text.
// Default: `[^ .!?,\-\n\r\t]+|[.,!?\-"]+`
func WithPattern(pattern string) TokenizerOption {
	return func(t *Tokenizer) {
		t.pattern = regexp.MustCompile(pattern)
	}
}

// WithBreakTokens sets the token spellings that terminate a sentence.
// Default: `.` `?` `!` `."` `!"` `?"` `,"`
func WithBreakTokens(tokens ...string) TokenizerOption {
	return func(t *Tokenizer) {
		t.breaks = make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			t.breaks[tok] = struct{}{}
		}
	}
}

// WithSeparator sets the string placed between words when joining generated
// tokens. Default: " "
func WithSeparator(sep string) TokenizerOption {
	return func(t *Tokenizer) {
		t.separator = sep
	}
}

// NewTokenizer creates a tokenizer with default settings, which can be
// overridden by providing one or more TokenizerOption functions.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		pattern:   defaultPattern,
		separator: " ",
		breaks:    make(map[string]struct{}, len(defaultBreaks)),
	}
	for _, tok := range defaultBreaks {
		t.breaks[tok] = struct{}{}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Split scans text left to right into its token sequence. Whitespace
// separates tokens and never appears in them.
func (t *Tokenizer) Split(text string) []string {
	return t.pattern.FindAllString(text, -1)
}

// IsBreak reports whether tok terminates a sentence.
func (t *Tokenizer) IsBreak(tok string) bool {
	_, ok := t.breaks[tok]
	return ok
}

// Units splits text into sentence-sized training units. Tokens accumulate
// until a break token is produced, which closes the unit (break token
// included). Trailing tokens after the last break form a final, possibly
// incomplete, unit.
func (t *Tokenizer) Units(text string) [][]string {
	var units [][]string
	var pending []string
	for _, tok := range t.Split(text) {
		pending = append(pending, tok)
		if t.IsBreak(tok) {
			units = append(units, pending)
			pending = nil
		}
	}
	if len(pending) > 0 {
		units = append(units, pending)
	}
	return units
}

// Separator returns the string to place before next when joining generated
// tokens. Break tokens and the literal comma attach directly to the previous
// token.
func (t *Tokenizer) Separator(next string) string {
	if t.IsBreak(next) || next == "," {
		return ""
	}
	return t.separator
}
