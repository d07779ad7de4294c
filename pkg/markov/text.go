package markov

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextChain is the string specialization of Chain. It pairs a string chain
// with a Tokenizer and adds sentence-oriented training and generation.
type TextChain struct {
	*Chain[string]
	tok *Tokenizer
}

// NewText creates an empty text chain of the given order. Tokenizer options
// customize how raw text is split and joined.
func NewText(order int, opts ...TokenizerOption) *TextChain {
	return &TextChain{
		Chain: New[string](order),
		tok:   NewTokenizer(opts...),
	}
}

// NewTextFrom wraps an existing string chain, for example one loaded from a
// chain file, with text helpers.
func NewTextFrom(c *Chain[string], opts ...TokenizerOption) *TextChain {
	return &TextChain{
		Chain: c,
		tok:   NewTokenizer(opts...),
	}
}

// Tokenizer returns the tokenizer this text chain was built with.
func (tc *TextChain) Tokenizer() *Tokenizer {
	return tc.tok
}

// TrainText tokenizes raw text, splits it into sentence units and trains each
// unit independently. It returns the text chain so that calls can be linked
// together.
func (tc *TextChain) TrainText(text string) *TextChain {
	for _, unit := range tc.tok.Units(text) {
		tc.Chain.Train(unit)
	}
	return tc
}

// TrainReader streams raw text out of r line by line and trains on it.
// Sentence units may span lines; only a read failure is an error.
func (tc *TextChain) TrainReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var pending []string
	for scanner.Scan() {
		for _, tok := range tc.tok.Split(scanner.Text()) {
			pending = append(pending, tok)
			if tc.tok.IsBreak(tok) {
				tc.Chain.Train(pending)
				pending = pending[:0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("markov: reading training text: %w", err)
	}
	if len(pending) > 0 {
		tc.Chain.Train(pending)
	}
	return nil
}

// GenerateSentence walks the chain from an all-boundary window, so sentences
// always begin at a true sequence start, and stops when a break token or the
// boundary marker is sampled. Tokens are joined with single spaces, except
// that break tokens and commas attach directly to the previous token. An
// empty chain generates an empty string.
func (tc *TextChain) GenerateSentence(opts ...GenerateOption) string {
	options := newGenerateOptions(opts)
	if tc.Chain.IsEmpty() {
		return ""
	}
	window := make([]int, tc.Chain.order)
	return tc.walk(window, nil, options)
}

// GenerateSentenceFrom primes the window with the tokens of seed and
// continues the walk from there; the seed tokens lead the output. A seed
// token the chain has never seen is a recoverable error.
func (tc *TextChain) GenerateSentenceFrom(seed string, opts ...GenerateOption) (string, error) {
	options := newGenerateOptions(opts)
	window := make([]int, tc.Chain.order)
	var lead []string
	for _, tok := range tc.tok.Split(seed) {
		id, ok := tc.Chain.ids[tok]
		if !ok {
			return "", fmt.Errorf("markov: seed token %q not found in chain vocabulary", tok)
		}
		lead = append(lead, tok)
		window = append(window[1:], id)
	}
	return tc.walk(window, lead, options), nil
}

// walk runs the sentence generation loop from the given window, with result
// already holding any seed tokens.
func (tc *TextChain) walk(window []int, result []string, options *generateOptions) string {
	for {
		next, ok := tc.Chain.step(window, options)
		if !ok {
			break
		}
		word := tc.Chain.tokens[next]
		result = append(result, word)
		window = append(window[1:], next)
		if tc.tok.IsBreak(word) {
			break
		}
		if options.maxTokens > 0 && len(result) >= options.maxTokens {
			break
		}
	}
	return tc.join(result)
}

// join assembles generated tokens into a sentence with natural punctuation
// spacing.
func (tc *TextChain) join(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(tc.tok.Separator(tok))
		}
		b.WriteString(tok)
	}
	return b.String()
}

// GenerateParagraph generates n independent sentences and joins them with
// single spaces. A count of 0 or less generates an empty string regardless of
// chain contents.
func (tc *TextChain) GenerateParagraph(n int, opts ...GenerateOption) string {
	if n <= 0 {
		return ""
	}
	sentences := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sentences = append(sentences, tc.GenerateSentence(opts...))
	}
	return strings.Join(sentences, " ")
}
