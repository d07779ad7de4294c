package markov

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"
)

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	maxTokens   int
	temperature float64
	topK        int
}

// GenerateOption is a function that configures generation parameters. It is
// used as a variadic argument to Generate, GenerateSentence and friends.
type GenerateOption func(*generateOptions)

// WithMaxTokens bounds the number of tokens a single generation may produce.
// A value of 0 or less means unbounded.
func WithMaxTokens(n int) GenerateOption {
	return func(o *generateOptions) { o.maxTokens = n }
}

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less results in deterministic selection (always choosing the
// most frequent token).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the selection pool to the k heaviest candidates at each
// step. A value of 0 disables top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{temperature: 1.0}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Generate produces one token sequence by weighted random walk.
//
// The walk starts at a node chosen uniformly among all nodes in the chain. If
// the chosen node contains a boundary slot (possible when the shortest trained
// sequence was shorter than the order), its real tokens are the entire output.
// Otherwise the node's tokens seed the output and each step samples the next
// token in proportion to its accumulated weight, with the boundary marker as a
// valid "stop" candidate. An empty chain generates an empty sequence.
func (c *Chain[T]) Generate(opts ...GenerateOption) []T {
	options := newGenerateOptions(opts)
	if len(c.links) == 0 {
		return nil
	}

	window := parseKey(c.keys[rand.IntN(len(c.keys))])
	if slices.Contains(window, boundaryID) {
		var out []T
		for _, id := range window {
			if id != boundaryID {
				out = append(out, c.tokens[id])
			}
		}
		return out
	}

	out := make([]T, 0, len(window))
	for _, id := range window {
		out = append(out, c.tokens[id])
	}
	for {
		next, ok := c.step(window, options)
		if !ok {
			break
		}
		out = append(out, c.tokens[next])
		window = append(window[1:], next)
		if options.maxTokens > 0 && len(out) >= options.maxTokens {
			break
		}
	}
	return out
}

// GenerateLimit is Generate bounded to at most max tokens, where max <= 0
// means unbounded.
func (c *Chain[T]) GenerateLimit(max int) []T {
	return c.Generate(WithMaxTokens(max))
}

// step samples the next token out of the current window's link table. It
// reports false when the walk ends, either because the boundary marker was
// sampled or because the window has no outgoing links.
func (c *Chain[T]) step(window []int, options *generateOptions) (int, bool) {
	link, ok := c.links[nodeKey(window)]
	if !ok || len(link) == 0 {
		return 0, false
	}
	choices := make([]candidate, 0, len(link))
	var total uint64
	for next, weight := range link {
		choices = append(choices, candidate{id: next, weight: weight})
		total += uint64(weight)
	}
	next := chooseNext(choices, total, options)
	if next == boundaryID {
		return 0, false
	}
	return next, true
}

// candidate is one entry of a link table flattened for sampling.
type candidate struct {
	id     int
	weight uint32
}

// chooseNext abstracts the candidate selection logic from the generation
// loops. Selection probability is weight/total at temperature 1.0; other
// temperatures reshape the distribution over log-weights.
func chooseNext(choices []candidate, total uint64, options *generateOptions) int {
	// Top-K filtering.
	if options.topK > 0 && options.topK < len(choices) {
		sort.Slice(choices, func(i, j int) bool {
			return choices[i].weight > choices[j].weight
		})
		choices = choices[:options.topK]
		total = 0
		for _, choice := range choices {
			total += uint64(choice.weight)
		}
	}

	switch {
	case options.temperature <= 0: // Deterministic
		best := choices[0]
		for _, choice := range choices[1:] {
			if choice.weight > best.weight {
				best = choice
			}
		}
		return best.id
	case options.temperature == 1.0: // Standard weighted random
		pick := rand.Int64N(int64(total))
		for _, choice := range choices {
			pick -= int64(choice.weight)
			if pick < 0 {
				return choice.id
			}
		}
		return choices[len(choices)-1].id
	default: // Temperature-based sampling
		logWeights := make([]float64, len(choices))
		maxLW := math.Inf(-1)
		for i, choice := range choices {
			lw := math.Log(float64(choice.weight)) / options.temperature
			logWeights[i] = lw
			if lw > maxLW {
				maxLW = lw
			}
		}
		var totalWeight float64
		weights := make([]float64, len(choices))
		for i, lw := range logWeights {
			w := math.Exp(lw - maxLW)
			weights[i] = w
			totalWeight += w
		}
		pick := rand.Float64() * totalWeight
		for i, choice := range choices {
			pick -= weights[i]
			if pick < 0 {
				return choice.id
			}
		}
		return choices[len(choices)-1].id
	}
}
