package markov

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// boundaryID is the reserved intern ID for the boundary marker. Real tokens
// always intern to IDs >= 1.
const boundaryID = 0

// Slot is a single position in a node window: either a token or the boundary
// marker. The zero value is the boundary marker.
type Slot[T comparable] struct {
	Token T
	Valid bool
}

// Value wraps a token as an occupied slot.
func Value[T comparable](token T) Slot[T] {
	return Slot[T]{Token: token, Valid: true}
}

// Boundary returns the boundary marker slot.
func Boundary[T comparable]() Slot[T] {
	return Slot[T]{}
}

// Chain is an order-N Markov chain over tokens of type T.
//
// Tokens are interned to integer IDs and node windows are keyed by their
// space-joined IDs, so T only needs to be comparable. A chain is created
// empty with New, grows through Train and Merge, and is read through the
// Generate functions and the node/link accessors. It is not safe for
// concurrent use; train independent chains per goroutine and fold them
// together with Merge instead.
type Chain[T comparable] struct {
	order  int
	ids    map[T]int
	tokens []T // ID -> token; index 0 is a placeholder for the boundary marker
	links  map[string]map[int]uint32
	keys   []string // node keys in first-seen order, for uniform node selection
}

// New creates an empty chain of the given order. The order is fixed for the
// chain's lifetime; callers are responsible for rejecting orders below 1.
func New[T comparable](order int) *Chain[T] {
	return &Chain[T]{
		order:  order,
		ids:    make(map[T]int),
		tokens: make([]T, 1),
		links:  make(map[string]map[int]uint32),
	}
}

// Order returns the number of tokens per node. This is static from chain to chain.
func (c *Chain[T]) Order() int {
	return c.order
}

// IsEmpty reports whether the chain holds no transitions.
func (c *Chain[T]) IsEmpty() bool {
	return len(c.links) == 0
}

// Len returns the number of distinct nodes in the chain.
func (c *Chain[T]) Len() int {
	return len(c.links)
}

// intern returns the ID for a token, assigning the next free ID on first sight.
func (c *Chain[T]) intern(token T) int {
	if id, ok := c.ids[token]; ok {
		return id
	}
	id := len(c.tokens)
	c.tokens = append(c.tokens, token)
	c.ids[token] = id
	return id
}

// nodeKey renders a window of slot IDs as its canonical map key.
func nodeKey(window []int) string {
	var buf []byte
	for i, id := range window {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	return string(buf)
}

// parseKey is the inverse of nodeKey.
func parseKey(key string) []int {
	parts := strings.Split(key, " ")
	window := make([]int, len(parts))
	for i, part := range parts {
		window[i], _ = strconv.Atoi(part)
	}
	return window
}

// bump adds weight to the window -> next transition, creating the node and
// link entries if they do not exist yet.
func (c *Chain[T]) bump(window []int, next int, weight uint32) {
	key := nodeKey(window)
	link, ok := c.links[key]
	if !ok {
		link = make(map[int]uint32)
		c.links[key] = link
		c.keys = append(c.keys, key)
	}
	link[next] += weight
}

// Train records the transitions observed in one token sequence and returns
// the chain so that calls can be linked together.
//
// The sequence is right-padded with boundary markers up to the chain order,
// then a window of exactly order slots slides across it, starting from an
// all-boundary window. Every position records one transition, and a final
// transition into the boundary marker marks a legal terminal state, so a
// sequence of length L contributes L+1 observations. Training an empty
// sequence is a no-op.
func (c *Chain[T]) Train(seq []T) *Chain[T] {
	if len(seq) == 0 {
		return c
	}

	ids := make([]int, 0, max(len(seq), c.order))
	for _, token := range seq {
		ids = append(ids, c.intern(token))
	}
	for len(ids) < c.order {
		ids = append(ids, boundaryID)
	}

	window := make([]int, c.order)
	c.bump(window, ids[0], 1)

	end := 0
	for end < len(ids)-1 {
		window = append(window[1:], ids[end])
		c.bump(window, ids[end+1], 1)
		end++
	}
	window = append(window[1:], ids[end])
	c.bump(window, boundaryID, 1)
	return c
}

// Merge folds another chain's transitions into this one, summing weights on
// collision. If this chain is empty the other chain's table is adopted
// wholesale (by deep copy, which produces the same weights as the
// field-by-field sum against an empty table). Merging chains of differing
// order is a caller contract violation and panics.
//
// The other chain is never modified. Merge is the designed composition point
// for parallel training: train one chain per goroutine, then fold.
func (c *Chain[T]) Merge(other *Chain[T]) *Chain[T] {
	if c.order != other.order {
		panic(fmt.Sprintf("markov: cannot merge a chain of order %d into a chain of order %d", other.order, c.order))
	}
	if len(c.links) == 0 {
		c.adopt(other)
		return c
	}

	// Intern IDs are assigned per chain, so the other chain's windows have
	// to be remapped through their token values before folding.
	window := make([]int, c.order)
	for _, key := range other.keys {
		for i, id := range parseKey(key) {
			window[i] = c.remap(other, id)
		}
		for next, weight := range other.links[key] {
			c.bump(window, c.remap(other, next), weight)
		}
	}
	return c
}

// remap translates one of other's slot IDs into this chain's ID space.
func (c *Chain[T]) remap(other *Chain[T], id int) int {
	if id == boundaryID {
		return boundaryID
	}
	return c.intern(other.tokens[id])
}

// adopt deep-copies other's entire state into c.
func (c *Chain[T]) adopt(other *Chain[T]) {
	c.ids = maps.Clone(other.ids)
	if c.ids == nil {
		c.ids = make(map[T]int)
	}
	c.tokens = slices.Clone(other.tokens)
	c.links = make(map[string]map[int]uint32, len(other.links))
	for key, link := range other.links {
		c.links[key] = maps.Clone(link)
	}
	c.keys = slices.Clone(other.keys)
}

// Clone returns a deep copy of the chain.
func (c *Chain[T]) Clone() *Chain[T] {
	clone := New[T](c.order)
	clone.adopt(c)
	return clone
}

// slots decodes a window of intern IDs into its read-side representation.
func (c *Chain[T]) slots(window []int) []Slot[T] {
	out := make([]Slot[T], len(window))
	for i, id := range window {
		if id != boundaryID {
			out[i] = Value(c.tokens[id])
		}
	}
	return out
}

// windowOf encodes a node back into intern IDs. It reports false if any slot
// holds a token the chain has never seen.
func (c *Chain[T]) windowOf(node []Slot[T]) ([]int, bool) {
	window := make([]int, len(node))
	for i, slot := range node {
		if !slot.Valid {
			continue
		}
		id, ok := c.ids[slot.Token]
		if !ok {
			return nil, false
		}
		window[i] = id
	}
	return window, true
}

// Nodes returns every node key in the chain, in first-seen order. The
// returned slices are copies; mutating them does not affect the chain.
func (c *Chain[T]) Nodes() [][]Slot[T] {
	nodes := make([][]Slot[T], 0, len(c.keys))
	for _, key := range c.keys {
		nodes = append(nodes, c.slots(parseKey(key)))
	}
	return nodes
}

// Links returns a copy of the link table for a node, mapping each candidate
// next slot to its accumulated weight. A nil map means the node is unknown.
func (c *Chain[T]) Links(node []Slot[T]) map[Slot[T]]uint32 {
	window, ok := c.windowOf(node)
	if !ok {
		return nil
	}
	link, ok := c.links[nodeKey(window)]
	if !ok {
		return nil
	}
	out := make(map[Slot[T]]uint32, len(link))
	for next, weight := range link {
		if next == boundaryID {
			out[Boundary[T]()] = weight
		} else {
			out[Value(c.tokens[next])] = weight
		}
	}
	return out
}

// Weight returns the accumulated weight of a single node -> next transition,
// or 0 if it was never observed.
func (c *Chain[T]) Weight(node []Slot[T], next Slot[T]) uint32 {
	window, ok := c.windowOf(node)
	if !ok {
		return 0
	}
	link, ok := c.links[nodeKey(window)]
	if !ok {
		return 0
	}
	nextID := boundaryID
	if next.Valid {
		nextID, ok = c.ids[next.Token]
		if !ok {
			return 0
		}
	}
	return link[nextID]
}

// Equal reports whether two chains hold the same order and the same weight
// for every (node, next) pair, regardless of the order tokens were interned in.
func (c *Chain[T]) Equal(other *Chain[T]) bool {
	if other == nil || c.order != other.order || len(c.links) != len(other.links) {
		return false
	}
	window := make([]int, c.order)
	for key, link := range c.links {
		ok := true
		for i, id := range parseKey(key) {
			if id == boundaryID {
				window[i] = boundaryID
				continue
			}
			otherID, found := other.ids[c.tokens[id]]
			if !found {
				ok = false
				break
			}
			window[i] = otherID
		}
		if !ok {
			return false
		}
		otherLink, found := other.links[nodeKey(window)]
		if !found || len(otherLink) != len(link) {
			return false
		}
		for next, weight := range link {
			otherNext := boundaryID
			if next != boundaryID {
				id, found := other.ids[c.tokens[next]]
				if !found {
					return false
				}
				otherNext = id
			}
			if otherLink[otherNext] != weight {
				return false
			}
		}
	}
	return true
}
