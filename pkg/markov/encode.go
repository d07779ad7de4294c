package markov

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// ExportedChain is the serializable representation of a chain, used by the
// JSON and CBOR codecs. Token IDs are 1-based indexes into Tokens; ID 0 is
// the boundary marker. The token type must itself be serializable by the
// chosen codec.
type ExportedChain[T comparable] struct {
	Order  int            `json:"order"`
	Tokens []T            `json:"tokens"`
	Nodes  []ExportedNode `json:"nodes"`
}

// ExportedNode is one node of an exported chain together with its link table.
type ExportedNode struct {
	Key   []int          `json:"key"`
	Links []ExportedLink `json:"links"`
}

// ExportedLink is a single weighted transition in an exported chain.
type ExportedLink struct {
	Next   int    `json:"next"`
	Weight uint32 `json:"weight"`
}

// Export flattens the chain into its serializable representation. Nodes keep
// their first-seen order and links are sorted by ID, so exporting the same
// chain twice yields identical output.
func (c *Chain[T]) Export() ExportedChain[T] {
	out := ExportedChain[T]{
		Order:  c.order,
		Tokens: slices.Clone(c.tokens[1:]),
		Nodes:  make([]ExportedNode, 0, len(c.keys)),
	}
	for _, key := range c.keys {
		link := c.links[key]
		node := ExportedNode{
			Key:   parseKey(key),
			Links: make([]ExportedLink, 0, len(link)),
		}
		for next, weight := range link {
			node.Links = append(node.Links, ExportedLink{Next: next, Weight: weight})
		}
		sort.Slice(node.Links, func(i, j int) bool {
			return node.Links[i].Next < node.Links[j].Next
		})
		out.Nodes = append(out.Nodes, node)
	}
	return out
}

// FromExported validates an exported representation and rebuilds the chain.
// Malformed data is reported as an error and never partially loaded.
func FromExported[T comparable](exported ExportedChain[T]) (*Chain[T], error) {
	if exported.Order < 1 {
		return nil, fmt.Errorf("markov: invalid chain order %d", exported.Order)
	}
	c := New[T](exported.Order)
	for _, token := range exported.Tokens {
		if _, dup := c.ids[token]; dup {
			return nil, fmt.Errorf("markov: duplicate token %v in exported vocabulary", token)
		}
		c.intern(token)
	}

	maxID := len(exported.Tokens)
	checkID := func(id int) error {
		if id < 0 || id > maxID {
			return fmt.Errorf("markov: reference to unknown token id %d", id)
		}
		return nil
	}
	for _, node := range exported.Nodes {
		if len(node.Key) != exported.Order {
			return nil, fmt.Errorf("markov: node key has %d slots, chain order is %d", len(node.Key), exported.Order)
		}
		for _, id := range node.Key {
			if err := checkID(id); err != nil {
				return nil, err
			}
		}
		if len(node.Links) == 0 {
			return nil, fmt.Errorf("markov: node %v has no links", node.Key)
		}
		for _, link := range node.Links {
			if err := checkID(link.Next); err != nil {
				return nil, err
			}
			if link.Weight == 0 {
				return nil, fmt.Errorf("markov: node %v has a zero-weight link", node.Key)
			}
			c.bump(node.Key, link.Next, link.Weight)
		}
	}
	return c, nil
}

// ExportJSON writes the chain to w as indented JSON.
func (c *Chain[T]) ExportJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c.Export())
}

// ImportJSON reads a chain previously written with ExportJSON.
func ImportJSON[T comparable](r io.Reader) (*Chain[T], error) {
	var exported ExportedChain[T]
	if err := json.NewDecoder(r).Decode(&exported); err != nil {
		return nil, fmt.Errorf("markov: decode json chain: %w", err)
	}
	return FromExported(exported)
}

// ExportCBOR writes the chain to w in CBOR.
func (c *Chain[T]) ExportCBOR(w io.Writer) error {
	return cbor.NewEncoder(w).Encode(c.Export())
}

// ImportCBOR reads a chain previously written with ExportCBOR.
func ImportCBOR[T comparable](r io.Reader) (*Chain[T], error) {
	var exported ExportedChain[T]
	if err := cbor.NewDecoder(r).Decode(&exported); err != nil {
		return nil, fmt.Errorf("markov: decode cbor chain: %w", err)
	}
	return FromExported(exported)
}
