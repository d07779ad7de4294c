package markov

// ChainStats holds aggregated statistics for a single chain.
type ChainStats struct {
	Nodes       int    // The number of distinct node windows.
	Links       int    // The number of unique node -> next transitions.
	TotalWeight uint64 // The sum of all transition weights; the total number of observations.
	Starters    int    // The number of transitions out of the all-boundary node.
	VocabSize   int    // The number of distinct tokens seen during training.
}

// Stats returns a snapshot of the chain's aggregate statistics.
func (c *Chain[T]) Stats() ChainStats {
	stats := ChainStats{
		Nodes:     len(c.links),
		VocabSize: len(c.ids),
	}
	for _, link := range c.links {
		stats.Links += len(link)
		for _, weight := range link {
			stats.TotalWeight += uint64(weight)
		}
	}
	stats.Starters = len(c.links[nodeKey(make([]int, c.order))])
	return stats
}
