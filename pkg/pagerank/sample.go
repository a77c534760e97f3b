package pagerank

import (
	"math/rand"

	"github.com/lioia/corpus-pagerank/pkg/graph"
)

// Sample estimates ranks by simulating a random surfer for the given number of
// steps, starting from a page chosen uniformly with rng. The rank of a page is
// the fraction of steps spent on it.
//
// The result is an estimate: it only approaches the stationary distribution as
// samples grows. The same rng seed on the same corpus yields the same ranks.
func Sample(c *graph.Corpus, damping float64, samples int, rng *rand.Rand) (Ranks, error) {
	if c == nil {
		return nil, ErrNilCorpus
	}
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if err := checkSamples(samples); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	pages := c.Pages()
	visits := make(map[string]int, len(pages))
	page := pages[rng.Intn(len(pages))]
	for i := 0; i < samples; i++ {
		visits[page]++
		page = choose(pages, transition(c, page, damping), rng)
	}

	ranks := make(Ranks, len(pages))
	for _, p := range pages {
		ranks[p] = float64(visits[p]) / float64(samples)
	}
	return ranks, nil
}

// choose draws one page from dist, walking pages in their fixed order so that
// a seeded rng always picks the same page.
func choose(pages []string, dist Distribution, rng *rand.Rand) string {
	var total float64
	for _, p := range pages {
		total += dist[p]
	}
	r := rng.Float64() * total

	var last string
	for _, p := range pages {
		w := dist[p]
		if w <= 0 {
			continue
		}
		if r < w {
			return p
		}
		r -= w
		last = p
	}
	// rounding left r just above the final cumulative weight
	return last
}
