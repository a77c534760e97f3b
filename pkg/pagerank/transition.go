package pagerank

import (
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"golang.org/x/xerrors"
)

// Distribution holds the probability of moving to each page of a corpus in
// one step of the random surfer.
type Distribution map[string]float64

// Transition returns the next-page distribution of a surfer standing on page.
//
// With probability damping the surfer follows one of the page's links chosen
// uniformly; otherwise it jumps to any page of the corpus. A page without
// links sends the surfer to every page with probability 1/N.
func Transition(c *graph.Corpus, page string, damping float64) (Distribution, error) {
	if c == nil {
		return nil, ErrNilCorpus
	}
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if !c.Has(page) {
		return nil, xerrors.Errorf("%q: %w", page, graph.ErrUnknownPage)
	}
	return transition(c, page, damping), nil
}

func transition(c *graph.Corpus, page string, damping float64) Distribution {
	pages := c.Pages()
	n := float64(len(pages))
	links := c.Links(page)
	dist := make(Distribution, len(pages))

	if len(links) == 0 {
		for _, p := range pages {
			dist[p] = 1 / n
		}
		return dist
	}

	jump := (1 - damping) / n
	for _, p := range pages {
		dist[p] = jump
	}
	follow := damping / float64(len(links))
	for _, p := range links {
		dist[p] += follow
	}
	return dist
}
