package pagerank

import (
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"golang.org/x/xerrors"
)

// Iterate computes ranks by power iteration, stopping once no page changes by
// tolerance or more between two sweeps. It gives up with ErrNotConverged after
// DefaultMaxSweeps sweeps.
func Iterate(c *graph.Corpus, damping, tolerance float64) (Ranks, error) {
	ranks, _, err := IterateWithLimit(c, damping, tolerance, DefaultMaxSweeps)
	return ranks, err
}

// IterateWithLimit is Iterate with an explicit sweep cap. It also returns the
// number of sweeps performed.
//
//	R_(i+1)(p) = (1 - d)/N + d * sum_(q in B_p) R_i(q) / N_q
//
// where B_p are the pages linking to p and N_q is the out-degree of q, or N
// when q has no links (q then feeds every page, itself included).
func IterateWithLimit(c *graph.Corpus, damping, tolerance float64, maxSweeps int) (Ranks, int, error) {
	if c == nil {
		return nil, 0, ErrNilCorpus
	}
	if err := checkDamping(damping); err != nil {
		return nil, 0, err
	}
	if err := checkTolerance(tolerance); err != nil {
		return nil, 0, err
	}
	if maxSweeps < 1 {
		return nil, 0, xerrors.Errorf("%d: %w", maxSweeps, ErrInvalidMaxSweeps)
	}

	initial := 1.0 / float64(c.Len())
	ranks := make(Ranks, c.Len())
	for _, p := range c.Pages() {
		ranks[p] = initial
	}

	inbound := graph.Inbound(c)
	for sweep := 1; sweep <= maxSweeps; sweep++ {
		next := Sweep(c, inbound, ranks, damping)
		converged := MaxDelta(ranks, next) < tolerance
		ranks = next
		if converged {
			return ranks, sweep, nil
		}
	}
	return nil, maxSweeps, xerrors.Errorf("after %d sweeps: %w", maxSweeps, ErrNotConverged)
}

// Sweep applies the update equation once to every page. All pages are
// recomputed from ranks, which is left untouched; the result is a new vector.
func Sweep(c *graph.Corpus, inbound graph.InboundIndex, ranks Ranks, damping float64) Ranks {
	pages := c.Pages()
	n := float64(len(pages))

	// Pages without links spread their rank over every page
	var dangling float64
	for _, p := range pages {
		if c.Dangling(p) {
			dangling += ranks[p]
		}
	}
	base := (1-damping)/n + damping*dangling/n

	next := make(Ranks, len(pages))
	for _, p := range pages {
		var sum float64
		for _, q := range inbound[p] {
			sum += ranks[q] / float64(c.OutDegree(q))
		}
		next[p] = base + damping*sum
	}
	return next
}
