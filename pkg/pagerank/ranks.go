package pagerank

import (
	"math"
	"sort"
)

// Ranks associates every page of a corpus with its rank. Ranks sum to 1.
type Ranks map[string]float64

// Sum returns the total rank mass.
func (r Ranks) Sum() float64 {
	var total float64
	for _, p := range r.Pages() {
		total += r[p]
	}
	return total
}

// Pages returns the ranked pages in sorted order.
func (r Ranks) Pages() []string {
	pages := make([]string, 0, len(r))
	for p := range r {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}

// Top returns the page with the highest rank, ties broken by page order.
func (r Ranks) Top() string {
	var top string
	best := math.Inf(-1)
	for _, p := range r.Pages() {
		if r[p] > best {
			best = r[p]
			top = p
		}
	}
	return top
}

// Distance computes the L1 distance between two rank vectors over the pages
// of a. Pages missing from b count as zero.
func Distance(a, b Ranks) float64 {
	distance := 0.0
	for p, v := range a {
		distance += math.Abs(v - b[p])
	}
	return distance
}

// MaxDelta returns the largest absolute difference between a and b over the
// pages of a.
func MaxDelta(a, b Ranks) float64 {
	delta := 0.0
	for p, v := range a {
		if d := math.Abs(v - b[p]); d > delta {
			delta = d
		}
	}
	return delta
}
