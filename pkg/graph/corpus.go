package graph

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

var (
	// ErrEmptyCorpus is returned when a corpus would contain no pages.
	ErrEmptyCorpus = xerrors.New("corpus has no pages")

	// ErrUnknownPage is returned when a page is not part of the corpus.
	ErrUnknownPage = xerrors.New("unknown page")

	// ErrSelfLink is reported by Validate for a page linking to itself.
	ErrSelfLink = xerrors.New("page links to itself")
)

// Corpus is an immutable set of pages and the pages each of them links to.
// Every link target is itself a page of the corpus and no page links to itself.
type Corpus struct {
	pages []string
	links map[string][]string
}

// New builds a corpus from a page -> linked pages mapping. Self-links and links
// to pages that are not keys of the mapping are discarded; duplicates collapse.
func New(links map[string][]string) (*Corpus, error) {
	if len(links) == 0 {
		return nil, ErrEmptyCorpus
	}
	c := &Corpus{
		pages: make([]string, 0, len(links)),
		links: make(map[string][]string, len(links)),
	}
	for page := range links {
		c.pages = append(c.pages, page)
	}
	sort.Strings(c.pages)

	for _, page := range c.pages {
		seen := make(map[string]struct{}, len(links[page]))
		out := make([]string, 0, len(links[page]))
		for _, target := range links[page] {
			if target == page {
				continue
			}
			if _, known := links[target]; !known {
				continue
			}
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			out = append(out, target)
		}
		sort.Strings(out)
		c.links[page] = out
	}
	return c, nil
}

// Validate checks links against the strict input contract without filtering
// anything: at least one page, no self-links, no links outside the key set.
// All violations are reported together.
func Validate(links map[string][]string) error {
	if len(links) == 0 {
		return ErrEmptyCorpus
	}
	pages := make([]string, 0, len(links))
	for page := range links {
		pages = append(pages, page)
	}
	sort.Strings(pages)

	var err error
	for _, page := range pages {
		for _, target := range links[page] {
			if target == page {
				err = multierror.Append(err, xerrors.Errorf("%q: %w", page, ErrSelfLink))
				continue
			}
			if _, known := links[target]; !known {
				err = multierror.Append(err, xerrors.Errorf("%q links to %q: %w", page, target, ErrUnknownPage))
			}
		}
	}
	return err
}

// Len returns the number of pages.
func (c *Corpus) Len() int { return len(c.pages) }

// Pages returns the pages in sorted order. The slice must not be modified.
func (c *Corpus) Pages() []string { return c.pages }

// Has reports whether page belongs to the corpus.
func (c *Corpus) Has(page string) bool {
	_, ok := c.links[page]
	return ok
}

// Links returns the sorted out-links of page, or nil for unknown pages.
// The slice must not be modified.
func (c *Corpus) Links(page string) []string { return c.links[page] }

// OutDegree returns the number of out-links of page.
func (c *Corpus) OutDegree(page string) int { return len(c.links[page]) }

// Dangling reports whether page has no out-links.
func (c *Corpus) Dangling(page string) bool { return len(c.links[page]) == 0 }

// Map returns a copy of the corpus as a page -> links mapping.
func (c *Corpus) Map() map[string][]string {
	m := make(map[string][]string, len(c.links))
	for page, links := range c.links {
		m[page] = append([]string(nil), links...)
	}
	return m
}

// InboundIndex maps every page to the sorted pages linking to it.
type InboundIndex map[string][]string

// Inbound builds the reverse adjacency of c. Every page of c is a key, with an
// empty slice when nothing links to it.
func Inbound(c *Corpus) InboundIndex {
	index := make(InboundIndex, len(c.pages))
	for _, page := range c.pages {
		index[page] = nil
	}
	// c.pages is sorted so every inbound list comes out sorted as well
	for _, from := range c.pages {
		for _, to := range c.links[from] {
			index[to] = append(index[to], from)
		}
	}
	return index
}
