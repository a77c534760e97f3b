// Package render draws a corpus with Graphviz, labelling every page with its
// rank.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"golang.org/x/xerrors"
)

// FormatFor picks the output format from a file name extension. Unknown or
// missing extensions fall back to DOT source.
func FormatFor(path string) graphviz.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return graphviz.SVG
	case ".png":
		return graphviz.PNG
	case ".jpg", ".jpeg":
		return graphviz.JPG
	}
	return graphviz.XDOT
}

// Render writes c to w in the given format. Nodes are labelled "page\nrank"
// with precision decimals; pages missing from ranks are labelled by name only.
func Render(w io.Writer, c *graph.Corpus, ranks pagerank.Ranks, format graphviz.Format, precision int) error {
	gv := graphviz.New()
	defer gv.Close()
	g, err := gv.Graph()
	if err != nil {
		return xerrors.Errorf("render: %w", err)
	}
	defer g.Close()

	nodes := make(map[string]*cgraph.Node, c.Len())
	for _, page := range c.Pages() {
		n, err := g.CreateNode(page)
		if err != nil {
			return xerrors.Errorf("render node %s: %w", page, err)
		}
		if rank, ok := ranks[page]; ok {
			n.SetLabel(fmt.Sprintf("%s\n%.*f", page, precision, rank))
		} else {
			n.SetLabel(page)
		}
		nodes[page] = n
	}
	for _, from := range c.Pages() {
		for _, to := range c.Links(from) {
			if _, err := g.CreateEdge(from+"->"+to, nodes[from], nodes[to]); err != nil {
				return xerrors.Errorf("render edge %s -> %s: %w", from, to, err)
			}
		}
	}
	if err := gv.Render(g, format, w); err != nil {
		return xerrors.Errorf("render: %w", err)
	}
	return nil
}
