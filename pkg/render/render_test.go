package render

import (
	"bytes"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/stretchr/testify/require"
)

func TestFormatFor(t *testing.T) {
	require.Equal(t, graphviz.SVG, FormatFor("out.svg"))
	require.Equal(t, graphviz.PNG, FormatFor("OUT.PNG"))
	require.Equal(t, graphviz.JPG, FormatFor("out.jpeg"))
	require.Equal(t, graphviz.XDOT, FormatFor("out.dot"))
	require.Equal(t, graphviz.XDOT, FormatFor("out"))
}

func TestRenderLabelsPages(t *testing.T) {
	c, err := graph.New(map[string][]string{
		"a.html": {"b.html"},
		"b.html": {"a.html", "c.html"},
		"c.html": nil,
	})
	require.NoError(t, err)
	ranks := pagerank.Ranks{"a.html": 0.25, "b.html": 0.5}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c, ranks, graphviz.XDOT, 3))
	out := buf.String()
	require.Contains(t, out, "a.html")
	require.Contains(t, out, "c.html")
	require.Contains(t, out, "0.500")
	require.Contains(t, out, "0.250")
	require.Contains(t, out, "->")
}
