package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

var sections = []Section{
	{Title: SampleTitle(10000), Ranks: pagerank.Ranks{"2.html": 0.48651, "1.html": 0.25674, "3.html": 0.25676}},
	{Title: IterateTitle(), Ranks: pagerank.Ranks{"1.html": 0.2567, "2.html": 0.4865, "3.html": 0.2567}},
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, DefaultPrecision, sections...))
	require.Equal(t, `PageRank Results from Sampling (n = 10000)
  1.html: 0.2567
  2.html: 0.4865
  3.html: 0.2568
PageRank Results from Iteration
  1.html: 0.2567
  2.html: 0.4865
  3.html: 0.2567
`, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, 2, sections[0]))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Sections, 1)
	require.Equal(t, sections[0].Title, doc.Sections[0].Title)
	require.Equal(t, pagerank.Ranks{"1.html": 0.26, "2.html": 0.49, "3.html": 0.26}, doc.Sections[0].Ranks)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTOML, 3, sections...))

	var doc document
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Sections, 2)
	require.Equal(t, IterateTitle(), doc.Sections[1].Title)
	require.InDelta(t, 0.4865, doc.Sections[1].Ranks["2.html"], 0.001)
}

func TestWriteUnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, "xml", 4))
}
