package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func writePages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"1.html": `<a href="2.html">2</a>`,
		"2.html": `<a href="1.html">1</a> <a href="3.html">3</a>`,
		"3.html": `<a href="2.html">2</a>`,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestRankCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"rank", writePages(t), "--samples", "2000", "--method", "both", "--edges-out", ""})
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	require.Contains(t, text, "PageRank Results from Sampling (n = 2000)\n")
	require.Contains(t, text, "PageRank Results from Iteration\n")
	require.Contains(t, text, "  2.html: ")
}

func TestRankCommandWritesEdgeList(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.txt")
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"rank", writePages(t), "--method", "iterate", "--edges-out", out})
	require.NoError(t, rootCmd.Execute())

	c, err := graph.LoadResource(out)
	require.NoError(t, err)
	require.Equal(t, []string{"1.html", "2.html", "3.html"}, c.Pages())
	require.Equal(t, []string{"1.html", "3.html"}, c.Links("2.html"))
}

func TestRankCorpusMethods(t *testing.T) {
	c, err := graph.New(map[string][]string{"a": {"b"}, "b": {"a"}})
	require.NoError(t, err)
	cfg, err := utils.Load(viper.New())
	require.NoError(t, err)
	cfg.Samples = 500

	sections, err := rankCorpus(c, cfg, "iterate")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.InDelta(t, 0.5, sections[0].Ranks["a"], 1e-9)

	cfg.Runs = 3
	sections, err = rankCorpus(c, cfg, "both")
	require.NoError(t, err)
	require.Len(t, sections, 2)

	_, err = rankCorpus(c, cfg, "matrix")
	require.Error(t, err)
}
