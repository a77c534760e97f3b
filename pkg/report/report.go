// Package report prints rank vectors sorted by page.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/xerrors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTOML = "toml"

	// DefaultPrecision is the number of decimals printed per rank.
	DefaultPrecision = 4
)

// Section is one titled rank vector.
type Section struct {
	Title string         `json:"title" toml:"title"`
	Ranks pagerank.Ranks `json:"ranks" toml:"ranks"`
}

// Write renders sections to w. Text output is one header per section followed
// by "  page: rank" lines in page order; json and toml encode the sections as
// a document with ranks rounded to precision decimals.
func Write(w io.Writer, format string, precision int, sections ...Section) error {
	switch format {
	case "", FormatText:
		return writeText(w, precision, sections)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document{Sections: rounded(sections, precision)})
	case FormatTOML:
		return toml.NewEncoder(w).Encode(document{Sections: rounded(sections, precision)})
	}
	return xerrors.Errorf("unknown report format %q", format)
}

type document struct {
	Sections []Section `json:"sections" toml:"sections"`
}

func writeText(w io.Writer, precision int, sections []Section) error {
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
		for _, page := range s.Ranks.Pages() {
			if _, err := fmt.Fprintf(w, "  %s: %.*f\n", page, precision, s.Ranks[page]); err != nil {
				return err
			}
		}
	}
	return nil
}

func rounded(sections []Section, precision int) []Section {
	scale := math.Pow(10, float64(precision))
	out := make([]Section, len(sections))
	for i, s := range sections {
		ranks := make(pagerank.Ranks, len(s.Ranks))
		for page, v := range s.Ranks {
			ranks[page] = math.Round(v*scale) / scale
		}
		out[i] = Section{Title: s.Title, Ranks: ranks}
	}
	return out
}

// SampleTitle and IterateTitle are the headers used for each estimator.
func SampleTitle(samples int) string {
	return fmt.Sprintf("PageRank Results from Sampling (n = %d)", samples)
}

func IterateTitle() string {
	return "PageRank Results from Iteration"
}
