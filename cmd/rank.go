package cmd

import (
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/lioia/corpus-pagerank/pkg/report"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var rankCmd = &cobra.Command{
	Use:   "rank DIR",
	Short: "Rank the HTML pages of a directory",
	Long: `Crawls the *.html files of DIR and prints the ranks estimated by sampling
and by iteration, sorted by page.

With --edges, DIR is instead an edge-list file or http(s) URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("method", "both", "estimator to run: sample, iterate or both")
	rankCmd.Flags().Bool("edges", false, "read an edge-list graph instead of a directory")
	rankCmd.Flags().String("edges-out", "", "also write the crawled graph as an edge list to this file")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	edges, _ := cmd.Flags().GetBool("edges")
	edgesOut, _ := cmd.Flags().GetString("edges-out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := loadCorpus(args[0], edges)
	if err != nil {
		return err
	}
	if edgesOut != "" {
		if err := graph.Write(edgesOut, c); err != nil {
			return xerrors.Errorf("write edge list: %w", err)
		}
	}
	sections, err := rankCorpus(c, cfg, method)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), cfg.Format, cfg.Precision, sections...)
}

// rankCorpus runs the selected estimators, sampling first as the report
// lists them in that order. When both run, their L1 distance is logged.
func rankCorpus(c *graph.Corpus, cfg utils.Config, method string) ([]report.Section, error) {
	switch method {
	case "both", string(pagerank.MethodSample), string(pagerank.MethodIterate):
	default:
		return nil, xerrors.Errorf("unknown method %q", method)
	}
	logger := utils.Logger("ranker")
	ranker, err := pagerank.NewRanker(pagerank.Config{
		Options: pagerank.OptionsFrom(cfg),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	var sections []report.Section
	if method != string(pagerank.MethodIterate) {
		var res *pagerank.Result
		if cfg.Runs > 1 {
			res, _, err = ranker.SampleRuns(c, cfg.Runs)
		} else {
			res, err = ranker.Sample(c)
		}
		if err != nil {
			return nil, err
		}
		sections = append(sections, report.Section{Title: report.SampleTitle(ranker.Options().Samples), Ranks: res.Ranks})
	}
	if method != string(pagerank.MethodSample) {
		res, err := ranker.Iterate(c)
		if err != nil {
			return nil, err
		}
		sections = append(sections, report.Section{Title: report.IterateTitle(), Ranks: res.Ranks})
	}
	if len(sections) == 2 {
		sampled, iterated := sections[0].Ranks, sections[1].Ranks
		logger.WithFields(logrus.Fields{
			"distance":    pagerank.Distance(sampled, iterated),
			"top_sample":  sampled.Top(),
			"top_iterate": iterated.Top(),
		}).Info("compared estimates")
	}
	return sections, nil
}
