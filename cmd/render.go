package cmd

import (
	"fmt"
	"os"

	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/lioia/corpus-pagerank/pkg/render"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var renderCmd = &cobra.Command{
	Use:   "render DIR",
	Short: "Draw the link graph of a directory with its iterated ranks",
	Long: `Draws every page of DIR labelled with its rank computed by iteration.
The output format follows the extension of --output (.svg, .png, .jpg);
anything else produces Graphviz DOT.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "pagerank.svg", "output file")
	renderCmd.Flags().Bool("edges", false, "read an edge-list graph instead of a directory")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	edges, _ := cmd.Flags().GetBool("edges")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := loadCorpus(args[0], edges)
	if err != nil {
		return err
	}
	ranker, err := pagerank.NewRanker(pagerank.Config{
		Options: pagerank.OptionsFrom(cfg),
		Logger:  utils.Logger("ranker"),
	})
	if err != nil {
		return err
	}
	res, err := ranker.Iterate(c)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return xerrors.Errorf("render: %w", err)
	}
	if err := render.Render(f, c, res.Ranks, render.FormatFor(output), cfg.Precision); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return xerrors.Errorf("render: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages, %d sweeps)\n", output, c.Len(), res.Steps)
	return nil
}
