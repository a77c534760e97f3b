package cmd

import (
	"fmt"
	"os"

	"github.com/lioia/corpus-pagerank/pkg/crawl"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

var rootCmd = &cobra.Command{
	Use:   "pagerank",
	Short: "Rank a corpus of HTML pages with PageRank",
	Long: `pagerank estimates the importance of every page of a corpus twice: by
sampling a long random-surfer walk and by power iteration.`,
	SilenceUsage: true,
}

// configErr remembers a config file that was asked for but could not be read.
var configErr error

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .pagerank.yaml)")
	pf.Float64("damping", 0.85, "probability of following a link")
	pf.Int("samples", 10000, "random walk length of the sampler")
	pf.Float64("tolerance", 0.001, "convergence threshold of the iteration")
	pf.Int("max-sweeps", 10000, "give up iterating after this many sweeps")
	pf.Int64("seed", 1, "seed of the sampler")
	pf.Int("runs", 1, "independent sampler runs to average")
	pf.Int("precision", 4, "decimals printed per rank")
	pf.String("format", "text", "output format: text, json or toml")
	pf.String("log-level", "warn", "log level")

	for key, flag := range map[string]string{
		"damping":    "damping",
		"samples":    "samples",
		"tolerance":  "tolerance",
		"max_sweeps": "max-sweeps",
		"seed":       "seed",
		"runs":       "runs",
		"precision":  "precision",
		"format":     "format",
		"log_level":  "log-level",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".pagerank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PAGERANK")
	viper.AutomaticEnv()

	// A missing default config file is fine; a missing explicit one is not.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = xerrors.Errorf("read config %s: %w", cfgFile, err)
	}
}

// loadConfig resolves the configuration and applies its log level.
func loadConfig() (utils.Config, error) {
	if configErr != nil {
		return utils.Config{}, configErr
	}
	cfg, err := utils.Load(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	return cfg, utils.SetLogLevel(cfg.LogLevel)
}

// loadCorpus crawls a directory of HTML pages, or loads an edge-list file or
// URL when edges is set.
func loadCorpus(source string, edges bool) (*graph.Corpus, error) {
	if edges {
		return graph.LoadResource(source)
	}
	return crawl.Dir(source)
}
