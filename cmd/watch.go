package cmd

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lioia/corpus-pagerank/pkg/crawl"
	"github.com/lioia/corpus-pagerank/pkg/report"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Rerank a directory every time one of its pages changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("method", "both", "estimator to run: sample, iterate or both")
	watchCmd.Flags().Duration("debounce", 200*time.Millisecond, "quiet period before reranking")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	method, _ := cmd.Flags().GetString("method")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return xerrors.Errorf("watch: %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	rerank := func() {
		c, err := crawl.Dir(dir)
		if err == nil {
			var sections []report.Section
			if sections, err = rankCorpus(c, cfg, method); err == nil {
				err = report.Write(out, cfg.Format, cfg.Precision, sections...)
			}
		}
		if err != nil {
			utils.WarnLog("watch", "could not rank %s: %v", dir, err)
		}
	}
	rerank()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, crawl.Ext) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			rerank()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			utils.WarnLog("watch", "%v", err)
		}
	}
}
