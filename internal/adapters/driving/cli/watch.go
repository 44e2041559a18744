package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/logger"
	"github.com/cnt-labs/cnteval-cli/internal/parser"
)

// watchSettleDelay is how long a file must stay quiet before it is
// processed, so half-written documents are not picked up.
const watchSettleDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and index new submission documents",
	Long: `Watches a directory for parsed submission JSON files and indexes
each one as it appears. Writes are debounced so documents still being
copied in are not processed early. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured, set an embedding provider with 'cnteval config'")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for submission documents...\n", dir)
	return watchLoop(cmd.Context(), cmd, watcher)
}

// watchLoop processes watcher events until the context is cancelled.
// Each changed file gets a settle timer that is reset on every write;
// processing runs when the timer fires.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}

			path := event.Name
			mu.Lock()
			if timer, ok := pending[path]; ok {
				timer.Reset(watchSettleDelay)
			} else {
				pending[path] = time.AfterFunc(watchSettleDelay, func() {
					mu.Lock()
					delete(pending, path)
					mu.Unlock()
					processWatchedFile(ctx, cmd, path)
				})
			}
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

// processWatchedFile indexes one settled file. Failures are reported
// but do not stop the watch.
func processWatchedFile(ctx context.Context, cmd *cobra.Command, path string) {
	doc, err := parser.LoadFile(path)
	if err != nil {
		cmd.PrintErrf("Skipping %s: %v\n", path, err)
		return
	}

	report, err := ingestService.Process(ctx, doc)
	if err != nil {
		cmd.PrintErrf("Processing %s failed: %v\n", path, err)
		return
	}

	cmd.Printf("Indexed %s: %d chunks (%d embedded, %d failed)\n",
		report.TechID, report.ChunkCount, report.EmbeddedCount, report.FailedCount)
}
