package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/config/file"
	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/fswatch"
	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/services"
	"github.com/termbase-labs/termbase-cli/internal/logger"
)

// watchDebounce spaces filesystem-triggered syncs apart. The scheduled
// scan covers anything the debounce drops.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Watch the tree and keep it in sync until interrupted",
	Long: `Runs the background sync worker: a recurring scheduled scan plus a
filesystem watcher that triggers a sync shortly after files change.
Blocks until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	var root string
	if len(args) > 0 {
		root = args[0]
	}

	engine, root, err := newSyncEngine(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	schedCfg := domain.DefaultSchedulerConfig()
	if interval := cfg.GetDuration(file.KeySyncInterval); interval > 0 {
		schedCfg.TaskConfigs[domain.TaskIDFileSync] = domain.TaskConfig{
			Enabled:  true,
			Interval: interval,
		}
	}

	scheduler := services.NewScheduler(schedCfg, store.SchedulerStore(), engine)
	schedDone := make(chan error, 1)
	go func() {
		schedDone <- scheduler.Start(ctx)
	}()

	watcher, err := fswatch.NewWatcher(root, watchDebounce)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	cmd.Printf("Watching %s (interrupt to stop)\n", root)

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-watcher.Trigger():
			report, err := engine.SyncAll(ctx)
			if errors.Is(err, domain.ErrSyncInProgress) {
				// The scheduled scan has the tree; it will pick the
				// change up.
				continue
			}
			if err != nil {
				logger.Warn("watch sync failed: %v", err)
				continue
			}
			if report.Synced > 0 || report.Failed > 0 {
				cmd.Printf("Synced %d changes (%d failed)\n", report.Synced, report.Failed)
			}
		case err := <-watcher.Errors():
			logger.Warn("watcher: %v", err)
		}
	}

	if err := watcher.Stop(); err != nil {
		logger.Warn("stopping watcher: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		logger.Warn("stopping scheduler: %v", err)
	}
	<-schedDone

	cmd.Println("Stopped.")
	return nil
}
