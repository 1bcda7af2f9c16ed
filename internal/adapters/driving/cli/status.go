package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
)

// statusSessionLimit caps how many recent sessions are shown.
const statusSessionLimit = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents, recent sessions and sync state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ctx := cmd.Context()

	defs, err := store.DefinitionStore().ListDefinitions(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Definitions: %d\n", len(defs))

	byStatus := make(map[domain.DefinitionStatus]int)
	for _, d := range defs {
		byStatus[d.Status]++
	}
	for _, status := range []domain.DefinitionStatus{
		domain.StatusCanonical, domain.StatusDraft, domain.StatusReview,
		domain.StatusDeprecated, domain.StatusConflicted,
	} {
		if n := byStatus[status]; n > 0 {
			cmd.Printf("  %-12s %d\n", status, n)
		}
	}

	if engine, root, err := newSyncEngine(""); err == nil {
		stats, err := engine.Stats(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("\nTracked files under %s:\n", root)
		total := 0
		for _, status := range []domain.SyncStatus{
			domain.SyncSynced, domain.SyncPending, domain.SyncModified,
			domain.SyncNew, domain.SyncDeleted, domain.SyncError,
		} {
			if n := stats[status]; n > 0 {
				cmd.Printf("  %-12s %d\n", status, n)
				total += n
			}
		}
		if total == 0 {
			cmd.Println("  none")
		}
	}

	if task, err := store.SchedulerStore().GetTask(ctx, domain.TaskIDFileSync); err == nil && task != nil {
		cmd.Printf("\nScheduled %s: ", task.Name)
		switch {
		case !task.Enabled:
			cmd.Println("disabled")
		case task.LastRun.IsZero():
			cmd.Printf("never run, next at %s\n", task.NextRun.Format(time.RFC3339))
		default:
			cmd.Printf("last run %s, next at %s\n",
				task.LastRun.Format(time.RFC3339), task.NextRun.Format(time.RFC3339))
		}
		if task.LastError != "" {
			cmd.Printf("  last error: %s\n", task.LastError)
		}
	}

	sessions, err := ledger.Sessions(ctx, statusSessionLimit)
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		cmd.Printf("\nRecent sessions:\n")
		for _, s := range sessions {
			state := "open"
			if s.Closed() {
				state = "closed"
			}
			cmd.Printf("  %s  %s  %-11s %s: %d processed (%d created, %d updated, %d failed)\n",
				s.StartedAt.Format("2006-01-02 15:04"), state, s.SourceKind,
				s.SourceName, s.Processed, s.Created, s.Updated, s.Failed)
		}
	}

	return nil
}
