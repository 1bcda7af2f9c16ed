package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagSyncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync [root]",
	Short: "Synchronise the watched tree with the store",
	Long: `Scans the watched tree for new, modified and deleted files and
applies every change: changed files are re-ingested, vanished files are
marked deleted in the file ledger (the rows are kept).

With --dry-run the scan classification is printed without applying it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().BoolVar(&flagSyncDryRun, "dry-run", false,
		"scan and report changes without applying them")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
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
	ctx := cmd.Context()

	if flagSyncDryRun {
		scan, err := engine.ScanForChanges(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		cmd.Printf("Scanned %d files under %s: %d new, %d modified, %d deleted, %d in sync\n",
			scan.TotalScanned, root,
			scan.NewFiles, scan.ModifiedFiles, scan.DeletedFiles, scan.SyncedFiles)
		for _, change := range scan.Changes {
			cmd.Printf("  %-8s %s\n", change.Status, change.Path)
		}
		for _, e := range scan.Errors {
			cmd.Printf("  error: %s\n", e)
		}
		return nil
	}

	report, err := engine.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Synced %d changes under %s (%d failed)\n", report.Synced, root, report.Failed)
	if report.Ingested.Attempted > 0 {
		cmd.Printf("Re-ingested %d: %d created, %d updated, %d failed\n",
			report.Ingested.Attempted, report.Ingested.Created,
			report.Ingested.Updated, report.Ingested.Failed)
	}
	for _, e := range report.Errors {
		cmd.Printf("  error: %s\n", e)
	}
	return nil
}
