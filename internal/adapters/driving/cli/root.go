// Package cli wires the cobra command tree to the core services.
// Commands open the stores lazily so that help and version never touch
// the filesystem.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/config/file"
	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/storage/sqlite"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driving"
	"github.com/termbase-labs/termbase-cli/internal/core/services"
	"github.com/termbase-labs/termbase-cli/internal/logger"
)

// version is stamped by the build; "dev" for local builds.
var version = "dev"

// Services wired by initServices.
var (
	cfg      *file.ConfigStore
	store    *sqlite.Store
	ledger   *services.Ledger
	ingestor driving.Ingestor
)

var (
	flagVerbose   bool
	flagDataDir   string
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "termbase",
	Short: "Local terminology base with source attribution",
	Long: `termbase ingests markdown notes and tabular data into a local
SQLite store, extracts typed definition records from loosely formatted
notes, and keeps a watched directory tree in sync with the store.

Every persisted fact carries full source attribution down to the file,
row and cell it came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"data directory (default ~/.termbase/data)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"config directory (default ~/.termbase)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// initServices opens the stores and wires the core services. Safe to
// call more than once.
func initServices() error {
	if store != nil {
		return nil
	}

	var err error
	cfg, err = file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err = sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	ledger = services.NewLedger(store.SessionStore(), store.RecordStore())
	ingestor = services.NewIngestService(ledger, store.DefinitionStore())

	return nil
}

// closeServices releases the store connection.
func closeServices() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		store = nil
	}
}

// newSyncEngine builds a sync engine for the given root. An empty root
// falls back to the configured vault root.
func newSyncEngine(root string) (driving.SyncEngine, string, error) {
	if root == "" {
		root = cfg.GetString(file.KeyVaultRoot)
	}
	if root == "" {
		return nil, "", fmt.Errorf("no vault root: pass a path or set %s in config", file.KeyVaultRoot)
	}

	patterns := cfg.GetStringSlice(file.KeyVaultGlobs)
	engine := services.NewSyncService(root, patterns, store.FileSyncStore(), ledger, ingestor)
	return engine, root, nil
}
