package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termbase-labs/termbase-cli/internal/adapters/driven/tables/csvfile"
	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a directory, markdown note or CSV file",
	Long: `Ingests documents into the terminology base.

A directory is walked for markdown notes; a .md file is ingested on its
own; a .csv file is read as a one-sheet table with cell-level source
attribution. Every run is recorded as an ingest session.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ctx := cmd.Context()
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var result domain.BatchResult
	switch {
	case info.IsDir():
		result, err = ingestor.IngestDir(ctx, domain.SourceMarkdown, path)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		result, err = ingestCSVFile(ctx, path)
	default:
		result, err = ingestMarkdownFile(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printBatchResult(cmd, result)
	return nil
}

// ingestMarkdownFile runs a single-file ingest in its own session.
func ingestMarkdownFile(ctx context.Context, path string) (domain.BatchResult, error) {
	session, err := ledger.OpenSession(ctx, domain.SourceMarkdown, path)
	if err != nil {
		return domain.BatchResult{}, err
	}

	result, err := ingestor.IngestFile(ctx, session, path)

	if cerr := ledger.CloseSession(ctx, session); cerr != nil {
		logger.Warn("closing session %s: %v", session.ID, cerr)
	}
	return result, err
}

// ingestCSVFile extracts tables from a CSV file and ingests the rows.
func ingestCSVFile(ctx context.Context, path string) (domain.BatchResult, error) {
	tables, err := csvfile.NewExtractor().Extract(ctx, path)
	if err != nil {
		return domain.BatchResult{}, err
	}

	session, err := ledger.OpenSession(ctx, domain.SourceSpreadsheet, path)
	if err != nil {
		return domain.BatchResult{}, err
	}

	result, err := ingestor.IngestTables(ctx, session, tables)

	if cerr := ledger.CloseSession(ctx, session); cerr != nil {
		logger.Warn("closing session %s: %v", session.ID, cerr)
	}
	return result, err
}

func printBatchResult(cmd *cobra.Command, result domain.BatchResult) {
	cmd.Printf("Attempted %d: %d created, %d updated, %d failed\n",
		result.Attempted, result.Created, result.Updated, result.Failed)
	for _, e := range result.Errors {
		cmd.Printf("  error: %s\n", e)
	}
}
