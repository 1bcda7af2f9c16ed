package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/termbase-labs/termbase-cli/internal/core/domain"
	"github.com/termbase-labs/termbase-cli/internal/core/ports/driven"
)

var _ driven.TableExtractor = (*Extractor)(nil)

// Extractor reads a CSV file as a single one-sheet table. The first
// row is the header row; data rows are numbered from 2 so row numbers
// match what a spreadsheet application displays.
type Extractor struct{}

// NewExtractor creates a CSV table extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Kind returns the source kind the extractor produces.
func (e *Extractor) Kind() domain.SourceKind {
	return domain.SourceSpreadsheet
}

// Extract reads all tables from the given file path. A CSV file always
// yields exactly one table.
func (e *Extractor) Extract(ctx context.Context, locator string) ([]domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv file: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrInvalidInput
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := domain.Table{
		SourceKind: domain.SourceSpreadsheet,
		SourceFile: locator,
		SheetName:  sheetName(locator),
		Headers:    headers,
	}

	for i, raw := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Header row is row 1, so data rows start at 2.
		number := i + 2
		row := domain.TableRow{
			Number:   number,
			Cells:    make(map[string]any, len(headers)),
			CellRefs: make(map[string]string, len(headers)),
		}
		for col, header := range headers {
			if header == "" {
				continue
			}
			var value any
			if col < len(raw) {
				value = raw[col]
			}
			row.Cells[header] = value
			row.CellRefs[header] = cellRef(col, number)
		}
		table.Rows = append(table.Rows, row)
	}

	return []domain.Table{table}, nil
}

// sheetName derives a sheet label from the file name stem.
func sheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// cellRef builds an A1-notation reference from a zero-based column and
// a 1-based row number. Columns beyond Z continue AA, AB and so on.
func cellRef(col, row int) string {
	var letters []byte
	for c := col; ; {
		letters = append([]byte{byte('A' + c%26)}, letters...)
		c = c/26 - 1
		if c < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", letters, row)
}
