package domain

// Table is the boundary type produced by table extractors. Cell-level
// parsing of spreadsheets and HTML is delegated to the extractor; the
// ingest pipeline only sees header-keyed rows with source coordinates.
type Table struct {
	// SourceKind marks the extractor that produced the table.
	SourceKind SourceKind

	// SourceFile is the file the table was read from, if any.
	SourceFile string

	// SourceURL is the URL the table was fetched from, if any.
	SourceURL string

	// SheetName is the sheet name for spreadsheet sources.
	SheetName string

	// Index is the table's ordinal on the page for HTML sources.
	Index int

	// Headers are the column headers in column order.
	Headers []string

	// Rows are the data rows in row order.
	Rows []TableRow
}

// TableRow is one header-keyed data row with source coordinates.
type TableRow struct {
	// Number is the 1-based row number in the source, headers included.
	Number int

	// Cells maps a header to the raw cell value.
	Cells map[string]any

	// CellRefs maps a header to its cell reference (e.g. "B3") when
	// the extractor can provide one.
	CellRefs map[string]string
}

// Locator returns the best available source locator for the table.
func (t *Table) Locator() string {
	if t.SourceFile != "" {
		return t.SourceFile
	}
	return t.SourceURL
}
