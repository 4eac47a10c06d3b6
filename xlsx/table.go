package xlsx

// Table is a sheet read as a header row followed by data rows.
type Table struct {
	// Header holds the labels of the first row.
	Header []string

	// Rows holds the remaining rows, unpadded.
	Rows []Row
}

// ReadTable reads sheet n and splits off its first row as column labels.
// Every label must be non-empty text and unique, otherwise a *FormatError
// is returned.
func (wb *Workbook) ReadTable(n int) (*Table, error) {
	rows, err := wb.ReadSheet(n)
	if err != nil {
		return nil, err
	}
	return newTable(rows)
}

func newTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, NewFormatError("sheet has no header row")
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]int, len(rows[0]))
	for colx, c := range rows[0] {
		label, ok := c.Value.(string)
		if !ok || c.Kind != KindText {
			return nil, NewFormatError("header column %d is %s, not text", colx+1, c.Kind)
		}
		if prev, dup := seen[label]; dup {
			return nil, NewFormatError("header label %q repeated in columns %d and %d", label, prev+1, colx+1)
		}
		seen[label] = colx
		header[colx] = label
	}
	return &Table{Header: header, Rows: rows[1:]}, nil
}

// Record returns data row i as a map from label to value. Columns missing
// from a short row map to nil.
func (t *Table) Record(i int) (map[string]interface{}, error) {
	if i < 0 || i >= len(t.Rows) {
		return nil, NewLookupError("record %d out of range (table has %d)", i, len(t.Rows))
	}
	row := t.Rows[i]
	if len(row) > len(t.Header) {
		return nil, NewFormatError("record %d has %d values for %d columns", i, len(row), len(t.Header))
	}
	rec := make(map[string]interface{}, len(t.Header))
	for colx, label := range t.Header {
		if colx < len(row) {
			rec[label] = row[colx].Value
		} else {
			rec[label] = nil
		}
	}
	return rec, nil
}
