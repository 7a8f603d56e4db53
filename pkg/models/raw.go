package models

import "strings"

// RawRecord is one source row keyed by the source's own column name.
// Blank cells are not stored.
type RawRecord map[string]string

// RawTable is a loaded source file before schema reconciliation
type RawTable struct {
	Columns []string
	Rows    []RawRecord
}

// NewRawTable builds a table from a header row and data rows. Ragged rows are
// accepted: short rows leave trailing columns absent, extra cells are dropped.
func NewRawTable(header []string, rows [][]string) *RawTable {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &RawTable{Columns: columns, Rows: make([]RawRecord, 0, len(rows))}
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		record := make(RawRecord, len(columns))
		for i, col := range columns {
			if i >= len(row) || col == "" {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			if _, exists := record[col]; exists {
				continue
			}
			record[col] = v
		}
		table.Rows = append(table.Rows, record)
	}
	return table
}

// Len returns the number of rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
