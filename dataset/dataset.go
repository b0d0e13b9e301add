// Package dataset defines the in-memory table model every analysis runs
// against. A Table is created once per loaded file and is read-only after
// construction; equal column lengths and unique column names are enforced
// up front so downstream code never has to re-validate them.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred scalar type of a column.
type Kind int

const (
	// KindText columns keep their raw cell strings.
	KindText Kind = iota
	// KindNumeric columns hold float64 values; the raw strings are dropped.
	KindNumeric
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// Column is one named column of a Table. Exactly one of Numbers/Text is
// populated depending on Kind, and Missing marks per-cell null values.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Text    []string
	Missing []bool
}

// NewNumericColumn builds a numeric column. values and missing must have the
// same length; cells marked missing carry an undefined value.
func NewNumericColumn(name string, values []float64, missing []bool) Column {
	return Column{Name: name, Kind: KindNumeric, Numbers: values, Missing: missing}
}

// NewTextColumn builds a text column.
func NewTextColumn(name string, values []string, missing []bool) Column {
	return Column{Name: name, Kind: KindText, Text: values, Missing: missing}
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numbers)
	}
	return len(c.Text)
}

// MissingCount returns how many cells are marked missing.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// IsMissing reports whether the cell at row is missing.
func (c *Column) IsMissing(row int) bool {
	return row < len(c.Missing) && c.Missing[row]
}

// CellString returns the display form of a cell. Missing cells render empty.
func (c *Column) CellString(row int) string {
	if c.IsMissing(row) {
		return ""
	}
	if c.Kind == KindNumeric {
		return strconv.FormatFloat(c.Numbers[row], 'g', -1, 64)
	}
	return c.Text[row]
}

// NumericValues returns the non-missing numeric values in row order along
// with their source row indices. Returns nil slices for text columns.
func (c *Column) NumericValues() ([]float64, []int) {
	if c.Kind != KindNumeric {
		return nil, nil
	}
	values := make([]float64, 0, len(c.Numbers))
	rows := make([]int, 0, len(c.Numbers))
	for i, v := range c.Numbers {
		if c.IsMissing(i) {
			continue
		}
		values = append(values, v)
		rows = append(rows, i)
	}
	return values, rows
}

// Table is an ordered list of equally sized columns.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates the columns and builds a Table. It fails on zero columns,
// unequal column lengths, mismatched missing markers or duplicate names
// (compared case-insensitively after trimming) - these are caller bugs, not
// data-quality issues.
func New(columns []Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table must have at least one column")
	}

	rows := columns[0].Len()
	index := make(map[string]int, len(columns))
	for i := range columns {
		col := &columns[i]
		col.Name = strings.TrimSpace(col.Name)
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if col.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), rows)
		}
		if len(col.Missing) != rows {
			return nil, fmt.Errorf("column %q has %d missing markers, expected %d", col.Name, len(col.Missing), rows)
		}
		key := strings.ToLower(col.Name)
		if _, exists := index[key]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		index[key] = i
	}

	return &Table{columns: columns, index: index, rows: rows}, nil
}

// Rows returns the row count shared by all columns.
func (t *Table) Rows() int {
	return t.rows
}

// Columns returns the columns in their original order. Callers must treat
// the returned slice as read-only.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in their original order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name, case-insensitively after trimming.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return &t.columns[i], true
}

// NumericColumnCount returns how many columns are numeric.
func (t *Table) NumericColumnCount() int {
	n := 0
	for i := range t.columns {
		if t.columns[i].Kind == KindNumeric {
			n++
		}
	}
	return n
}

// MissingValues returns the total number of missing cells across columns.
func (t *Table) MissingValues() int {
	n := 0
	for i := range t.columns {
		n += t.columns[i].MissingCount()
	}
	return n
}

// DuplicateRows counts rows that are exact value-for-value duplicates of an
// earlier row, all columns compared.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]struct{}, t.rows)
	dups := 0
	var sb strings.Builder
	for row := 0; row < t.rows; row++ {
		sb.Reset()
		for i := range t.columns {
			// Missing and present-but-empty cells render the same, so the
			// marker goes into the key too.
			if t.columns[i].IsMissing(row) {
				sb.WriteByte(0x00)
			}
			// \x1f keeps adjacent cells from colliding when joined.
			sb.WriteString(t.columns[i].CellString(row))
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// MemoryEstimate approximates the resident size of the table in bytes:
// 8 bytes per numeric cell, string length plus header per text cell, one
// byte per missing marker.
func (t *Table) MemoryEstimate() int64 {
	const stringHeader = 16
	var total int64
	for i := range t.columns {
		col := &t.columns[i]
		switch col.Kind {
		case KindNumeric:
			total += int64(len(col.Numbers)) * 8
		default:
			for _, s := range col.Text {
				total += int64(len(s)) + stringHeader
			}
		}
		total += int64(len(col.Missing))
	}
	return total
}
