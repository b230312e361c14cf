// Package payload is the exchange envelope a staging task carries: a set of
// named tables, each with ordered columns and one row per affected record.
// Tables are validated when they are built or decoded, so readers can address
// rows and columns without re-checking the shape.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Table is one named table of the data set.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`

	index map[string]int
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...string) (*Table, error) {
	t := &Table{Name: name, Columns: columns, Rows: make([][]any, 0)}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTableName
	}

	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		key := strings.ToLower(c)
		if _, ok := t.index[key]; ok {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, t.Name, c)
		}
		t.index[key] = i
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: %s row %d has %d values, want %d", ErrRowWidth, t.Name, i, len(row), len(t.Columns))
		}
	}

	return nil
}

// AddRow appends a row. Values are matched to columns by position.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: %s got %d values, want %d", ErrRowWidth, t.Name, len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table declares the column (case-insensitive).
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[strings.ToLower(column)]
	return ok
}

// Value returns the raw value at (row, column).
func (t *Table) Value(row int, column string) (any, error) {
	i, ok := t.index[strings.ToLower(column)]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return nil, fmt.Errorf("%w: %s row %d", ErrNoRows, t.Name, row)
	}
	return t.Rows[row][i], nil
}

// Set overwrites the value at (row, column).
func (t *Table) Set(row int, column string, value any) error {
	i, ok := t.index[strings.ToLower(column)]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("%w: %s row %d", ErrNoRows, t.Name, row)
	}
	t.Rows[row][i] = value
	return nil
}

// Int reads the value at (row, column) as an integer.
func (t *Table) Int(row int, column string) (int, error) {
	v, err := t.Value(row, column)
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

// String reads the value at (row, column) as a string.
func (t *Table) String(row int, column string) (string, error) {
	v, err := t.Value(row, column)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// GUID reads the value at (row, column) as a UUID.
func (t *Table) GUID(row int, column string) (uuid.UUID, error) {
	v, err := t.Value(row, column)
	if err != nil {
		return uuid.Nil, err
	}
	switch g := v.(type) {
	case uuid.UUID:
		return g, nil
	case string:
		return uuid.Parse(g)
	default:
		return uuid.Parse(fmt.Sprint(v))
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotInteger, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotInteger, v)
	}
}

// DataSet is the ordered collection of tables a task carries. The first
// table is the primary table and describes the object the task is about.
type DataSet struct {
	Tables []*Table `json:"tables"`
}

// NewDataSet builds a data set from already validated tables.
func NewDataSet(tables ...*Table) (*DataSet, error) {
	d := &DataSet{Tables: make([]*Table, 0, len(tables))}
	for _, t := range tables {
		if err := d.Add(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Add appends a table. Table names are unique (case-insensitive).
func (d *DataSet) Add(t *Table) error {
	if err := t.validate(); err != nil {
		return err
	}
	if _, ok := d.Table(t.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
	}
	d.Tables = append(d.Tables, t)
	return nil
}

// Table finds a table by name (case-insensitive).
func (d *DataSet) Table(name string) (*Table, bool) {
	for _, t := range d.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// Primary returns the first table. It must hold at least one row.
func (d *DataSet) Primary() (*Table, error) {
	if d == nil || len(d.Tables) == 0 {
		return nil, ErrNoTables
	}
	t := d.Tables[0]
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoRows, t.Name)
	}
	return t, nil
}

// Encode renders the data set as JSON.
func Encode(d *DataSet) ([]byte, error) {
	return json.Marshal(d)
}

// Decode parses and validates an encoded data set. Numbers are kept as
// json.Number so identifiers survive without float rounding.
func Decode(data []byte) (*DataSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw DataSet
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}

	d := &DataSet{Tables: make([]*Table, 0, len(raw.Tables))}
	for _, t := range raw.Tables {
		if t == nil {
			continue
		}
		if t.Rows == nil {
			t.Rows = make([][]any, 0)
		}
		if err := d.Add(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}
