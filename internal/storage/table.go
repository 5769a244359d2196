package storage

import (
	"github.com/kvsql/kvsql/internal/types"
	"github.com/kvsql/kvsql/pkg"
	"github.com/pkg/errors"
)

// Table is a table's schema: a name plus columns in declaration order,
// each mapped to its declared type tag ("int", "text"). Type tags are
// stored verbatim and not enforced on insert. Immutable once written.
type Table struct {
	Name   string
	Fields *pkg.InsertSortMap[string, string]
}

func NewTable(name string) *Table {
	return &Table{Name: name, Fields: pkg.NewInsertSortMap[string, string]()}
}

func (t *Table) AddColumn(name, col_type string) {
	t.Fields.Push(name, col_type)
}

func (t *Table) Columns() []string { return t.Fields.Sorted }

func (t *Table) Types() []string {
	col_types := make([]string, 0, t.Fields.Len())
	for _, col := range t.Fields.Sorted {
		col_types = append(col_types, t.Fields.Get(col))
	}
	return col_types
}

// LookupColumn is a linear scan; first match wins.
func (t *Table) LookupColumn(name string) (int, error) {
	for i, col := range t.Fields.Sorted {
		if col == name {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ERR_COLUMN_NOT_FOUND, "column %s in table %s", name, t.Name)
}

// Row is an ordered list of cells positionally aligned with its table's
// columns. The zero-table row (EmptyRow) is used while evaluating INSERT
// value expressions, where identifier lookups have no column context.
type Row struct {
	Table *Table
	Cells []types.Value
}

func NewRow(t *Table) *Row {
	return &Row{Table: t, Cells: []types.Value{}}
}

func EmptyRow() *Row {
	return &Row{Cells: []types.Value{}}
}

// Get resolves a field through the owning table's column list. A missing
// field or a row without cells yields Null rather than an error.
func (r *Row) Get(field string) types.Value {
	if r.Table == nil || len(r.Cells) == 0 {
		return types.Null()
	}
	i, err := r.Table.LookupColumn(field)
	if err != nil || i >= len(r.Cells) {
		return types.Null()
	}
	return r.Cells[i]
}

func (r *Row) Append(v types.Value) {
	r.Cells = append(r.Cells, v)
}
