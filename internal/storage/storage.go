// Package storage maps tables and rows onto an ordered key-value store.
// Metadata and row payloads are byte-string frames produced by the codec;
// rows are enumerated with a prefix scan, never addressed by id.
package storage

import (
	"fmt"
	"strings"

	"github.com/kvsql/kvsql/internal/codec"
	"github.com/kvsql/kvsql/internal/kv"
	"github.com/pkg/errors"
)

var (
	ERR_TABLE_EXISTS         = errors.New("table already exists")
	ERR_TABLE_NOT_FOUND      = errors.New("table not found")
	ERR_COLUMN_NOT_FOUND     = errors.New("column not found")
	ERR_CORRUPT_TABLE_RECORD = errors.New("corrupt table record")
	ERR_CORRUPT_ROW_RECORD   = errors.New("corrupt row record")
)

type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// GetTable reads and decodes table_<name>. A missing table is (nil, nil),
// not an error; a payload that does not decode into whole (column, type)
// pairs is a corrupt record.
func (s *Store) GetTable(name string) (*Table, error) {
	buf, ok := s.kv.Get(tableKey(name))
	if !ok {
		return nil, nil
	}

	t := NewTable(name)
	for len(buf) > 0 {
		col, n, err := codec.DecodeBytes(buf)
		if err != nil {
			return nil, errors.Wrapf(ERR_CORRUPT_TABLE_RECORD, "table %s: %v", name, err)
		}
		buf = buf[n:]

		col_type, n, err := codec.DecodeBytes(buf)
		if err != nil {
			return nil, errors.Wrapf(ERR_CORRUPT_TABLE_RECORD, "table %s: missing type for column %s", name, col)
		}
		buf = buf[n:]

		t.AddColumn(string(col), string(col_type))
	}
	return t, nil
}

// WriteTable serializes the schema under table_<name>. The existence
// check and the write are two separate store operations; the engine runs
// one statement at a time, so no isolation is needed between them.
func (s *Store) WriteTable(t *Table) error {
	existing, err := s.GetTable(t.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(ERR_TABLE_EXISTS, "table %s", t.Name)
	}

	if t.Fields.Len() < 1 {
		return fmt.Errorf("table %s must have at least one column", t.Name)
	}
	if t.Fields.Len() != len(t.Fields.Idx) {
		return fmt.Errorf("table %s has duplicate column names", t.Name)
	}
	if err := s.checkKeyspaceConflict(t.Name); err != nil {
		return err
	}

	buf := []byte{}
	col_types := t.Types()
	for i, col := range t.Columns() {
		for _, field := range []string{col, col_types[i]} {
			frame, err := codec.EncodeBytes([]byte(field))
			if err != nil {
				return err
			}
			buf = append(buf, frame...)
		}
	}
	return s.kv.Set(tableKey(t.Name), buf)
}

// The row-key layout row_<table>_<id> cannot tell the rows of table "a"
// from those of a table named "a_b". Reject names that would overlap an
// existing table's row keyspace instead of silently mixing scans.
func (s *Store) checkKeyspaceConflict(name string) error {
	it := s.kv.IterPrefix(table_key_prefix)
	defer it.Close()
	for {
		e, ok := it.Next()
		if !ok {
			return nil
		}
		existing := strings.TrimPrefix(e.Key, table_key_prefix)
		if strings.HasPrefix(existing, name+"_") || strings.HasPrefix(name, existing+"_") {
			return fmt.Errorf("table name %s conflicts with row keyspace of existing table %s", name, existing)
		}
	}
}

// WriteRow serializes each cell as a framed value and writes the record
// under a fresh random row key. Cell count is validated by the executor
// before it gets here.
func (s *Store) WriteRow(table_name string, row *Row) error {
	t, err := s.GetTable(table_name)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.Wrapf(ERR_TABLE_NOT_FOUND, "table %s", table_name)
	}

	buf := []byte{}
	for _, cell := range row.Cells {
		frame, err := codec.EncodeBytes(codec.EncodeValue(cell))
		if err != nil {
			return err
		}
		buf = append(buf, frame...)
	}
	return s.kv.Set(newRowKey(table_name), buf)
}

// ScanRows opens a full-table prefix scan. The caller owns the iterator
// and must Close it when stopping early.
func (s *Store) ScanRows(t *Table) *RowIter {
	return &RowIter{it: s.kv.IterPrefix(rowPrefix(t.Name)), table: t}
}

type RowIter struct {
	it    kv.Iterator
	table *Table
}

// Next decodes one physical record into a row bound to the table's
// columns. Exhaustion is (nil, nil).
func (ri *RowIter) Next() (*Row, error) {
	e, ok := ri.it.Next()
	if !ok {
		return nil, nil
	}
	return decodeRow(ri.table, e.Value)
}

func (ri *RowIter) Close() { ri.it.Close() }

func decodeRow(t *Table, buf []byte) (*Row, error) {
	row := NewRow(t)
	for len(buf) > 0 {
		frame, n, err := codec.DecodeBytes(buf)
		if err != nil {
			return nil, errors.Wrapf(ERR_CORRUPT_ROW_RECORD, "table %s: %v", t.Name, err)
		}
		buf = buf[n:]

		cell, err := codec.DecodeValue(frame)
		if err != nil {
			return nil, errors.Wrapf(ERR_CORRUPT_ROW_RECORD, "table %s: %v", t.Name, err)
		}
		row.Append(cell)
	}
	if len(row.Cells) != t.Fields.Len() {
		return nil, errors.Wrapf(ERR_CORRUPT_ROW_RECORD,
			"table %s: record has %d cells, schema has %d columns", t.Name, len(row.Cells), t.Fields.Len())
	}
	return row, nil
}
