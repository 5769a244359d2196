package storage

import "github.com/google/uuid"

// Key layout. Metadata and rows live in two namespaces:
//
//	table_<name>        -> framed (column, type) pairs in column order
//	row_<table>_<16b id> -> framed cell values in column order
//
// Row keys for a table share the literal prefix row_<table>_, so a prefix
// scan over it enumerates exactly that table's rows. The id is random and
// never used for lookup.
const (
	table_key_prefix = "table_"
	row_key_prefix   = "row_"
)

func tableKey(name string) string { return table_key_prefix + name }

func rowPrefix(table string) string { return row_key_prefix + table + "_" }

func newRowKey(table string) string {
	id := uuid.New()
	return rowPrefix(table) + string(id[:])
}
