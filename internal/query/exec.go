package query

import (
	"fmt"

	"github.com/kvsql/kvsql/internal/kv"
	"github.com/kvsql/kvsql/internal/sql"
	"github.com/kvsql/kvsql/internal/storage"
	"github.com/pkg/errors"
)

// Response is the tabular result of a statement. Non-query statements
// succeed with empty Fields and Rows.
type Response struct {
	Fields []string   `json:"fields"`
	Rows   [][]string `json:"rows"`
}

// Executor turns parsed statements into storage reads and writes. Every
// failure aborts the statement; nothing is retried.
type Executor struct {
	store *storage.Store
}

func NewExecutor(store kv.Store) *Executor {
	return &Executor{store: storage.NewStore(store)}
}

func (e *Executor) Execute(stmt sql.Statement) (*Response, error) {
	switch s := stmt.(type) {
	case *sql.CreateTableStatement:
		return e.execCreateTable(s)
	case *sql.InsertStatement:
		return e.execInsert(s)
	case *sql.SelectStatement:
		return e.execSelect(s)
	}
	return nil, fmt.Errorf("unsupported statement %T", stmt)
}

func (e *Executor) execCreateTable(stmt *sql.CreateTableStatement) (*Response, error) {
	t := storage.NewTable(stmt.Name)
	for _, col := range stmt.Columns {
		t.AddColumn(col.Name, col.Type)
	}
	if err := e.store.WriteTable(t); err != nil {
		return nil, err
	}
	return &Response{Fields: []string{}, Rows: [][]string{}}, nil
}

// INSERT value expressions are evaluated against an empty row: they have
// no column context, so identifiers resolve to Null. The value count must
// match the schema or later scans would decode short records.
func (e *Executor) execInsert(stmt *sql.InsertStatement) (*Response, error) {
	t, err := e.store.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Wrapf(storage.ERR_TABLE_NOT_FOUND, "table %s", stmt.Table)
	}

	if len(stmt.Values) != t.Fields.Len() {
		return nil, fmt.Errorf("table %s has %d columns but %d values were supplied",
			stmt.Table, t.Fields.Len(), len(stmt.Values))
	}

	row := storage.NewRow(t)
	empty := storage.EmptyRow()
	for _, expr := range stmt.Values {
		v, err := Eval(expr, empty)
		if err != nil {
			return nil, err
		}
		row.Append(v)
	}

	if err := e.store.WriteRow(stmt.Table, row); err != nil {
		return nil, err
	}
	return &Response{Fields: []string{}, Rows: [][]string{}}, nil
}

// SELECT is a full table scan: no indexes, no planner. Output rows come
// back in storage-scan order, which depends on the random row ids.
func (e *Executor) execSelect(stmt *sql.SelectStatement) (*Response, error) {
	t, err := e.store.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Wrapf(storage.ERR_TABLE_NOT_FOUND, "table %s", stmt.Table)
	}

	projections := stmt.Columns
	if sql.IsStar(projections) {
		projections = make([]sql.Expression, 0, t.Fields.Len())
		for _, col := range t.Columns() {
			projections = append(projections, &sql.Literal{Kind: sql.LiteralIdentifier, Text: col})
		}
	}

	fields := make([]string, 0, len(projections))
	for _, expr := range projections {
		fields = append(fields, expr.String())
	}

	rows := [][]string{}
	iter := e.store.ScanRows(t)
	defer iter.Close()
	for {
		row, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}

		if stmt.Where != nil {
			keep, err := Eval(stmt.Where, row)
			if err != nil {
				return nil, err
			}
			if !keep.AsBool() {
				continue
			}
		}

		out := make([]string, 0, len(projections))
		for _, expr := range projections {
			v, err := Eval(expr, row)
			if err != nil {
				return nil, err
			}
			out = append(out, v.AsString())
		}
		rows = append(rows, out)
	}

	return &Response{Fields: fields, Rows: rows}, nil
}
