package query_test

import (
	"sort"
	"testing"

	"github.com/kvsql/kvsql/internal/kv/sortedkv"
	. "github.com/kvsql/kvsql/internal/query"
	"github.com/kvsql/kvsql/internal/sql"
	"github.com/kvsql/kvsql/internal/storage"
	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func newTestExecutor() *Executor {
	return NewExecutor(sortedkv.New())
}

func run(t *testing.T, e *Executor, query string) *Response {
	t.Helper()
	stmt, err := sql.Parse(query)
	assert.NilError(t, err)
	res, err := e.Execute(stmt)
	assert.NilError(t, err)
	return res
}

func runErr(t *testing.T, e *Executor, query string) error {
	t.Helper()
	stmt, err := sql.Parse(query)
	assert.NilError(t, err)
	_, err = e.Execute(stmt)
	assert.Assert(t, err != nil, "expected %q to fail", query)
	return err
}

func TestCreateTable(t *testing.T) {
	e := newTestExecutor()

	res := run(t, e, "CREATE TABLE users (id int, name text)")
	// non-query statements succeed with an empty response
	assert.Equal(t, len(res.Fields), 0)
	assert.Equal(t, len(res.Rows), 0)

	t.Run("create twice fails", func(t *testing.T) {
		err := runErr(t, e, "CREATE TABLE users (id int, name text)")
		assert.Assert(t, errors.Is(err, storage.ERR_TABLE_EXISTS))
	})
}

func TestInsert(t *testing.T) {
	e := newTestExecutor()
	run(t, e, "CREATE TABLE users (id int, name text)")

	res := run(t, e, "INSERT INTO users VALUES (1, 'Ann')")
	assert.Equal(t, len(res.Rows), 0)

	t.Run("missing table", func(t *testing.T) {
		err := runErr(t, e, "INSERT INTO missing_table VALUES (1, 'Ann')")
		assert.Assert(t, errors.Is(err, storage.ERR_TABLE_NOT_FOUND))
	})

	t.Run("arity is enforced", func(t *testing.T) {
		err := runErr(t, e, "INSERT INTO users VALUES (1)")
		assert.ErrorContains(t, err, "2 columns but 1 values")

		err = runErr(t, e, "INSERT INTO users VALUES (1, 'Ann', 'extra')")
		assert.ErrorContains(t, err, "2 columns but 3 values")
	})

	t.Run("identifiers in values resolve to null", func(t *testing.T) {
		run(t, e, "INSERT INTO users VALUES (nonsense, 'Null Id')")
		res := run(t, e, "SELECT id, name FROM users WHERE name = 'Null Id'")
		assert.DeepEqual(t, res.Rows, [][]string{{"", "Null Id"}})
	})
}

func TestSelect(t *testing.T) {
	e := newTestExecutor()
	run(t, e, "CREATE TABLE users (id int, name text)")
	run(t, e, "INSERT INTO users VALUES (1, 'Ann')")

	t.Run("star expands in schema order", func(t *testing.T) {
		res := run(t, e, "SELECT * FROM users")
		assert.DeepEqual(t, res.Fields, []string{"id", "name"})
		assert.DeepEqual(t, res.Rows, [][]string{{"1", "Ann"}})
	})

	run(t, e, "INSERT INTO users VALUES (2, 'Bo')")

	t.Run("where filters by equality", func(t *testing.T) {
		res := run(t, e, "SELECT name FROM users WHERE id = 2")
		assert.DeepEqual(t, res.Fields, []string{"name"})
		assert.DeepEqual(t, res.Rows, [][]string{{"Bo"}})
	})

	t.Run("where filters by comparison", func(t *testing.T) {
		res := run(t, e, "SELECT id FROM users WHERE id < 2")
		assert.DeepEqual(t, res.Rows, [][]string{{"1"}})
	})

	t.Run("no where yields every row", func(t *testing.T) {
		res := run(t, e, "SELECT name FROM users")
		names := []string{}
		for _, row := range res.Rows {
			names = append(names, row[0])
		}
		sort.Strings(names)
		assert.DeepEqual(t, names, []string{"Ann", "Bo"})
	})

	t.Run("expression projection", func(t *testing.T) {
		res := run(t, e, "SELECT id + 10, name || '!' FROM users WHERE id = 1")
		assert.DeepEqual(t, res.Fields, []string{"id + 10", "name || '!'"})
		assert.DeepEqual(t, res.Rows, [][]string{{"11", "Ann!"}})
	})

	t.Run("missing table", func(t *testing.T) {
		err := runErr(t, e, "SELECT name FROM missing_table")
		assert.Assert(t, errors.Is(err, storage.ERR_TABLE_NOT_FOUND))
	})
}

func TestScanYieldsAllInsertedRows(t *testing.T) {
	e := newTestExecutor()
	run(t, e, "CREATE TABLE nums (n int)")

	const n_rows = 25
	for i := 0; i < n_rows; i++ {
		run(t, e, "INSERT INTO nums VALUES (1)")
	}

	res := run(t, e, "SELECT n FROM nums")
	assert.Equal(t, len(res.Rows), n_rows)
}
