package sql_test

import (
	"testing"

	. "github.com/kvsql/kvsql/internal/sql"
	"gotest.tools/assert"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE users (id int, name text)")
	assert.NilError(t, err)

	create, ok := stmt.(*CreateTableStatement)
	assert.Assert(t, ok)
	assert.Equal(t, create.Name, "users")
	assert.DeepEqual(t, create.Columns, []ColumnDef{{"id", "int"}, {"name", "text"}})
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("INSERT INTO users VALUES (1, 'Ann')")
	assert.NilError(t, err)

	insert, ok := stmt.(*InsertStatement)
	assert.Assert(t, ok)
	assert.Equal(t, insert.Table, "users")
	assert.Equal(t, len(insert.Values), 2)

	first := insert.Values[0].(*Literal)
	assert.Equal(t, first.Kind, LiteralInteger)
	assert.Equal(t, first.Text, "1")

	second := insert.Values[1].(*Literal)
	assert.Equal(t, second.Kind, LiteralString)
	assert.Equal(t, second.Text, "Ann")
}

func TestParseSelect(t *testing.T) {
	t.Run("star", func(t *testing.T) {
		stmt, err := Parse("SELECT * FROM users")
		assert.NilError(t, err)

		sel := stmt.(*SelectStatement)
		assert.Equal(t, sel.Table, "users")
		assert.Assert(t, IsStar(sel.Columns))
		assert.Assert(t, sel.Where == nil)
	})

	t.Run("projection and where", func(t *testing.T) {
		stmt, err := Parse("SELECT name FROM users WHERE id = 2")
		assert.NilError(t, err)

		sel := stmt.(*SelectStatement)
		assert.Equal(t, len(sel.Columns), 1)
		assert.Equal(t, sel.Columns[0].String(), "name")

		where := sel.Where.(*BinaryOp)
		assert.Equal(t, where.Op, OpEqual)
		assert.Equal(t, where.Left.String(), "id")
		assert.Equal(t, where.Right.String(), "2")
	})

	t.Run("keywords are case-insensitive", func(t *testing.T) {
		stmt, err := Parse("select id from users where id < 2;")
		assert.NilError(t, err)

		sel := stmt.(*SelectStatement)
		assert.Equal(t, sel.Where.(*BinaryOp).Op, OpLess)
	})

	t.Run("expression projections", func(t *testing.T) {
		stmt, err := Parse("SELECT id + 1, name || '!' FROM users")
		assert.NilError(t, err)

		sel := stmt.(*SelectStatement)
		assert.Equal(t, len(sel.Columns), 2)
		assert.Equal(t, sel.Columns[0].String(), "id + 1")
		assert.Equal(t, sel.Columns[1].String(), "name || '!'")
	})
}

func TestParsePrecedence(t *testing.T) {
	// + binds tighter than <, which binds tighter than =
	stmt, err := Parse("SELECT * FROM users WHERE id + 1 < 3 = 1 > 0")
	assert.NilError(t, err)

	where := stmt.(*SelectStatement).Where.(*BinaryOp)
	assert.Equal(t, where.Op, OpEqual)
	assert.Equal(t, where.Left.String(), "id + 1 < 3")
	assert.Equal(t, where.Right.String(), "1 > 0")
}

func TestParseNegativeInteger(t *testing.T) {
	stmt, err := Parse("INSERT INTO users VALUES (-5, 'Bo')")
	assert.NilError(t, err)

	first := stmt.(*InsertStatement).Values[0].(*Literal)
	assert.Equal(t, first.Kind, LiteralInteger)
	assert.Equal(t, first.Text, "-5")
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"DROP TABLE users",
		"CREATE TABLE users",
		"CREATE TABLE users ()",
		"INSERT INTO users VALUES 1",
		"SELECT FROM users",
		"SELECT * FROM",
		"SELECT * FROM users WHERE",
		"INSERT INTO users VALUES ('unterminated)",
		"SELECT * FROM users extra",
	}
	for _, query := range bad {
		_, err := Parse(query)
		assert.Assert(t, err != nil, "expected parse error for %q", query)
	}
}
