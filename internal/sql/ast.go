// Package sql turns SQL text into the statement and expression trees the
// executor consumes. Three statements are understood: CREATE TABLE,
// INSERT INTO and SELECT.
package sql

import "strings"

type Statement interface{ stmt() }

type ColumnDef struct {
	Name string
	Type string
}

type CreateTableStatement struct {
	Name    string
	Columns []ColumnDef
}

type InsertStatement struct {
	Table  string
	Values []Expression
}

type SelectStatement struct {
	Table   string
	Columns []Expression
	// Where is nil when the statement has no WHERE clause.
	Where Expression
}

func (*CreateTableStatement) stmt() {}
func (*InsertStatement) stmt()      {}
func (*SelectStatement) stmt()      {}

type Expression interface {
	expr()
	// String renders the expression back to text; the executor uses it
	// for SELECT output field names.
	String() string
}

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInteger
	LiteralIdentifier
)

// Literal carries the raw token text; integer literals are parsed at
// evaluation time, identifiers are resolved against the current row.
type Literal struct {
	Kind LiteralKind
	Text string
}

type Operator string

const (
	OpEqual   Operator = "="
	OpLess    Operator = "<"
	OpGreater Operator = ">"
	OpAdd     Operator = "+"
	OpConcat  Operator = "||"
)

type BinaryOp struct {
	Op    Operator
	Left  Expression
	Right Expression
}

func (*Literal) expr()  {}
func (*BinaryOp) expr() {}

func (l *Literal) String() string {
	if l.Kind == LiteralString {
		return "'" + l.Text + "'"
	}
	return l.Text
}

func (b *BinaryOp) String() string {
	return strings.Join([]string{b.Left.String(), string(b.Op), b.Right.String()}, " ")
}

// IsStar reports whether the projection list is exactly the single
// token `*`.
func IsStar(columns []Expression) bool {
	if len(columns) != 1 {
		return false
	}
	lit, ok := columns[0].(*Literal)
	return ok && lit.Kind == LiteralIdentifier && lit.Text == "*"
}
