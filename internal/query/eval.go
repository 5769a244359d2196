// Package query evaluates expression trees against rows and executes
// parsed statements against storage.
package query

import (
	"fmt"
	"strconv"

	"github.com/kvsql/kvsql/internal/sql"
	"github.com/kvsql/kvsql/internal/storage"
	"github.com/kvsql/kvsql/internal/types"
	"github.com/pkg/errors"
)

var ERR_INVALID_INT_LITERAL = errors.New("invalid integer literal")

// Eval walks the expression tree once, bottom-up. Identifier lookups go
// through row.Get, so unknown fields evaluate to Null instead of failing.
func Eval(expr sql.Expression, row *storage.Row) (types.Value, error) {
	switch e := expr.(type) {
	case *sql.Literal:
		return evalLiteral(e, row)
	case *sql.BinaryOp:
		return evalBinaryOp(e, row)
	}
	return types.Null(), fmt.Errorf("malformed expression node %T", expr)
}

func evalLiteral(lit *sql.Literal, row *storage.Row) (types.Value, error) {
	switch lit.Kind {
	case sql.LiteralString:
		return types.String(lit.Text), nil
	case sql.LiteralInteger:
		i, err := strconv.ParseInt(lit.Text, 10, 64)
		if err != nil {
			return types.Null(), errors.Wrapf(ERR_INVALID_INT_LITERAL, "%q", lit.Text)
		}
		return types.Int(i), nil
	case sql.LiteralIdentifier:
		return row.Get(lit.Text), nil
	}
	return types.Null(), fmt.Errorf("malformed literal kind %d", lit.Kind)
}

// Binary operators are total over mixed types through coercion:
// = and || stringify both sides, < > + use integer coercion. Equality is
// always a byte-for-byte string comparison, never type-aware, so
// 1 = '1' holds.
func evalBinaryOp(op *sql.BinaryOp, row *storage.Row) (types.Value, error) {
	left, err := Eval(op.Left, row)
	if err != nil {
		return types.Null(), err
	}
	right, err := Eval(op.Right, row)
	if err != nil {
		return types.Null(), err
	}

	switch op.Op {
	case sql.OpEqual:
		return types.Bool(left.AsString() == right.AsString()), nil
	case sql.OpConcat:
		return types.String(left.AsString() + right.AsString()), nil
	case sql.OpLess:
		return types.Bool(left.AsInt() < right.AsInt()), nil
	case sql.OpGreater:
		return types.Bool(left.AsInt() > right.AsInt()), nil
	case sql.OpAdd:
		return types.Int(left.AsInt() + right.AsInt()), nil
	}
	return types.Null(), fmt.Errorf("malformed operator %q", op.Op)
}
