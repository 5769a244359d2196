// Package types holds the scalar value model shared by the codec, the
// storage layer and the expression evaluator.
package types

import "strconv"

type Kind byte

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInt
)

// Value is a tagged union over null, bool, string and 64-bit integer.
// Exactly one variant is active; construct through Null, Bool, String or
// Int so inactive fields stay zeroed and values compare with ==.
type Value struct {
	kind Kind
	b    bool
	s    string
	i    int64
}

func Null() Value           { return Value{} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }

func (v Value) Kind() Kind { return v.kind }

// AsBool never fails: null is false, strings are true when non-empty,
// integers when non-zero.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	case KindInt:
		return v.i != 0
	}
	return false
}

// AsString never fails: null is the empty string, bools render as
// "true"/"false", integers as decimal text.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	}
	return ""
}

// AsInt never fails: null is 0, bools are 1/0, strings parse as base-10
// signed integers and fall back to 0 when unparseable.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		i, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0
		}
		return i
	case KindInt:
		return v.i
	}
	return 0
}
