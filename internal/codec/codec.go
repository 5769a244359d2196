// Package codec owns the on-disk byte formats: length-prefixed byte-string
// frames and single tagged value frames. Everything stored under a key goes
// through these two encodings, and both must round-trip exactly.
package codec

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/kvsql/kvsql/internal/types"
)

var (
	ERR_ENCODING_OVERFLOW = errors.New("value too large for a 32-bit length prefix")
	ERR_TRUNCATED_INPUT   = errors.New("truncated input")
	ERR_UNKNOWN_VALUE_TAG = errors.New("unknown value tag")
)

// Value frame tags. Single ASCII digits so raw records stay greppable.
const (
	TagNull   byte = '0'
	TagBool   byte = '1'
	TagString byte = '2'
	TagInt    byte = '3'
)

// EncodeBytes frames buf as a 4-byte big-endian length followed by the
// raw bytes.
func EncodeBytes(buf []byte) ([]byte, error) {
	if uint64(len(buf)) > math.MaxUint32 {
		return nil, ERR_ENCODING_OVERFLOW
	}
	out := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(out, uint32(len(buf)))
	copy(out[4:], buf)
	return out, nil
}

// DecodeBytes reads one frame from the front of buf and reports how many
// bytes it consumed (4 + the framed length).
func DecodeBytes(buf []byte) ([]byte, int, error) {
	if len(buf) < 4 {
		return nil, 0, ERR_TRUNCATED_INPUT
	}
	n := int(binary.BigEndian.Uint32(buf))
	if len(buf) < 4+n {
		return nil, 0, ERR_TRUNCATED_INPUT
	}
	return buf[4 : 4+n], 4 + n, nil
}

// EncodeValue writes one tag byte followed by the variant payload.
// String payloads are raw UTF-8: their length comes from the enclosing
// byte-string frame, not from the value frame itself.
func EncodeValue(v types.Value) []byte {
	switch v.Kind() {
	case types.KindNull:
		return []byte{TagNull}
	case types.KindBool:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return []byte{TagBool, b}
	case types.KindString:
		return append([]byte{TagString}, v.AsString()...)
	case types.KindInt:
		out := make([]byte, 9)
		out[0] = TagInt
		binary.BigEndian.PutUint64(out[1:], uint64(v.AsInt()))
		return out
	}
	panic("codec: value with no active variant")
}

// DecodeValue dispatches on the tag byte and consumes the whole buffer.
func DecodeValue(buf []byte) (types.Value, error) {
	if len(buf) < 1 {
		return types.Null(), ERR_TRUNCATED_INPUT
	}
	switch buf[0] {
	case TagNull:
		return types.Null(), nil
	case TagBool:
		if len(buf) < 2 {
			return types.Null(), ERR_TRUNCATED_INPUT
		}
		return types.Bool(buf[1] != 0), nil
	case TagString:
		return types.String(string(buf[1:])), nil
	case TagInt:
		if len(buf) < 9 {
			return types.Null(), ERR_TRUNCATED_INPUT
		}
		return types.Int(int64(binary.BigEndian.Uint64(buf[1:9]))), nil
	}
	return types.Null(), ERR_UNKNOWN_VALUE_TAG
}
