// Package relation is the row-oriented interface over a heap file: row
// marshalling, insertion, full-scan selection, and projection.
package relation

import "github.com/pkg/errors"

// ColType tags the wire representation of one column.
type ColType int

const (
	// ColInt is a signed 32-bit little-endian integer.
	ColInt ColType = iota
	// ColText is a 2-byte little-endian length prefix followed by ASCII bytes.
	ColText
	// ColBoolean is a single 0/1 byte, used by the catalog's is_unique column.
	ColBoolean
)

func (t ColType) String() string {
	switch t {
	case ColInt:
		return "INT"
	case ColText:
		return "TEXT"
	case ColBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Column describes one column of a schema in declared order.
type Column struct {
	Name string
	Type ColType
}

// Value is the tagged variant a Row's fields hold.
type Value struct {
	typ  ColType
	i    int32
	s    string
	b    bool
}

// IntValue wraps an INT.
func IntValue(v int32) Value { return Value{typ: ColInt, i: v} }

// TextValue wraps a TEXT.
func TextValue(v string) Value { return Value{typ: ColText, s: v} }

// BoolValue wraps a BOOLEAN.
func BoolValue(v bool) Value { return Value{typ: ColBoolean, b: v} }

// Type reports which variant is populated.
func (v Value) Type() ColType { return v.typ }

// Int returns the INT payload; valid only when Type() == ColInt.
func (v Value) Int() int32 { return v.i }

// Text returns the TEXT payload; valid only when Type() == ColText.
func (v Value) Text() string { return v.s }

// Bool returns the BOOLEAN payload; valid only when Type() == ColBoolean.
func (v Value) Bool() bool { return v.b }

// Equal compares two values for equality of type and payload, used by
// select()'s equality filter.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case ColInt:
		return v.i == o.i
	case ColText:
		return v.s == o.s
	case ColBoolean:
		return v.b == o.b
	default:
		return false
	}
}

// Row maps column name to value.
type Row map[string]Value

// ErrRelation wraps marshalling and schema-validation failures:
// unimplementable types, missing columns, rows too large for one block.
var ErrRelation = errors.New("relation error")
