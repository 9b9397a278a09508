package values

import (
	"bytes"
	"math"
)

// Equal reports whether a and b hold the same value. Records compare field
// sets by key; a Blob equals a Vec of Nat8 with the same bytes. Floats compare
// by bit pattern so NaN equals itself.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := asBytes(a); ok {
		bb, ok := asBytes(b)
		return ok && bytes.Equal(ab, bb)
	}
	switch x := a.(type) {
	case Nat:
		y, ok := b.(Nat)
		return ok && x.Equal(y)
	case Int:
		y, ok := b.(Int)
		return ok && x.Big().Cmp(y.Big()) == 0
	case Float32:
		y, ok := b.(Float32)
		return ok && math.Float32bits(float32(x)) == math.Float32bits(float32(y))
	case Float64:
		y, ok := b.(Float64)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case Principal:
		y, ok := b.(Principal)
		return ok && bytes.Equal(x, y)
	case Opt:
		y, ok := b.(Opt)
		return ok && Equal(x.Value, y.Value)
	case Vec:
		y, ok := b.(Vec)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			v, ok := y.Lookup(f.Label.Key())
			if !ok || !Equal(f.Value, v) {
				return false
			}
		}
		return true
	case Variant:
		y, ok := b.(Variant)
		return ok && x.Field.Label.Key() == y.Field.Label.Key() && Equal(x.Field.Value, y.Field.Value)
	case Service:
		y, ok := b.(Service)
		return ok && bytes.Equal(x.Principal, y.Principal)
	case Func:
		y, ok := b.(Func)
		return ok && x.Method == y.Method && bytes.Equal(x.Service, y.Service)
	}
	return a == b
}

func asBytes(v Value) ([]byte, bool) {
	switch x := v.(type) {
	case Blob:
		return x, true
	case Vec:
		out := make([]byte, len(x))
		for i, e := range x {
			n, ok := e.(Nat8)
			if !ok {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	}
	return nil, false
}
