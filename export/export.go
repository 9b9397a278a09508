// Package export renders decoded values as JSON, CBOR or MessagePack
// documents for tools that do not speak the binary format.
//
// Values are first lowered to plain Go data by Plain, then handed to the
// format's encoder:
//
//	null, reserved, opt none -> nil
//	nat, int                 -> uint64 / int64, or a decimal string when out of range
//	text, principal          -> string (principals in their textual form)
//	blob                     -> []byte
//	vec, tuple               -> []any
//	record                   -> map[string]any keyed by label
//	variant                  -> single-entry map[string]any
//	service, func            -> string / map with "service" and "method"
package export

import (
	"sort"
	"strconv"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/principal"
	"github.com/wippyai/candid-go/values"
)

// Exporter serializes a decoded value into a document format.
type Exporter interface {
	// Export encodes v.
	Export(v values.Value) ([]byte, error)

	// Name returns the format name accepted by New.
	Name() string
}

// Formats lists the names accepted by New.
var Formats = []string{"json", "cbor", "msgpack"}

// New returns the exporter for a format name.
func New(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSON(), nil
	case "cbor":
		return NewCBOR(), nil
	case "msgpack":
		return NewMsgPack(), nil
	}
	return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
		Value(format).
		Detail("unknown export format %q", format).
		Build()
}

// Plain lowers v to nil, bool, numbers, string, []byte, []any and
// map[string]any.
func Plain(v values.Value) any {
	switch x := v.(type) {
	case nil, values.Null, values.Reserved:
		return nil
	case values.Bool:
		return bool(x)
	case values.Nat:
		if n, err := x.Uint64(); err == nil {
			return n
		}
		return x.String()
	case values.Int:
		if n, err := x.Int64(); err == nil {
			return n
		}
		return x.Big().String()
	case values.Nat8:
		return uint8(x)
	case values.Nat16:
		return uint16(x)
	case values.Nat32:
		return uint32(x)
	case values.Nat64:
		return uint64(x)
	case values.Int8:
		return int8(x)
	case values.Int16:
		return int16(x)
	case values.Int32:
		return int32(x)
	case values.Int64:
		return int64(x)
	case values.Float32:
		return float32(x)
	case values.Float64:
		return float64(x)
	case values.Text:
		return string(x)
	case values.Principal:
		return principal.Text(x)
	case values.Blob:
		return []byte(x)
	case values.Opt:
		return Plain(x.Value)
	case values.Vec:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Plain(e)
		}
		return out
	case values.Record:
		if isTuple(x) {
			out := make([]any, len(x.Fields))
			for i, f := range x.Fields {
				out[i] = Plain(f.Value)
			}
			return out
		}
		out := make(map[string]any, len(x.Fields))
		for _, f := range x.Fields {
			out[key(f)] = Plain(f.Value)
		}
		return out
	case values.Variant:
		return map[string]any{key(x.Field): Plain(x.Field.Value)}
	case values.Service:
		return principal.Text(x.Principal)
	case values.Func:
		return map[string]any{
			"service": principal.Text(x.Service),
			"method":  x.Method,
		}
	}
	return v.String()
}

func key(f values.Field) string {
	if name, ok := f.Label.Name(); ok {
		return name
	}
	return strconv.FormatUint(uint64(f.Label.Key()), 10)
}

// isTuple reports whether r's labels are exactly 0..n-1 in order.
func isTuple(r values.Record) bool {
	if len(r.Fields) == 0 {
		return false
	}
	keys := make([]uint32, len(r.Fields))
	for i, f := range r.Fields {
		if _, named := f.Label.Name(); named {
			return false
		}
		keys[i] = f.Label.Key()
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for i, k := range keys {
		if k != uint32(i) {
			return false
		}
	}
	return true
}
