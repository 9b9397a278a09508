package values

import (
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/principal"
	"github.com/wippyai/candid-go/types"
)

// Value is a decoded or to-be-encoded value.
type Value interface {
	Kind() types.Kind
	// Type infers a type describing the value. Empty vectors and None infer
	// the empty element type.
	Type() types.Type
	String() string
}

type (
	Null     struct{}
	Reserved struct{}
	Bool     bool
	Nat8     uint8
	Nat16    uint16
	Nat32    uint32
	Nat64    uint64
	Int8     int8
	Int16    int16
	Int32    int32
	Int64    int64
	Float32  float32
	Float64  float64
	Text     string
)

func (Null) Kind() types.Kind     { return types.KindNull }
func (Reserved) Kind() types.Kind { return types.KindReserved }
func (Bool) Kind() types.Kind     { return types.KindBool }
func (Nat8) Kind() types.Kind     { return types.KindNat8 }
func (Nat16) Kind() types.Kind    { return types.KindNat16 }
func (Nat32) Kind() types.Kind    { return types.KindNat32 }
func (Nat64) Kind() types.Kind    { return types.KindNat64 }
func (Int8) Kind() types.Kind     { return types.KindInt8 }
func (Int16) Kind() types.Kind    { return types.KindInt16 }
func (Int32) Kind() types.Kind    { return types.KindInt32 }
func (Int64) Kind() types.Kind    { return types.KindInt64 }
func (Float32) Kind() types.Kind  { return types.KindFloat32 }
func (Float64) Kind() types.Kind  { return types.KindFloat64 }
func (Text) Kind() types.Kind     { return types.KindText }

func (v Null) Type() types.Type     { return types.Null }
func (v Reserved) Type() types.Type { return types.Reserved }
func (v Bool) Type() types.Type     { return types.Bool }
func (v Nat8) Type() types.Type     { return types.Nat8 }
func (v Nat16) Type() types.Type    { return types.Nat16 }
func (v Nat32) Type() types.Type    { return types.Nat32 }
func (v Nat64) Type() types.Type    { return types.Nat64 }
func (v Int8) Type() types.Type     { return types.Int8 }
func (v Int16) Type() types.Type    { return types.Int16 }
func (v Int32) Type() types.Type    { return types.Int32 }
func (v Int64) Type() types.Type    { return types.Int64 }
func (v Float32) Type() types.Type  { return types.Float32 }
func (v Float64) Type() types.Type  { return types.Float64 }
func (v Text) Type() types.Type     { return types.Text }

func (Null) String() string     { return "null" }
func (Reserved) String() string { return "reserved" }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v Nat8) String() string   { return strconv.FormatUint(uint64(v), 10) + " : nat8" }
func (v Nat16) String() string  { return strconv.FormatUint(uint64(v), 10) + " : nat16" }
func (v Nat32) String() string  { return strconv.FormatUint(uint64(v), 10) + " : nat32" }
func (v Nat64) String() string  { return strconv.FormatUint(uint64(v), 10) + " : nat64" }
func (v Int8) String() string   { return strconv.FormatInt(int64(v), 10) + " : int8" }
func (v Int16) String() string  { return strconv.FormatInt(int64(v), 10) + " : int16" }
func (v Int32) String() string  { return strconv.FormatInt(int64(v), 10) + " : int32" }
func (v Int64) String() string  { return strconv.FormatInt(int64(v), 10) + " : int64" }
func (v Float32) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32) + " : float32"
}
func (v Float64) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Text) String() string    { return strconv.Quote(string(v)) }

// Nat is an arbitrary-precision non-negative integer.
type Nat struct {
	v *big.Int
}

// NewNat returns n as a Nat.
func NewNat(n uint64) Nat {
	return Nat{v: new(big.Int).SetUint64(n)}
}

// NatFromBig copies n. Negative values are an encode error.
func NatFromBig(n *big.Int) (Nat, error) {
	if n.Sign() < 0 {
		return Nat{}, errors.Encode(nil, "nat", n.String())
	}
	return Nat{v: new(big.Int).Set(n)}, nil
}

// Big returns a copy of the value.
func (n Nat) Big() *big.Int {
	if n.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n.v)
}

// Uint64 returns the value if it fits.
func (n Nat) Uint64() (uint64, error) {
	if n.v == nil {
		return 0, nil
	}
	if !n.v.IsUint64() {
		return 0, errors.Overflow(errors.PhaseDecode, nil, n.v.String(), "uint64")
	}
	return n.v.Uint64(), nil
}

func (Nat) Kind() types.Kind   { return types.KindNat }
func (Nat) Type() types.Type   { return types.Nat }
func (n Nat) String() string   { return n.Big().String() }
func (n Nat) Equal(o Nat) bool { return n.Big().Cmp(o.Big()) == 0 }

// Int is an arbitrary-precision signed integer.
type Int struct {
	v *big.Int
}

// NewInt returns n as an Int.
func NewInt(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// IntFromBig copies n.
func IntFromBig(n *big.Int) Int {
	return Int{v: new(big.Int).Set(n)}
}

// Big returns a copy of the value.
func (i Int) Big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.v)
}

// Int64 returns the value if it fits.
func (i Int) Int64() (int64, error) {
	if i.v == nil {
		return 0, nil
	}
	if !i.v.IsInt64() {
		return 0, errors.Overflow(errors.PhaseDecode, nil, i.v.String(), "int64")
	}
	return i.v.Int64(), nil
}

func (Int) Kind() types.Kind { return types.KindInt }
func (Int) Type() types.Type { return types.Int }
func (i Int) String() string {
	b := i.Big()
	if b.Sign() >= 0 {
		return "+" + b.String()
	}
	return b.String()
}

// Principal is a raw principal identifier.
type Principal []byte

func (Principal) Kind() types.Kind { return types.KindPrincipal }
func (Principal) Type() types.Type { return types.Principal }
func (p Principal) String() string { return "principal " + strconv.Quote(principal.Text(p)) }

// Blob is a vec nat8 held as bytes.
type Blob []byte

func (Blob) Kind() types.Kind { return types.KindVec }
func (Blob) Type() types.Type { return types.Blob() }
func (b Blob) String() string {
	var s strings.Builder
	s.WriteString(`blob "`)
	for _, c := range b {
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			s.WriteByte(c)
			continue
		}
		s.WriteByte('\\')
		s.WriteString(strconv.FormatUint(uint64(c)>>4, 16))
		s.WriteString(strconv.FormatUint(uint64(c)&0xf, 16))
	}
	s.WriteByte('"')
	return s.String()
}

// Opt is an optional value; a nil Value is None.
type Opt struct {
	Value Value
}

// Some wraps v.
func Some(v Value) Opt { return Opt{Value: v} }

// None returns the absent value.
func None() Opt { return Opt{} }

func (o Opt) IsNone() bool    { return o.Value == nil }
func (Opt) Kind() types.Kind { return types.KindOpt }
func (o Opt) Type() types.Type {
	if o.Value == nil {
		return types.OptOf(types.Empty)
	}
	return types.OptOf(o.Value.Type())
}
func (o Opt) String() string {
	if o.Value == nil {
		return "null"
	}
	return "opt " + o.Value.String()
}

// Vec is a sequence of values of one type.
type Vec []Value

func (Vec) Kind() types.Kind { return types.KindVec }
func (v Vec) Type() types.Type {
	if len(v) == 0 {
		return types.VecOf(types.Empty)
	}
	return types.VecOf(v[0].Type())
}
func (v Vec) String() string {
	var b strings.Builder
	b.WriteString("vec {")
	for i, e := range v {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Field is a labelled member of a Record or the chosen case of a Variant.
type Field struct {
	Value Value
	Label types.Label
}

// F returns a field with a text label.
func F(name string, v Value) Field {
	return Field{Label: types.Named(name), Value: v}
}

// FID returns a field with a numeric label.
func FID(id uint32, v Value) Field {
	return Field{Label: types.ID(id), Value: v}
}

// Record is a set of fields sorted by key.
type Record struct {
	Fields []Field
}

// NewRecord sorts fields by key. Duplicate keys are an encode error.
func NewRecord(fields ...Field) (Record, error) {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b Field) int {
		switch ka, kb := a.Label.Key(), b.Label.Key(); {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Label.Key() == sorted[i-1].Label.Key() {
			return Record{}, errors.New(errors.PhaseEncode, errors.KindEncode).
				Key(sorted[i].Label.Key()).
				Detail("fields %s and %s share key %d", sorted[i-1].Label, sorted[i].Label, sorted[i].Label.Key()).
				Build()
		}
	}
	return Record{Fields: sorted}, nil
}

// MustRecord is NewRecord that panics on duplicate keys.
func MustRecord(fields ...Field) Record {
	r, err := NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tuple returns a record with fields labelled 0..n-1.
func Tuple(vals ...Value) Record {
	fields := make([]Field, len(vals))
	for i, v := range vals {
		fields[i] = FID(uint32(i), v)
	}
	return Record{Fields: fields}
}

// Lookup finds a field by key.
func (r Record) Lookup(key uint32) (Value, bool) {
	for _, f := range r.Fields {
		if f.Label.Key() == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Get finds a field by name, or nil.
func (r Record) Get(name string) Value {
	v, _ := r.Lookup(types.Hash(name))
	return v
}

func (Record) Kind() types.Kind { return types.KindRecord }
func (r Record) Type() types.Type {
	fields := make([]types.Field, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = types.Field{Label: f.Label, Type: f.Value.Type()}
	}
	t, err := types.NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return t
}
func (r Record) String() string {
	var b strings.Builder
	b.WriteString("record {")
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		if _, named := f.Label.Name(); named || f.Label.Key() != uint32(i) {
			b.WriteString(f.Label.String())
			b.WriteString(" = ")
		}
		b.WriteString(f.Value.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Variant is one chosen case.
type Variant struct {
	Field Field
}

// NewVariant returns the case name carrying v.
func NewVariant(name string, v Value) Variant {
	return Variant{Field: F(name, v)}
}

func (Variant) Kind() types.Kind { return types.KindVariant }
func (v Variant) Type() types.Type {
	return types.MustVariant(types.Field{Label: v.Field.Label, Type: v.Field.Value.Type()})
}
func (v Variant) String() string {
	if v.Field.Value.Kind() == types.KindNull {
		return "variant { " + v.Field.Label.String() + " }"
	}
	return "variant { " + v.Field.Label.String() + " = " + v.Field.Value.String() + " }"
}

// Service is a reference to an actor.
type Service struct {
	Principal []byte
}

func (Service) Kind() types.Kind { return types.KindService }
func (Service) Type() types.Type { return types.MustService() }
func (s Service) String() string {
	return "service " + strconv.Quote(principal.Text(s.Principal))
}

// Func is a reference to a method of an actor.
type Func struct {
	Service []byte
	Method  string
}

func (Func) Kind() types.Kind { return types.KindFunc }
func (Func) Type() types.Type { return &types.Func{} }
func (f Func) String() string {
	return "func " + strconv.Quote(principal.Text(f.Service)) + "." + f.Method
}
