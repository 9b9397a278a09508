package types

import (
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/candid-go/errors"
)

// Type is one node of a type graph.
type Type interface {
	Kind() Kind
	String() string
}

// Primitive is a type without children.
type Primitive Kind

func (p Primitive) Kind() Kind     { return Kind(p) }
func (p Primitive) String() string { return Kind(p).String() }

// Primitive types.
var (
	Null      Type = Primitive(KindNull)
	Bool      Type = Primitive(KindBool)
	Nat       Type = Primitive(KindNat)
	Int       Type = Primitive(KindInt)
	Nat8      Type = Primitive(KindNat8)
	Nat16     Type = Primitive(KindNat16)
	Nat32     Type = Primitive(KindNat32)
	Nat64     Type = Primitive(KindNat64)
	Int8      Type = Primitive(KindInt8)
	Int16     Type = Primitive(KindInt16)
	Int32     Type = Primitive(KindInt32)
	Int64     Type = Primitive(KindInt64)
	Float32   Type = Primitive(KindFloat32)
	Float64   Type = Primitive(KindFloat64)
	Text      Type = Primitive(KindText)
	Reserved  Type = Primitive(KindReserved)
	Empty     Type = Primitive(KindEmpty)
	Principal Type = Primitive(KindPrincipal)
)

// Opt is an optional value of Elem.
type Opt struct {
	Elem Type
}

func OptOf(elem Type) *Opt { return &Opt{Elem: elem} }

func (*Opt) Kind() Kind { return KindOpt }

func (o *Opt) String() string { return "opt " + o.Elem.String() }

// Vec is a sequence of Elem.
type Vec struct {
	Elem Type
}

func VecOf(elem Type) *Vec { return &Vec{Elem: elem} }

// Blob returns vec nat8.
func Blob() *Vec { return &Vec{Elem: Nat8} }

func (*Vec) Kind() Kind { return KindVec }

func (v *Vec) String() string {
	if p, ok := v.Elem.(Primitive); ok && Kind(p) == KindNat8 {
		return "blob"
	}
	return "vec " + v.Elem.String()
}

// Field is a labelled member of a Record or Variant.
type Field struct {
	Type  Type
	Label Label
}

// F returns a field with a text label.
func F(name string, t Type) Field {
	return Field{Label: Named(name), Type: t}
}

// FID returns a field with a numeric label.
func FID(id uint32, t Type) Field {
	return Field{Label: ID(id), Type: t}
}

// Key returns the field's label key.
func (f Field) Key() uint32 { return f.Label.Key() }

// Record is a product type with members sorted by key.
type Record struct {
	fields []Field
}

// NewRecord sorts fields by key. Two fields with the same key are an error,
// including a text label whose hash equals a numeric label.
func NewRecord(fields ...Field) (*Record, error) {
	sorted, err := sortFields("record", fields)
	if err != nil {
		return nil, err
	}
	return &Record{fields: sorted}, nil
}

// MustRecord is NewRecord that panics on duplicate keys.
func MustRecord(fields ...Field) *Record {
	r, err := NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tuple returns a record whose fields are labelled 0..n-1.
func Tuple(elems ...Type) *Record {
	fields := make([]Field, len(elems))
	for i, t := range elems {
		fields[i] = FID(uint32(i), t)
	}
	return &Record{fields: fields}
}

func (*Record) Kind() Kind { return KindRecord }

// Fields returns the members in key order. The slice must not be modified.
func (r *Record) Fields() []Field { return r.fields }

// Field looks a member up by key.
func (r *Record) Field(key uint32) (Field, bool) {
	return lookupField(r.fields, key)
}

// Index returns the position of the field with key.
func (r *Record) Index(key uint32) (int, bool) {
	return indexField(r.fields, key)
}

// IsTuple reports whether the fields are labelled 0..n-1.
func (r *Record) IsTuple() bool {
	for i, f := range r.fields {
		if _, named := f.Label.Name(); named || f.Key() != uint32(i) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("record {")
	tuple := r.IsTuple()
	for i, f := range r.fields {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		if !tuple {
			b.WriteString(f.Label.String())
			b.WriteString(" : ")
		}
		b.WriteString(f.Type.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Variant is a sum type with members sorted by key.
type Variant struct {
	fields []Field
}

// NewVariant sorts cases by key; duplicate keys are an error.
func NewVariant(fields ...Field) (*Variant, error) {
	sorted, err := sortFields("variant", fields)
	if err != nil {
		return nil, err
	}
	return &Variant{fields: sorted}, nil
}

// MustVariant is NewVariant that panics on duplicate keys.
func MustVariant(fields ...Field) *Variant {
	v, err := NewVariant(fields...)
	if err != nil {
		panic(err)
	}
	return v
}

func (*Variant) Kind() Kind { return KindVariant }

// Fields returns the cases in key order. The slice must not be modified.
func (v *Variant) Fields() []Field { return v.fields }

// Field looks a case up by key.
func (v *Variant) Field(key uint32) (Field, bool) {
	return lookupField(v.fields, key)
}

// Index returns the wire index of the case with key.
func (v *Variant) Index(key uint32) (int, bool) {
	return indexField(v.fields, key)
}

func (v *Variant) String() string {
	var b strings.Builder
	b.WriteString("variant {")
	for i, f := range v.fields {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		b.WriteString(f.Label.String())
		if f.Type.Kind() != KindNull {
			b.WriteString(" : ")
			b.WriteString(f.Type.String())
		}
	}
	b.WriteString(" }")
	return b.String()
}

// FuncMode is a function annotation.
type FuncMode uint8

const (
	ModeQuery          FuncMode = 1
	ModeOneway         FuncMode = 2
	ModeCompositeQuery FuncMode = 3
)

func (m FuncMode) String() string {
	switch m {
	case ModeQuery:
		return "query"
	case ModeOneway:
		return "oneway"
	case ModeCompositeQuery:
		return "composite_query"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Func is a function reference type.
type Func struct {
	Args  []Type
	Rets  []Type
	Modes []FuncMode
}

func (*Func) Kind() Kind { return KindFunc }

func (f *Func) String() string {
	var b strings.Builder
	b.WriteString("func ")
	writeTypeList(&b, f.Args)
	b.WriteString(" -> ")
	writeTypeList(&b, f.Rets)
	for _, m := range f.Modes {
		b.WriteByte(' ')
		b.WriteString(m.String())
	}
	return b.String()
}

// Method is a named service entry; Type resolves to a *Func.
type Method struct {
	Type Type
	Name string
}

// Service is an actor reference type with methods sorted by name.
type Service struct {
	methods []Method
}

// NewService sorts methods by name; duplicate names are an error.
func NewService(methods ...Method) (*Service, error) {
	sorted := slices.Clone(methods)
	slices.SortStableFunc(sorted, func(a, b Method) int { return strings.Compare(a.Name, b.Name) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
				Detail("service method %q declared twice", sorted[i].Name).
				Build()
		}
	}
	return &Service{methods: sorted}, nil
}

// MustService is NewService that panics on duplicate names.
func MustService(methods ...Method) *Service {
	s, err := NewService(methods...)
	if err != nil {
		panic(err)
	}
	return s
}

func (*Service) Kind() Kind { return KindService }

// Methods returns the methods in name order. The slice must not be modified.
func (s *Service) Methods() []Method { return s.methods }

// Method looks a method up by name.
func (s *Service) Method(name string) (Method, bool) {
	i, ok := slices.BinarySearchFunc(s.methods, name, func(m Method, n string) int {
		return strings.Compare(m.Name, n)
	})
	if !ok {
		return Method{}, false
	}
	return s.methods[i], true
}

func (s *Service) String() string {
	var b strings.Builder
	b.WriteString("service {")
	for i, m := range s.methods {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(m.Name))
		b.WriteString(" : ")
		b.WriteString(m.Type.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Knot is a named placeholder for a recursive type. Create it, use it inside
// the type it stands for, then Set that type.
type Knot struct {
	target Type
	Name   string
}

func NewKnot(name string) *Knot { return &Knot{Name: name} }

// Set ties the knot. A knot is tied once.
func (k *Knot) Set(t Type) {
	if k.target != nil {
		panic("types: knot " + k.Name + " already set")
	}
	k.target = t
}

// Target returns the type the knot stands for, or nil before Set.
func (k *Knot) Target() Type { return k.target }

func (*Knot) Kind() Kind { return KindKnot }

func (k *Knot) String() string { return k.Name }

// Ref is a reference to a type-table entry.
type Ref struct {
	Index int
}

func (Ref) Kind() Kind { return KindRef }

func (r Ref) String() string { return "table" + strconv.Itoa(r.Index) }

// Unknot follows knots until it reaches a concrete type. It returns nil for an
// unset knot or a knot that only leads to other knots.
func Unknot(t Type) Type {
	for range 64 {
		k, ok := t.(*Knot)
		if !ok {
			return t
		}
		if k.target == nil {
			return nil
		}
		t = k.target
	}
	return nil
}

func sortFields(what string, fields []Field) ([]Field, error) {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b Field) int { return cmpKey(a.Key(), b.Key()) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key() == sorted[i-1].Key() {
			return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
				Key(sorted[i].Key()).
				Detail("%s labels %s and %s share key %d", what, sorted[i-1].Label, sorted[i].Label, sorted[i].Key()).
				Build()
		}
	}
	return sorted, nil
}

func indexField(fields []Field, key uint32) (int, bool) {
	return slices.BinarySearchFunc(fields, key, func(f Field, k uint32) int {
		return cmpKey(f.Key(), k)
	})
}

func lookupField(fields []Field, key uint32) (Field, bool) {
	i, ok := indexField(fields, key)
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}

func cmpKey(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func writeTypeList(b *strings.Builder, ts []Type) {
	b.WriteByte('(')
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
}
