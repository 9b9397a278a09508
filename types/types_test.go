package types

import (
	"errors"
	"testing"

	cerrors "github.com/wippyai/candid-go/errors"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"controller", 79599772},
		{"status", 100394802},
		{"freezing_threshold", 238856128},
		{"balance", 596483356},
		{"memory_size", 1054895615},
		{"cycles", 2190693645},
		{"settings", 2336062691},
		{"module_hash", 2928387969},
		{"running", 3949555199},
		{"stopped", 1130484237},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.name); got != tt.want {
				t.Errorf("Hash(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestLabelString(t *testing.T) {
	tests := []struct {
		l    Label
		want string
	}{
		{Named("foo"), "foo"},
		{Named("with space"), `"with space"`},
		{ID(7), "7"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRecordSortsByKey(t *testing.T) {
	a := MustRecord(F("status", Nat), F("controller", Principal), FID(1, Text))
	b := MustRecord(FID(1, Text), F("controller", Principal), F("status", Nat))

	fs := a.Fields()
	for i := 1; i < len(fs); i++ {
		if fs[i-1].Key() >= fs[i].Key() {
			t.Fatalf("fields not sorted: %d before %d", fs[i-1].Key(), fs[i].Key())
		}
	}
	if !Equal(a, b) {
		t.Error("permuted records should be equal")
	}
	if Identity(a) != Identity(b) {
		t.Error("permuted records should share identity")
	}
	if f, ok := a.Field(Hash("status")); !ok || f.Type != Nat {
		t.Errorf("Field(status) = %v, %v", f, ok)
	}
	if _, ok := a.Field(2); ok {
		t.Error("Field(2) should be absent")
	}
}

func TestRecordDuplicateKey(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"same name", []Field{F("x", Nat), F("x", Int)}},
		{"name collides with id", []Field{F("a", Nat), FID(97, Text)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.fields...)
			if !errors.Is(err, cerrors.ErrInvalidData) {
				t.Fatalf("NewRecord error = %v, want invalid_data", err)
			}
			if _, err := NewVariant(tt.fields...); err == nil {
				t.Fatal("NewVariant should reject duplicate keys")
			}
		})
	}
}

func TestServiceSortsByName(t *testing.T) {
	f := &Func{Args: []Type{Text}, Modes: []FuncMode{ModeQuery}}
	s := MustService(Method{Name: "z", Type: f}, Method{Name: "a", Type: f})
	if got := s.Methods()[0].Name; got != "a" {
		t.Errorf("first method = %q, want a", got)
	}
	if _, ok := s.Method("z"); !ok {
		t.Error("Method(z) missing")
	}
	if _, err := NewService(Method{Name: "a", Type: f}, Method{Name: "a", Type: f}); err == nil {
		t.Error("duplicate method names should fail")
	}
}

func TestVariantIndex(t *testing.T) {
	v := MustVariant(F("stopped", Null), F("stopping", Null), F("running", Null))
	idx, ok := v.Index(Hash("running"))
	if !ok || idx != 2 {
		t.Errorf("Index(running) = %d, %v, want 2", idx, ok)
	}
}

func TestString(t *testing.T) {
	list := NewKnot("list")
	list.Set(OptOf(MustRecord(F("head", Int), F("tail", list))))

	tests := []struct {
		t    Type
		want string
	}{
		{Nat, "nat"},
		{Blob(), "blob"},
		{VecOf(Text), "vec text"},
		{OptOf(Principal), "opt principal"},
		{Tuple(Nat, Text), "record { nat; text }"},
		{MustVariant(F("ok", Null)), "variant { ok }"},
		{&Func{Args: []Type{Text}, Rets: []Type{Nat}, Modes: []FuncMode{ModeQuery}}, "func (text) -> (nat) query"},
		{list.Target(), "opt record { head : int; tail : list }"},
		{Ref{Index: 3}, "table3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.t.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnknot(t *testing.T) {
	k := NewKnot("k")
	if Unknot(k) != nil {
		t.Error("unset knot should unknot to nil")
	}
	k2 := NewKnot("k2")
	k2.Set(k)
	k.Set(Nat)
	if Unknot(k2) != Nat {
		t.Error("chained knots should resolve")
	}
	loop := NewKnot("loop")
	loop.Set(loop)
	if Unknot(loop) != nil {
		t.Error("knot cycle should unknot to nil")
	}
}

func linkedList(name string) Type {
	k := NewKnot(name)
	k.Set(OptOf(MustRecord(F("head", Int), F("tail", k))))
	return k
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"primitives", Nat, Nat, true},
		{"different primitives", Nat, Int, false},
		{"opt", OptOf(Text), OptOf(Text), true},
		{"opt vs vec", OptOf(Text), VecOf(Text), false},
		{"different keys", MustRecord(F("a", Nat)), MustRecord(F("b", Nat)), false},
		{"id vs name same key", MustRecord(F("a", Nat)), MustRecord(FID(97, Nat)), true},
		{"recursive", linkedList("a"), linkedList("b"), true},
		{"knot vs unfolding", linkedList("a"), Unknot(linkedList("b")), true},
		{
			"func modes",
			&Func{Modes: []FuncMode{ModeQuery}},
			&Func{Modes: []FuncMode{ModeOneway}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	if Identity(linkedList("a")) != Identity(linkedList("b")) {
		t.Error("same recursive shape should share identity")
	}
	if Identity(VecOf(Nat)) == Identity(OptOf(Nat)) {
		t.Error("vec and opt should differ")
	}
	if Identity(Tuple(Nat, Text)) == Identity(Tuple(Text, Nat)) {
		t.Error("tuple order matters")
	}

	// Fingerprints key maps; numeric labels stay distinct from them.
	seen := map[Fingerprint]Label{Identity(MustRecord(FID(7, Nat))): ID(7)}
	if l, ok := seen[Identity(MustRecord(FID(7, Nat)))]; !ok || l.Key() != 7 {
		t.Errorf("lookup by fingerprint = %v, %v", l, ok)
	}

	// Recursive references to an outer node differ from references to an inner one.
	outer := NewKnot("outer")
	outer.Set(OptOf(VecOf(outer)))
	inner := NewKnot("inner")
	v := VecOf(inner)
	inner.Set(v)
	if Identity(outer) == Identity(OptOf(inner)) {
		t.Error("backrefs at different depths should differ")
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindPrincipal.IsPrimitive() || KindOpt.IsPrimitive() {
		t.Error("IsPrimitive boundary wrong")
	}
	if !KindService.IsComposite() || KindKnot.IsComposite() {
		t.Error("IsComposite boundary wrong")
	}
	if KindNat32.FixedSize() != 4 || KindNat.FixedSize() != 0 {
		t.Error("FixedSize wrong")
	}
	if KindInt16.Bits() != 16 {
		t.Error("Bits wrong")
	}
}
