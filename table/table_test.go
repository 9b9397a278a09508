package table

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	cerrors "github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/types"
)

// canisterStatus is the shape of a management canister status reply.
func canisterStatus() types.Type {
	return types.MustRecord(
		types.F("status", types.MustVariant(
			types.F("running", types.Null),
			types.F("stopping", types.Null),
			types.F("stopped", types.Null),
		)),
		types.F("module_hash", types.OptOf(types.Blob())),
		types.F("controller", types.Principal),
		types.F("settings", types.MustRecord(
			types.F("controller", types.Principal),
			types.F("controllers", types.VecOf(types.Principal)),
			types.F("compute_allocation", types.Nat),
			types.F("memory_allocation", types.Nat),
			types.F("freezing_threshold", types.Nat),
		)),
		types.F("memory_size", types.Nat),
		types.F("cycles", types.Nat),
		types.F("balance", types.VecOf(types.Tuple(types.Blob(), types.Nat))),
		types.F("freezing_threshold", types.Nat),
	)
}

const canisterStatusTable = "086c089cb1fa2568b2ceef2f01c0cff2717d9cbab69c0202ffdb81f7037d8daacd94087de3f9f5d90805" +
	"81cfaef40a076b038da4879b047ff496e4910b7fffdba5db0e7f6d036c020004017d6d7b6c059cb1fa2568c0cff2717d" +
	"d7e09b900206deebb5a90e7da882acc60f7d6d686e04"

func TestBuilderMatchesReferenceLayout(t *testing.T) {
	b := NewBuilder()
	ref, err := b.Add(canisterStatus())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ref != 0 {
		t.Errorf("ref = %d, want 0", ref)
	}
	if b.Len() != 8 {
		t.Fatalf("entries = %d, want 8", b.Len())
	}
	w := binary.NewWriter()
	b.Encode(w)
	if got := hex.EncodeToString(w.Bytes()); got != canisterStatusTable {
		t.Errorf("table mismatch\n got: %s\nwant: %s", got, canisterStatusTable)
	}
}

func TestBuilderPrimitive(t *testing.T) {
	b := NewBuilder()
	ref, err := b.Add(types.Text)
	if err != nil {
		t.Fatal(err)
	}
	if ref != OpText || b.Len() != 0 {
		t.Errorf("ref = %d, len = %d; want %d, 0", ref, b.Len(), OpText)
	}
}

func TestBuilderDedup(t *testing.T) {
	b := NewBuilder()
	r1, _ := b.Add(types.VecOf(types.Nat))
	r2, _ := b.Add(types.VecOf(types.Nat))
	r3, _ := b.Add(types.OptOf(types.VecOf(types.Nat)))
	if r1 != r2 {
		t.Errorf("equal types got refs %d and %d", r1, r2)
	}
	if b.Len() != 2 || r3 != 1 {
		t.Errorf("len = %d, r3 = %d; want 2, 1", b.Len(), r3)
	}
	opt := b.Table().Entry(1).(*types.Opt)
	if opt.Elem != (types.Ref{Index: 0}) {
		t.Errorf("opt elem = %v, want table0", opt.Elem)
	}
}

func TestBuilderRecursive(t *testing.T) {
	list := types.NewKnot("list")
	node := types.MustRecord(types.F("head", types.Int), types.F("tail", types.OptOf(list)))
	list.Set(node)

	b := NewBuilder()
	if _, err := b.Add(list); err != nil {
		t.Fatal(err)
	}
	// The same shape built from other nodes adds nothing.
	other := types.NewKnot("other")
	other.Set(types.MustRecord(types.F("head", types.Int), types.F("tail", types.OptOf(other))))
	if _, err := b.Add(other); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 2 {
		t.Fatalf("entries = %d, want 2", b.Len())
	}
	w := binary.NewWriter()
	b.Encode(w)
	// record { head : int; tail : opt table0 }; opt table0
	want := []byte{0x02, 0x6c, 0x02, 0xa0, 0xd2, 0xac, 0xa8, 0x04, 0x7c, 0x90, 0xed, 0xda, 0xe7, 0x04, 0x01, 0x6e, 0x00}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("table = %x, want %x", w.Bytes(), want)
	}
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name string
		t    types.Type
	}{
		{"nil", nil},
		{"untied knot", types.OptOf(types.NewKnot("x"))},
		{"table ref", types.VecOf(types.Ref{Index: 0})},
		{"service with non-func method", types.MustService(types.Method{Name: "m", Type: types.Nat})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			_, err := b.Add(tt.t)
			if !errors.Is(err, cerrors.ErrInvalidData) {
				t.Errorf("err = %v, want invalid_data", err)
			}
			if b.Len() != 0 {
				t.Errorf("failed Add kept %d entries", b.Len())
			}
		})
	}
}

func TestBuilderRollback(t *testing.T) {
	b := NewBuilder()
	point := types.MustRecord(types.F("x", types.Nat))
	if _, err := b.Add(point); err != nil {
		t.Fatal(err)
	}
	mark := b.Mark()
	shared := types.OptOf(point)
	if _, err := b.Add(types.VecOf(shared)); err != nil {
		t.Fatal(err)
	}
	b.Rollback(mark)
	if b.Len() != 1 {
		t.Fatalf("entries = %d, want 1", b.Len())
	}

	// Slots released by Rollback are assigned again from the mark.
	ref, err := b.Add(shared)
	if err != nil {
		t.Fatal(err)
	}
	if ref != 1 {
		t.Errorf("ref = %d, want 1", ref)
	}
	if ref, _ := b.Add(point); ref != 0 {
		t.Errorf("kept entry moved to %d", ref)
	}
}

func TestParseRoundTrip(t *testing.T) {
	data, _ := hex.DecodeString(canisterStatusTable)
	tbl, err := Parse(binary.NewReader(data), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Len() != 8 {
		t.Fatalf("Len = %d, want 8", tbl.Len())
	}
	out, _ := tbl.MarshalBinary()
	if !bytes.Equal(out, data) {
		t.Errorf("re-encoded table differs\n got: %x\nwant: %x", out, data)
	}
	rec := tbl.Entry(0).(*types.Record)
	f, ok := rec.Field(types.Hash("status"))
	if !ok || f.Type != (types.Ref{Index: 1}) {
		t.Errorf("status field = %v, %v", f, ok)
	}
	entry, idx := tbl.Resolve(f.Type)
	if idx != 1 || entry.Kind() != types.KindVariant {
		t.Errorf("Resolve = %v, %d", entry, idx)
	}
}

func TestParseFuncAndService(t *testing.T) {
	fn := &types.Func{Args: []types.Type{types.Text}, Rets: []types.Type{types.Nat}, Modes: []types.FuncMode{types.ModeQuery}}
	svc := types.MustService(types.Method{Name: "get", Type: fn}, types.Method{Name: "put", Type: &types.Func{Args: []types.Type{types.Nat}}})

	b := NewBuilder()
	if _, err := b.Add(svc); err != nil {
		t.Fatal(err)
	}
	data, _ := b.Table().MarshalBinary()
	tbl, err := Parse(binary.NewReader(data), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	s := tbl.Entry(0).(*types.Service)
	m, ok := s.Method("get")
	if !ok {
		t.Fatal("method get missing")
	}
	got, _ := tbl.Resolve(m.Type)
	if f := got.(*types.Func); len(f.Modes) != 1 || f.Modes[0] != types.ModeQuery {
		t.Errorf("modes = %v", f.Modes)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"unknown opcode", []byte{0x01, 0x50}, cerrors.ErrMalformedTable},
		{"primitive entry", []byte{0x01, 0x7d}, cerrors.ErrMalformedTable},
		{"index as opcode", []byte{0x01, 0x00}, cerrors.ErrMalformedTable},
		{"reference out of range", []byte{0x01, 0x6d, 0x01}, cerrors.ErrMalformedTable},
		{"composite opcode as reference", []byte{0x01, 0x6d, 0x6c}, cerrors.ErrMalformedTable},
		{"unsorted keys", []byte{0x01, 0x6c, 0x02, 0x02, 0x7d, 0x01, 0x7d}, cerrors.ErrMalformedTable},
		{"duplicate keys", []byte{0x01, 0x6b, 0x02, 0x01, 0x7f, 0x01, 0x7f}, cerrors.ErrMalformedTable},
		{"bad annotation", []byte{0x01, 0x6a, 0x00, 0x00, 0x01, 0x04}, cerrors.ErrMalformedTable},
		{"method not a func", []byte{0x02, 0x69, 0x01, 0x01, 'm', 0x01, 0x6d, 0x7d}, cerrors.ErrMalformedTable},
		{"method primitive", []byte{0x01, 0x69, 0x01, 0x01, 'm', 0x7d}, cerrors.ErrMalformedTable},
		{"unsorted methods", []byte{0x02, 0x69, 0x02, 0x01, 'b', 0x01, 0x01, 'a', 0x01, 0x6a, 0x00, 0x00, 0x00}, cerrors.ErrMalformedTable},
		{"truncated", []byte{0x02, 0x6d}, cerrors.ErrUnexpectedEOF},
		{"count beyond input", []byte{0x01, 0x6c, 0x7f}, cerrors.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(binary.NewReader(tt.data), 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	_, err := Parse(binary.NewReader([]byte{0x03, 0x6d, 0x7d, 0x6d, 0x7d, 0x6d, 0x7d}), 2)
	if !errors.Is(err, cerrors.ErrLimitExceeded) {
		t.Errorf("err = %v, want limit_exceeded", err)
	}
}

func TestOpcodes(t *testing.T) {
	for k := types.KindNull; k <= types.KindService; k++ {
		op, ok := Opcode(k)
		if !ok {
			t.Fatalf("no opcode for %s", k)
		}
		back, ok := KindOf(op)
		if !ok || back != k {
			t.Errorf("KindOf(%d) = %s, want %s", op, back, k)
		}
	}
	if _, ok := KindOf(-25); ok {
		t.Error("-25 should be unknown")
	}
	if _, ok := Opcode(types.KindKnot); ok {
		t.Error("knot has no opcode")
	}
}
