package candid

import (
	"encoding/hex"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cerrors "github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/principal"
	"github.com/wippyai/candid-go/types"
	"github.com/wippyai/candid-go/values"
)

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

const canisterStatusMessage = "4449444c" +
	"086c089cb1fa2568b2ceef2f01c0cff2717d9cbab69c0202ffdb81f7037d8daacd94087de3f9f5d90805" +
	"81cfaef40a076b038da4879b047ff496e4910b7fffdba5db0e7f6d036c020004017d6d7b6c059cb1fa2568c0cff2717d" +
	"d7e09b900206deebb5a90e7da882acc60f7d6d686e04" +
	"0100" +
	"010a00000000000000010101027b01010080a0e5b9c291010080a0e5b9c29101010a000000000000000101017b01010a00000000000000010101000000"

func canisterStatusValue() values.Value {
	controller := values.Principal{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}
	cycles := values.NewNat(5_000_000_000_000)
	return values.MustRecord(
		values.F("status", values.NewVariant("running", values.Null{})),
		values.F("module_hash", values.None()),
		values.F("controller", controller),
		values.F("settings", values.MustRecord(
			values.F("controller", controller),
			values.F("controllers", values.Vec{controller}),
			values.F("compute_allocation", values.NewNat(0)),
			values.F("memory_allocation", values.NewNat(0)),
			values.F("freezing_threshold", values.NewNat(123)),
		)),
		values.F("memory_size", values.NewNat(0)),
		values.F("cycles", cycles),
		values.F("balance", values.Vec{values.Tuple(values.Blob{0}, cycles)}),
		values.F("freezing_threshold", values.NewNat(123)),
	)
}

func TestCanisterStatusEncoding(t *testing.T) {
	data := mustSerialize(t, []values.Value{canisterStatusValue()}, []types.Type{canisterStatus()})
	if got := hex.EncodeToString(data); got != canisterStatusMessage {
		t.Errorf("encoding mismatch\n got: %s\nwant: %s", got, canisterStatusMessage)
	}
	if len(data) != 179 {
		t.Errorf("len = %d, want 179", len(data))
	}
}

func TestCanisterStatusDecoding(t *testing.T) {
	got, err := Deserialize(mustHex(t, canisterStatusMessage), []types.Type{canisterStatus()})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !values.Equal(got[0], canisterStatusValue()) {
		t.Errorf("got %s", got[0])
	}

	r := got[0].(values.Record)
	if p := principal.Text(r.Get("controller").(values.Principal)); p != "rrkah-fqaaa-aaaaa-aaaaq-cai" {
		t.Errorf("controller = %s", p)
	}

	// A client that only cares about the status and cycles.
	narrow := types.MustRecord(
		types.F("status", types.MustVariant(
			types.F("running", types.Null),
			types.F("stopping", types.Null),
			types.F("stopped", types.Null),
			types.F("upgrading", types.Null),
		)),
		types.F("cycles", types.Int),
		types.F("idle_cycles_burned_per_day", types.OptOf(types.Nat)),
	)
	got, err = Deserialize(mustHex(t, canisterStatusMessage), []types.Type{narrow})
	if err != nil {
		t.Fatalf("narrow view: %v", err)
	}
	want := values.MustRecord(
		values.F("status", values.NewVariant("running", values.Null{})),
		values.F("cycles", values.NewInt(5_000_000_000_000)),
		values.F("idle_cycles_burned_per_day", values.None()),
	)
	if !values.Equal(got[0], want) {
		t.Errorf("narrow view = %s, want %s", got[0], want)
	}
}

type account struct {
	owner   principal.Principal
	balance uint64
	tags    []string
}

func (account) IDLType() types.Type {
	return types.MustRecord(
		types.F("owner", types.Principal),
		types.F("balance", types.Nat64),
		types.F("tags", types.VecOf(types.Text)),
	)
}

func (a account) MarshalIDL(w *ValueWriter) error {
	tags := make(values.Vec, len(a.tags))
	for i, tag := range a.tags {
		tags[i] = values.Text(tag)
	}
	return w.WriteRecord(
		values.F("owner", values.Principal(a.owner.Bytes())),
		values.F("balance", values.Nat64(a.balance)),
		values.F("tags", tags),
	)
}

func (a *account) UnmarshalIDL(v values.Value) error {
	r, ok := v.(values.Record)
	if !ok {
		return errors.New("account: not a record")
	}
	owner, err := principal.FromBytes(r.Get("owner").(values.Principal))
	if err != nil {
		return err
	}
	a.owner = owner
	a.balance = uint64(r.Get("balance").(values.Nat64))
	a.tags = a.tags[:0]
	for _, tag := range r.Get("tags").(values.Vec) {
		a.tags = append(a.tags, string(tag.(values.Text)))
	}
	return nil
}

type twice struct{}

func (twice) IDLType() types.Type { return types.Bool }
func (twice) MarshalIDL(w *ValueWriter) error {
	if err := w.Write(values.Bool(true)); err != nil {
		return err
	}
	return w.Write(values.Bool(false))
}

type silent struct{}

func (silent) IDLType() types.Type            { return types.Bool }
func (silent) MarshalIDL(*ValueWriter) error { return nil }

func TestMarshaler(t *testing.T) {
	in := account{owner: principal.Anonymous(), balance: 42, tags: []string{"a", "b"}}
	data, err := Encode(in, values.Text("memo"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	d, err := NewDecoder(data)
	if err != nil {
		t.Fatal(err)
	}
	var out account
	if err := d.Unmarshal(&out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.owner != in.owner || out.balance != in.balance || len(out.tags) != 2 || out.tags[1] != "b" {
		t.Errorf("got %+v, want %+v", out, in)
	}
	if err := d.Done(); err != nil {
		t.Errorf("Done: %v", err)
	}

	for _, m := range []Marshaler{twice{}, silent{}} {
		if err := NewEncoder().Marshal(m); !errors.Is(err, cerrors.ErrEncode) {
			t.Errorf("%T: err = %v, want encode_mismatch", m, err)
		}
	}
}

func TestDecodeLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	data := mustSerialize(t, []values.Value{values.Text("x")}, []types.Type{types.Text})
	if _, err := Deserialize(data, []types.Type{types.OptOf(types.Nat)}); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("opt value degraded to none").All()
	if len(entries) != 1 {
		t.Fatalf("got %d degrade entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["expected"]; got != "opt nat" {
		t.Errorf("expected field = %v", got)
	}
}
