package candid

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/table"
	"github.com/wippyai/candid-go/types"
	"github.com/wippyai/candid-go/values"
)

// Encoder accumulates arguments of one message. It is not safe for
// concurrent use.
type Encoder struct {
	builder *table.Builder
	body    *binary.Writer
	args    []int64
}

// NewEncoder creates an Encoder with an empty argument list.
func NewEncoder() *Encoder {
	return &Encoder{
		builder: table.NewBuilder(),
		body:    binary.NewWriter(),
	}
}

// Arg appends v encoded as t. On error the Encoder is left unchanged: no
// value is written and no table entry of t is kept.
func (e *Encoder) Arg(v values.Value, t types.Type) error {
	mark := e.builder.Mark()
	ref, err := e.builder.Add(t)
	if err != nil {
		return err
	}
	w := binary.NewWriter()
	if err := writeValue(w, v, t, argPath(len(e.args))); err != nil {
		e.builder.Rollback(mark)
		return err
	}
	e.body.WriteBytes(w.Bytes())
	e.args = append(e.args, ref)
	return nil
}

// Marshal appends the value m produces, encoded as m.IDLType().
func (e *Encoder) Marshal(m Marshaler) error {
	var w ValueWriter
	if err := m.MarshalIDL(&w); err != nil {
		return err
	}
	if w.Value() == nil {
		return errors.New(errors.PhaseEncode, errors.KindEncode).
			Detail("MarshalIDL wrote no value").
			Build()
	}
	return e.Arg(w.Value(), m.IDLType())
}

// Bytes returns the complete message: header, type table, argument types and
// values.
func (e *Encoder) Bytes() []byte {
	w := binary.NewWriter()
	w.WriteMagic()
	e.builder.Encode(w)
	w.WriteULEB(uint64(len(e.args)))
	for _, ref := range e.args {
		w.WriteSLEB(ref)
	}
	w.WriteBytes(e.body.Bytes())

	Logger().Debug("encoded message",
		zap.Int("args", len(e.args)),
		zap.Int("table_entries", e.builder.Len()),
		zap.Int("bytes", w.Len()))
	return w.Bytes()
}

// Serialize encodes vals[i] as ts[i].
func Serialize(vals []values.Value, ts []types.Type) ([]byte, error) {
	if len(vals) != len(ts) {
		return nil, errors.New(errors.PhaseEncode, errors.KindEncode).
			Detail("%d values for %d types", len(vals), len(ts)).
			Build()
	}
	e := NewEncoder()
	for i := range vals {
		if err := e.Arg(vals[i], ts[i]); err != nil {
			return nil, err
		}
	}
	return e.Bytes(), nil
}

// Encode encodes each argument, which must be a Marshaler or a values.Value.
// Plain values are encoded as their inferred type.
func Encode(args ...any) ([]byte, error) {
	e := NewEncoder()
	for i, a := range args {
		var err error
		switch x := a.(type) {
		case Marshaler:
			err = e.Marshal(x)
		case values.Value:
			err = e.Arg(x, x.Type())
		default:
			err = errors.New(errors.PhaseEncode, errors.KindEncode).
				Path("arg[" + strconv.Itoa(i) + "]").
				Detail("cannot encode %T", a).
				Build()
		}
		if err != nil {
			return nil, err
		}
	}
	return e.Bytes(), nil
}

func writeValue(w *binary.Writer, v values.Value, t types.Type, path *valuePath) error {
	ty := types.Unknot(t)
	if v == nil {
		return errors.Encode(path.slice(), ty.String(), "nil")
	}
	mismatch := func() error {
		return errors.Encode(path.slice(), ty.String(), v.String())
	}

	switch ty.Kind() {
	case types.KindNull:
		if _, ok := v.(values.Null); !ok {
			return mismatch()
		}
	case types.KindReserved:
		switch v.(type) {
		case values.Reserved, values.Null:
		default:
			return mismatch()
		}
	case types.KindEmpty:
		return errors.Encode(path.slice(), "empty", v.String())
	case types.KindBool:
		x, ok := v.(values.Bool)
		if !ok {
			return mismatch()
		}
		w.WriteBool(bool(x))
	case types.KindNat:
		x, ok := v.(values.Nat)
		if !ok {
			return mismatch()
		}
		w.WriteNat(x.Big())
	case types.KindInt:
		x, ok := v.(values.Int)
		if !ok {
			return mismatch()
		}
		w.WriteInt(x.Big())
	case types.KindNat8:
		x, ok := v.(values.Nat8)
		if !ok {
			return mismatch()
		}
		w.Byte(byte(x))
	case types.KindNat16:
		x, ok := v.(values.Nat16)
		if !ok {
			return mismatch()
		}
		w.WriteU16LE(uint16(x))
	case types.KindNat32:
		x, ok := v.(values.Nat32)
		if !ok {
			return mismatch()
		}
		w.WriteU32LE(uint32(x))
	case types.KindNat64:
		x, ok := v.(values.Nat64)
		if !ok {
			return mismatch()
		}
		w.WriteU64LE(uint64(x))
	case types.KindInt8:
		x, ok := v.(values.Int8)
		if !ok {
			return mismatch()
		}
		w.Byte(byte(x))
	case types.KindInt16:
		x, ok := v.(values.Int16)
		if !ok {
			return mismatch()
		}
		w.WriteU16LE(uint16(x))
	case types.KindInt32:
		x, ok := v.(values.Int32)
		if !ok {
			return mismatch()
		}
		w.WriteU32LE(uint32(x))
	case types.KindInt64:
		x, ok := v.(values.Int64)
		if !ok {
			return mismatch()
		}
		w.WriteU64LE(uint64(x))
	case types.KindFloat32:
		x, ok := v.(values.Float32)
		if !ok {
			return mismatch()
		}
		w.WriteF32(float32(x))
	case types.KindFloat64:
		x, ok := v.(values.Float64)
		if !ok {
			return mismatch()
		}
		w.WriteF64(float64(x))
	case types.KindText:
		x, ok := v.(values.Text)
		if !ok {
			return mismatch()
		}
		w.WriteText(string(x))
	case types.KindPrincipal:
		x, ok := v.(values.Principal)
		if !ok {
			return mismatch()
		}
		w.WritePrincipal(x)

	case types.KindOpt:
		elem := ty.(*types.Opt).Elem
		switch x := v.(type) {
		case values.Opt:
			if x.IsNone() {
				w.Byte(0)
				return nil
			}
			w.Byte(1)
			return writeValue(w, x.Value, elem, path)
		case values.Null:
			w.Byte(0)
		default:
			return mismatch()
		}

	case types.KindVec:
		elem := ty.(*types.Vec).Elem
		switch x := v.(type) {
		case values.Blob:
			if k := types.Unknot(elem).Kind(); k != types.KindNat8 {
				return mismatch()
			}
			w.WriteBlob(x)
		case values.Vec:
			w.WriteULEB(uint64(len(x)))
			for i, el := range x {
				if err := writeValue(w, el, elem, path.index(i)); err != nil {
					return err
				}
			}
		default:
			return mismatch()
		}

	case types.KindRecord:
		x, ok := v.(values.Record)
		if !ok {
			return mismatch()
		}
		return writeRecord(w, x, ty.(*types.Record), path)

	case types.KindVariant:
		x, ok := v.(values.Variant)
		if !ok || x.Field.Value == nil {
			return mismatch()
		}
		vt := ty.(*types.Variant)
		idx, ok := vt.Index(x.Field.Label.Key())
		if !ok {
			return errors.New(errors.PhaseEncode, errors.KindEncode).
				Path(path.slice()...).
				Expected(vt.String()).
				Key(x.Field.Label.Key()).
				Detail("case %s is not in the type", x.Field.Label).
				Build()
		}
		w.WriteULEB(uint64(idx))
		f := vt.Fields()[idx]
		return writeValue(w, x.Field.Value, f.Type, path.child(f.Label.String()))

	case types.KindFunc:
		x, ok := v.(values.Func)
		if !ok {
			return mismatch()
		}
		w.Byte(1)
		w.WritePrincipal(x.Service)
		w.WriteText(x.Method)

	case types.KindService:
		x, ok := v.(values.Service)
		if !ok {
			return mismatch()
		}
		w.WritePrincipal(x.Principal)

	default:
		return mismatch()
	}
	return nil
}

// writeRecord writes fields in type order. Fields the value lacks are
// allowed only when their type is opt, null or reserved; fields the type
// lacks are an error.
func writeRecord(w *binary.Writer, r values.Record, rt *types.Record, path *valuePath) error {
	matched := 0
	for _, f := range rt.Fields() {
		fpath := path.child(f.Label.String())
		v, ok := r.Lookup(f.Key())
		if ok {
			matched++
			if err := writeValue(w, v, f.Type, fpath); err != nil {
				return err
			}
			continue
		}
		switch types.Unknot(f.Type).Kind() {
		case types.KindOpt:
			w.Byte(0)
		case types.KindNull, types.KindReserved:
		default:
			return errors.New(errors.PhaseEncode, errors.KindEncode).
				Path(fpath.slice()...).
				Expected(f.Type.String()).
				Key(f.Key()).
				Detail("required field is missing").
				Build()
		}
	}
	if matched == len(r.Fields) {
		return nil
	}
	for _, vf := range r.Fields {
		if _, ok := rt.Field(vf.Label.Key()); !ok {
			return errors.New(errors.PhaseEncode, errors.KindEncode).
				Path(path.child(vf.Label.String()).slice()...).
				Expected(rt.String()).
				Key(vf.Label.Key()).
				Detail("field is not in the type").
				Build()
		}
	}
	return errors.New(errors.PhaseEncode, errors.KindEncode).
		Path(path.slice()...).
		Detail("record value has duplicate keys").
		Build()
}
