package candid

import (
	"bytes"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/table"
	"github.com/wippyai/candid-go/types"
	"github.com/wippyai/candid-go/values"
)

// Decoder reads the arguments of one message in order. Each argument is
// decoded against a type chosen by the caller, which may differ from the
// type recorded on the wire as long as the wire type is a subtype of it.
//
// A Decoder is not safe for concurrent use and must not be used again after
// it returns an error.
type Decoder struct {
	r       *binary.Reader
	table   *table.Table
	args    []types.Type
	cfg     Config
	assumed map[[2]types.Type]bool
	zero    map[types.Type]bool
	next    int
	depth   int
}

// NewDecoder parses the header, type table and argument types of data using
// DefaultConfig.
func NewDecoder(data []byte) (*Decoder, error) {
	return NewDecoderWithConfig(data, DefaultConfig())
}

// NewDecoderWithConfig is NewDecoder with explicit limits.
func NewDecoderWithConfig(data []byte, cfg Config) (*Decoder, error) {
	cfg = cfg.withDefaults()
	r := binary.NewReader(data)
	if err := r.ReadMagic(); err != nil {
		return nil, err
	}
	tbl, err := table.Parse(r, cfg.MaxTableEntries)
	if err != nil {
		return nil, err
	}
	n, err := r.ReadLen()
	if err != nil {
		return nil, err
	}
	if n > r.Remaining() {
		return nil, errors.UnexpectedEOF(r.Position(), n, r.Remaining())
	}
	args := make([]types.Type, n)
	for i := range args {
		ref, err := r.ReadTypeRef()
		if err != nil {
			return nil, err
		}
		if args[i], err = tbl.TypeOf(ref); err != nil {
			return nil, err
		}
	}

	Logger().Debug("parsed message header",
		zap.Int("table_entries", tbl.Len()),
		zap.Int("args", n))

	return &Decoder{
		r:       r,
		table:   tbl,
		args:    args,
		cfg:     cfg,
		assumed: make(map[[2]types.Type]bool),
		zero:    make(map[types.Type]bool),
	}, nil
}

// Len returns the number of arguments on the wire.
func (d *Decoder) Len() int {
	return len(d.args)
}

// Table returns the parsed type table.
func (d *Decoder) Table() *table.Table {
	return d.table
}

// WireTypes returns the argument types as recorded on the wire: primitives
// or references into Table.
func (d *Decoder) WireTypes() []types.Type {
	return d.args
}

// Decode reads the next argument as expected. Past the last wire argument,
// opt, null and reserved types decode to their default and anything else is
// a missing required field.
func (d *Decoder) Decode(expected types.Type) (values.Value, error) {
	i := d.next
	path := argPath(i)
	if expected == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path.slice(), "nil expected type")
	}
	if i >= len(d.args) {
		v, ok := d.defaultValue(expected)
		if !ok {
			return nil, errors.MissingRequiredField(path.slice(), errors.NoIndex, uint32(i), expected.String())
		}
		d.next++
		Logger().Debug("defaulted missing argument", zap.Int("arg", i), zap.Stringer("type", expected))
		return v, nil
	}

	wire := d.args[i]
	if err := d.check(wire, expected, path); err != nil {
		clear(d.assumed)
		return nil, err
	}
	v, err := d.decode(wire, expected, path)
	if err != nil {
		return nil, err
	}
	d.next++
	return v, nil
}

// DecodeAny reads the next argument under its own wire type. Record and
// variant labels come back as numeric keys.
func (d *Decoder) DecodeAny() (values.Value, error) {
	if d.next >= len(d.args) {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "no arguments left")
	}
	wire := d.args[d.next]
	v, err := d.decode(wire, wire, argPath(d.next))
	if err != nil {
		return nil, err
	}
	d.next++
	return v, nil
}

// Unmarshal decodes the next argument against u.IDLType() and hands the
// value to u.
func (d *Decoder) Unmarshal(u Unmarshaler) error {
	v, err := d.Decode(u.IDLType())
	if err != nil {
		return err
	}
	return u.UnmarshalIDL(v)
}

// Done skips the arguments that were not decoded and fails if any bytes
// remain after the last one.
func (d *Decoder) Done() error {
	for ; d.next < len(d.args); d.next++ {
		if err := d.skip(d.args[d.next], argPath(d.next)); err != nil {
			return err
		}
		Logger().Debug("skipped trailing argument", zap.Int("arg", d.next))
	}
	if n := d.r.Remaining(); n > 0 {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("%d trailing bytes after the last argument", n).
			Build()
	}
	return nil
}

// Deserialize decodes one value per expected type and requires the whole
// input to be consumed.
func Deserialize(data []byte, expected []types.Type) ([]values.Value, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return nil, err
	}
	out := make([]values.Value, len(expected))
	for i, t := range expected {
		if out[i], err = d.Decode(t); err != nil {
			return nil, err
		}
	}
	if err := d.Done(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve follows table references and knots to a concrete node.
func (d *Decoder) resolve(t types.Type) (types.Type, int) {
	if r, ok := t.(types.Ref); ok {
		return d.table.Entry(r.Index), r.Index
	}
	return types.Unknot(t), errors.NoIndex
}

// depthStep is the nesting depth a value of type t adds. Only values that
// hold other values count, and an opt around a record, variant or vector
// shares the level of its payload, so a recursive list costs one level per
// link.
func (d *Decoder) depthStep(t types.Type) int {
	rt, _ := d.resolve(t)
	if rt == nil {
		return 1
	}
	switch rt.Kind() {
	case types.KindOpt:
		switch d.kindOf(rt.(*types.Opt).Elem) {
		case types.KindRecord, types.KindVariant, types.KindVec:
			return 0
		}
		return 1
	case types.KindRecord, types.KindVariant, types.KindVec:
		return 1
	}
	return 0
}

func (d *Decoder) enter(step int, path *valuePath) error {
	d.depth += step
	if d.depth > d.cfg.MaxDepth {
		return errors.LimitExceeded(path.slice(), "nesting depth", d.depth, d.cfg.MaxDepth)
	}
	return nil
}

func (d *Decoder) leave(step int) {
	d.depth -= step
}

func (d *Decoder) decode(wire, expected types.Type, path *valuePath) (values.Value, error) {
	step := d.depthStep(expected)
	if err := d.enter(step, path); err != nil {
		return nil, err
	}
	defer d.leave(step)

	wt, widx := d.resolve(wire)
	et, _ := d.resolve(expected)
	if et == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, path.slice(), "recursive type "+expected.String()+" was never tied")
	}

	switch et.Kind() {
	case types.KindNull:
		return values.Null{}, d.skip(wire, path)
	case types.KindReserved:
		return values.Reserved{}, d.skip(wire, path)
	case types.KindOpt:
		return d.decodeOpt(wire, wt, et.(*types.Opt), path)
	}

	wk, ek := wt.Kind(), et.Kind()
	if wk == types.KindEmpty {
		return nil, errors.InvalidData(errors.PhaseDecode, path.slice(), "value of type empty")
	}
	if wk != ek && !(ek == types.KindInt && wk == types.KindNat) {
		return nil, errors.SubtypeMismatch(path.slice(), widx, et.String(), wt.String())
	}

	switch ek {
	case types.KindBool:
		v, err := d.r.ReadBool()
		return values.Bool(v), err
	case types.KindNat:
		v, err := d.r.ReadNat()
		if err != nil {
			return nil, err
		}
		return values.NatFromBig(v)
	case types.KindInt:
		read := d.r.ReadInt
		if wk == types.KindNat {
			read = d.r.ReadNat
		}
		v, err := read()
		if err != nil {
			return nil, err
		}
		return values.IntFromBig(v), nil
	case types.KindNat8:
		v, err := d.r.ReadByte()
		return values.Nat8(v), err
	case types.KindNat16:
		v, err := d.r.ReadU16LE()
		return values.Nat16(v), err
	case types.KindNat32:
		v, err := d.r.ReadU32LE()
		return values.Nat32(v), err
	case types.KindNat64:
		v, err := d.r.ReadU64LE()
		return values.Nat64(v), err
	case types.KindInt8:
		v, err := d.r.ReadByte()
		return values.Int8(int8(v)), err
	case types.KindInt16:
		v, err := d.r.ReadU16LE()
		return values.Int16(int16(v)), err
	case types.KindInt32:
		v, err := d.r.ReadU32LE()
		return values.Int32(int32(v)), err
	case types.KindInt64:
		v, err := d.r.ReadU64LE()
		return values.Int64(int64(v)), err
	case types.KindFloat32:
		v, err := d.r.ReadF32()
		return values.Float32(v), err
	case types.KindFloat64:
		v, err := d.r.ReadF64()
		return values.Float64(v), err
	case types.KindText:
		v, err := d.r.ReadText(d.cfg.MaxBlobLength)
		if err != nil {
			return nil, errors.WithPath(err, path.slice())
		}
		return values.Text(v), nil
	case types.KindPrincipal:
		v, err := d.r.ReadPrincipal(d.cfg.MaxBlobLength)
		if err != nil {
			return nil, errors.WithPath(err, path.slice())
		}
		return values.Principal(v), nil
	case types.KindVec:
		return d.decodeVec(wt.(*types.Vec), et.(*types.Vec), path)
	case types.KindRecord:
		return d.decodeRecord(wt.(*types.Record), widx, et.(*types.Record), path)
	case types.KindVariant:
		return d.decodeVariant(wt.(*types.Variant), widx, et.(*types.Variant), path)
	case types.KindFunc:
		return d.decodeFunc(path)
	case types.KindService:
		p, err := d.r.ReadPrincipal(d.cfg.MaxBlobLength)
		if err != nil {
			return nil, errors.WithPath(err, path.slice())
		}
		return values.Service{Principal: p}, nil
	}
	return nil, errors.SubtypeMismatch(path.slice(), widx, et.String(), wt.String())
}

// decodeOpt never fails on a type mismatch: a value that cannot be read as
// the expected element is skipped and decodes to None. A variant case the
// expected element lacks is not a type mismatch; it still fails with
// unknown_variant_tag when a value carries it, under opt as elsewhere.
func (d *Decoder) decodeOpt(wire, wt types.Type, et *types.Opt, path *valuePath) (values.Value, error) {
	switch wt.Kind() {
	case types.KindNull, types.KindReserved:
		return values.None(), nil
	case types.KindOpt:
		tag, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch tag {
		case 0:
			return values.None(), nil
		case 1:
		default:
			return nil, errors.InvalidData(errors.PhaseDecode, path.slice(), "opt tag "+strconv.Itoa(int(tag)))
		}
		inner := wt.(*types.Opt).Elem
		if d.subtype(inner, et.Elem) {
			v, err := d.decode(inner, et.Elem, path)
			if err != nil {
				return nil, err
			}
			return values.Some(v), nil
		}
		return d.degrade(inner, et, path)
	}

	// A bare value under opt T becomes Some only when null is not itself a
	// value of T; otherwise None and Some(null) would be ambiguous.
	switch k := d.kindOf(et.Elem); k {
	case types.KindNull, types.KindReserved, types.KindOpt:
		return d.degrade(wire, et, path)
	}
	if !d.subtype(wire, et.Elem) {
		return d.degrade(wire, et, path)
	}
	v, err := d.decode(wire, et.Elem, path)
	if err != nil {
		return nil, err
	}
	return values.Some(v), nil
}

func (d *Decoder) degrade(wire types.Type, et *types.Opt, path *valuePath) (values.Value, error) {
	if err := d.skip(wire, path); err != nil {
		return nil, err
	}
	Logger().Debug("opt value degraded to none",
		zap.Stringer("path", path),
		zap.Stringer("expected", et))
	return values.None(), nil
}

func (d *Decoder) decodeVec(wt, et *types.Vec, path *valuePath) (values.Value, error) {
	n, err := d.vecLen(wt, path)
	if err != nil {
		return nil, err
	}
	if d.kindOf(wt.Elem) == types.KindNat8 && d.kindOf(et.Elem) == types.KindNat8 {
		if n > d.cfg.MaxBlobLength {
			return nil, errors.TooLong(errors.PhaseDecode, "blob", uint64(n), uint64(d.cfg.MaxBlobLength))
		}
		b, err := d.r.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		return values.Blob(bytes.Clone(b)), nil
	}
	out := make(values.Vec, n)
	for i := range out {
		if out[i], err = d.decode(wt.Elem, et.Elem, path.index(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// vecLen reads a vector length and applies the configured limits. Elements
// of a zero-sized type occupy no input, so their count gets its own limit;
// every other element takes at least one byte.
func (d *Decoder) vecLen(wt *types.Vec, path *valuePath) (int, error) {
	n, err := d.r.ReadLen()
	if err != nil {
		return 0, err
	}
	if n > d.cfg.MaxVecLength {
		return 0, errors.LimitExceeded(path.slice(), "vector length", n, d.cfg.MaxVecLength)
	}
	if d.zeroSized(wt.Elem) {
		if n > d.cfg.MaxZeroSizedVecLength {
			return 0, errors.LimitExceeded(path.slice(), "zero-sized vector length", n, d.cfg.MaxZeroSizedVecLength)
		}
	} else if n > d.r.Remaining() {
		return 0, errors.UnexpectedEOF(d.r.Position(), n, d.r.Remaining())
	}
	return n, nil
}

func (d *Decoder) decodeRecord(wt *types.Record, widx int, et *types.Record, path *valuePath) (values.Value, error) {
	efs := et.Fields()
	out := make([]values.Field, len(efs))
	for _, wf := range wt.Fields() {
		i, ok := et.Index(wf.Key())
		if !ok {
			if err := d.skip(wf.Type, path.child(wf.Label.String())); err != nil {
				return nil, err
			}
			Logger().Debug("skipped record field",
				zap.Stringer("path", path),
				zap.Uint32("key", wf.Key()))
			continue
		}
		ef := efs[i]
		v, err := d.decode(wf.Type, ef.Type, path.child(ef.Label.String()))
		if err != nil {
			return nil, err
		}
		out[i] = values.Field{Label: ef.Label, Value: v}
	}
	for i, ef := range efs {
		if out[i].Value != nil {
			continue
		}
		v, ok := d.defaultValue(ef.Type)
		if !ok {
			return nil, errors.MissingRequiredField(path.child(ef.Label.String()).slice(), widx, ef.Key(), ef.Type.String())
		}
		Logger().Debug("defaulted missing field",
			zap.Stringer("path", path),
			zap.Uint32("key", ef.Key()))
		out[i] = values.Field{Label: ef.Label, Value: v}
	}
	return values.Record{Fields: out}, nil
}

func (d *Decoder) decodeVariant(wt *types.Variant, widx int, et *types.Variant, path *valuePath) (values.Value, error) {
	idx, err := d.r.ReadULEB(32)
	if err != nil {
		return nil, err
	}
	wfs := wt.Fields()
	if idx >= uint64(len(wfs)) {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path.slice()...).
			TableIndex(widx).
			Detail("variant index %d out of range (%d cases)", idx, len(wfs)).
			Build()
	}
	wf := wfs[idx]
	ef, ok := et.Field(wf.Key())
	if !ok {
		return nil, errors.UnknownVariantTag(path.slice(), widx, wf.Key(), et.String())
	}
	v, err := d.decode(wf.Type, ef.Type, path.child(ef.Label.String()))
	if err != nil {
		return nil, err
	}
	return values.Variant{Field: values.Field{Label: ef.Label, Value: v}}, nil
}

func (d *Decoder) decodeFunc(path *valuePath) (values.Value, error) {
	flag, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if flag != 1 {
		return nil, errors.InvalidData(errors.PhaseDecode, path.slice(), "opaque function reference")
	}
	svc, err := d.r.ReadPrincipal(d.cfg.MaxBlobLength)
	if err != nil {
		return nil, errors.WithPath(err, path.slice())
	}
	method, err := d.r.ReadText(d.cfg.MaxBlobLength)
	if err != nil {
		return nil, errors.WithPath(err, path.slice())
	}
	return values.Func{Service: svc, Method: method}, nil
}

// defaultValue is the value of an absent field or argument of type t.
func (d *Decoder) defaultValue(t types.Type) (values.Value, bool) {
	switch d.kindOf(t) {
	case types.KindOpt:
		return values.None(), true
	case types.KindNull:
		return values.Null{}, true
	case types.KindReserved:
		return values.Reserved{}, true
	}
	return nil, false
}

func (d *Decoder) kindOf(t types.Type) types.Kind {
	rt, _ := d.resolve(t)
	if rt == nil {
		return types.KindKnot
	}
	return rt.Kind()
}

// zeroSized reports whether values of t occupy no bytes.
func (d *Decoder) zeroSized(t types.Type) bool {
	rt, _ := d.resolve(t)
	if rt == nil {
		return false
	}
	if z, ok := d.zero[rt]; ok {
		return z
	}
	switch rt.Kind() {
	case types.KindNull, types.KindReserved:
		return true
	case types.KindRecord:
		// Assume zero-sized while visiting so that cycles terminate.
		d.zero[rt] = true
		z := true
		for _, f := range rt.(*types.Record).Fields() {
			if !d.zeroSized(f.Type) {
				z = false
				break
			}
		}
		d.zero[rt] = z
		return z
	}
	return false
}

