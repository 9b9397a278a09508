package candid

import (
	"math"
	"strconv"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/types"
)

// skip consumes one value of the wire type t without building it. Skipped
// values are still validated: text must be UTF-8, tags must be in range.
func (d *Decoder) skip(t types.Type, path *valuePath) error {
	step := d.depthStep(t)
	if err := d.enter(step, path); err != nil {
		return err
	}
	defer d.leave(step)

	wt, widx := d.resolve(t)
	switch k := wt.Kind(); k {
	case types.KindNull, types.KindReserved:
		return nil
	case types.KindEmpty:
		return errors.InvalidData(errors.PhaseDecode, path.slice(), "value of type empty")
	case types.KindBool:
		_, err := d.r.ReadBool()
		return err
	case types.KindNat, types.KindInt:
		return d.skipLEB()
	case types.KindText:
		_, err := d.r.ReadText(d.cfg.MaxBlobLength)
		return err
	case types.KindPrincipal:
		_, err := d.r.ReadPrincipal(d.cfg.MaxBlobLength)
		return err

	case types.KindOpt:
		tag, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		switch tag {
		case 0:
			return nil
		case 1:
			return d.skip(wt.(*types.Opt).Elem, path)
		}
		return errors.InvalidData(errors.PhaseDecode, path.slice(), "opt tag "+strconv.Itoa(int(tag)))

	case types.KindVec:
		v := wt.(*types.Vec)
		n, err := d.vecLen(v, path)
		if err != nil {
			return err
		}
		if size := d.fixedSize(v.Elem); size > 0 {
			if n > math.MaxInt/size {
				return errors.UnexpectedEOF(d.r.Position(), math.MaxInt, d.r.Remaining())
			}
			return d.r.Skip(n * size)
		}
		for range n {
			if err := d.skip(v.Elem, path); err != nil {
				return err
			}
		}
		return nil

	case types.KindRecord:
		for _, f := range wt.(*types.Record).Fields() {
			if err := d.skip(f.Type, path); err != nil {
				return err
			}
		}
		return nil

	case types.KindVariant:
		fs := wt.(*types.Variant).Fields()
		idx, err := d.r.ReadULEB(32)
		if err != nil {
			return err
		}
		if idx >= uint64(len(fs)) {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(path.slice()...).
				TableIndex(widx).
				Detail("variant index %d out of range (%d cases)", idx, len(fs)).
				Build()
		}
		return d.skip(fs[idx].Type, path)

	case types.KindFunc:
		_, err := d.decodeFunc(path)
		return err

	case types.KindService:
		_, err := d.r.ReadPrincipal(d.cfg.MaxBlobLength)
		return err

	default:
		if size := k.FixedSize(); size > 0 {
			return d.r.Skip(size)
		}
	}
	return errors.InvalidData(errors.PhaseDecode, path.slice(), "cannot skip "+wt.String())
}

func (d *Decoder) skipLEB() error {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if b&0x80 == 0 {
			return nil
		}
	}
}

// fixedSize returns the wire size of a fixed-width primitive, or 0. Bool is
// excluded because its byte must be validated.
func (d *Decoder) fixedSize(t types.Type) int {
	k := d.kindOf(t)
	if k == types.KindBool {
		return 0
	}
	return k.FixedSize()
}
