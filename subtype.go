package candid

import (
	"slices"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/types"
)

// subtype reports whether sub can be read as sup. A failed check leaves no
// assumptions behind.
func (d *Decoder) subtype(sub, sup types.Type) bool {
	if err := d.check(sub, sup, nil); err != nil {
		clear(d.assumed)
		return false
	}
	return true
}

// check verifies that values of sub can be read as sup. Either side may be a
// table reference or a caller type. Pairs of composite nodes already under
// check are assumed to hold, which makes the check terminate on recursive
// types.
//
// Variants are checked only for the cases both sides share: a wire case the
// caller does not know fails later, when a value actually carries it.
func (d *Decoder) check(sub, sup types.Type, path *valuePath) error {
	st, sidx := d.resolve(sub)
	et, _ := d.resolve(sup)
	if st == nil || et == nil {
		return errors.InvalidData(errors.PhaseDecode, path.slice(), "recursive type was never tied")
	}
	sk, ek := st.Kind(), et.Kind()

	switch ek {
	case types.KindNull, types.KindReserved, types.KindOpt:
		return nil
	}
	if sk == types.KindEmpty {
		return nil
	}
	mismatch := func() error {
		return errors.SubtypeMismatch(path.slice(), sidx, et.String(), st.String())
	}
	if ek.IsPrimitive() {
		if sk == ek || (ek == types.KindInt && sk == types.KindNat) {
			return nil
		}
		return mismatch()
	}
	if sk != ek {
		return mismatch()
	}

	pair := [2]types.Type{st, et}
	if d.assumed[pair] {
		return nil
	}
	d.assumed[pair] = true

	switch s := st.(type) {
	case *types.Vec:
		return d.check(s.Elem, et.(*types.Vec).Elem, path.child("[]"))

	case *types.Record:
		e := et.(*types.Record)
		for _, ef := range e.Fields() {
			fpath := path.child(ef.Label.String())
			sf, ok := s.Field(ef.Key())
			if !ok {
				if _, ok := d.defaultValue(ef.Type); ok {
					continue
				}
				return errors.MissingRequiredField(fpath.slice(), sidx, ef.Key(), ef.Type.String())
			}
			if err := d.check(sf.Type, ef.Type, fpath); err != nil {
				return err
			}
		}
		return nil

	case *types.Variant:
		e := et.(*types.Variant)
		for _, sf := range s.Fields() {
			ef, ok := e.Field(sf.Key())
			if !ok {
				continue
			}
			if err := d.check(sf.Type, ef.Type, path.child(ef.Label.String())); err != nil {
				return err
			}
		}
		return nil

	case *types.Func:
		e := et.(*types.Func)
		if !slices.Equal(s.Modes, e.Modes) {
			return mismatch()
		}
		// Arguments are contravariant, results covariant.
		if err := d.checkTuple(e.Args, s.Args, path); err != nil {
			return err
		}
		return d.checkTuple(s.Rets, e.Rets, path)

	case *types.Service:
		e := et.(*types.Service)
		for _, em := range e.Methods() {
			mpath := path.child(em.Name)
			sm, ok := s.Method(em.Name)
			if !ok {
				return errors.New(errors.PhaseDecode, errors.KindFieldSubtypeMismatch).
					Path(mpath.slice()...).
					TableIndex(sidx).
					Expected(et.String()).
					Wire(st.String()).
					Detail("method %q is missing", em.Name).
					Build()
			}
			if err := d.check(sm.Type, em.Type, mpath); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch()
}

// checkTuple applies the record rule to positional sequences: sup may be
// longer than sub only by types that have a default.
func (d *Decoder) checkTuple(sub, sup []types.Type, path *valuePath) error {
	for i, t := range sup {
		p := path.index(i)
		if i >= len(sub) {
			if _, ok := d.defaultValue(t); ok {
				continue
			}
			return errors.MissingRequiredField(p.slice(), errors.NoIndex, uint32(i), t.String())
		}
		if err := d.check(sub[i], t, p); err != nil {
			return err
		}
	}
	return nil
}
