package types

// Equal reports whether a and b describe the same type. Knots are
// transparent: a recursive type equals its one-step unfolding. Labels are
// compared by key only.
func Equal(a, b Type) bool {
	return equal(a, b, make(map[[2]Type]bool))
}

func equal(a, b Type, assumed map[[2]Type]bool) bool {
	a, b = Unknot(a), Unknot(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind().IsPrimitive() {
		return true
	}
	if ra, ok := a.(Ref); ok {
		return ra == b.(Ref)
	}

	// Pairs already under comparison are assumed equal; a mismatch anywhere
	// else in the cycle still fails.
	pair := [2]Type{a, b}
	if assumed[pair] {
		return true
	}
	assumed[pair] = true

	switch x := a.(type) {
	case *Opt:
		return equal(x.Elem, b.(*Opt).Elem, assumed)
	case *Vec:
		return equal(x.Elem, b.(*Vec).Elem, assumed)
	case *Record:
		return equalFields(x.fields, b.(*Record).fields, assumed)
	case *Variant:
		return equalFields(x.fields, b.(*Variant).fields, assumed)
	case *Func:
		y := b.(*Func)
		if len(x.Modes) != len(y.Modes) {
			return false
		}
		for i := range x.Modes {
			if x.Modes[i] != y.Modes[i] {
				return false
			}
		}
		return equalList(x.Args, y.Args, assumed) && equalList(x.Rets, y.Rets, assumed)
	case *Service:
		y := b.(*Service)
		if len(x.methods) != len(y.methods) {
			return false
		}
		for i, m := range x.methods {
			if m.Name != y.methods[i].Name || !equal(m.Type, y.methods[i].Type, assumed) {
				return false
			}
		}
		return true
	}
	return false
}

func equalFields(a, b []Field, assumed map[[2]Type]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key() != b[i].Key() || !equal(a[i].Type, b[i].Type, assumed) {
			return false
		}
	}
	return true
}

func equalList(a, b []Type, assumed map[[2]Type]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], assumed) {
			return false
		}
	}
	return true
}
