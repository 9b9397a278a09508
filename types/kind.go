package types

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNat
	KindInt
	KindNat8
	KindNat16
	KindNat32
	KindNat64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindText
	KindReserved
	KindEmpty
	KindPrincipal
	KindOpt
	KindVec
	KindRecord
	KindVariant
	KindFunc
	KindService
	KindKnot
	KindRef
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindNat:       "nat",
	KindInt:       "int",
	KindNat8:      "nat8",
	KindNat16:     "nat16",
	KindNat32:     "nat32",
	KindNat64:     "nat64",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindText:      "text",
	KindReserved:  "reserved",
	KindEmpty:     "empty",
	KindPrincipal: "principal",
	KindOpt:       "opt",
	KindVec:       "vec",
	KindRecord:    "record",
	KindVariant:   "variant",
	KindFunc:      "func",
	KindService:   "service",
	KindKnot:      "knot",
	KindRef:       "ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindPrincipal
}

// IsComposite reports whether values of kind k occupy a type-table slot.
func (k Kind) IsComposite() bool {
	return k >= KindOpt && k <= KindService
}

// FixedSize returns the wire size of fixed-width kinds, or 0.
func (k Kind) FixedSize() int {
	switch k {
	case KindBool, KindNat8, KindInt8:
		return 1
	case KindNat16, KindInt16:
		return 2
	case KindNat32, KindInt32, KindFloat32:
		return 4
	case KindNat64, KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Bits returns the width of fixed-width integer kinds, or 0.
func (k Kind) Bits() uint {
	switch k {
	case KindNat8, KindInt8:
		return 8
	case KindNat16, KindInt16:
		return 16
	case KindNat32, KindInt32:
		return 32
	case KindNat64, KindInt64:
		return 64
	default:
		return 0
	}
}
