package table

import "github.com/wippyai/candid-go/types"

// Type opcodes. Primitive opcodes double as type references.
const (
	OpNull      int64 = -1
	OpBool      int64 = -2
	OpNat       int64 = -3
	OpInt       int64 = -4
	OpNat8      int64 = -5
	OpNat16     int64 = -6
	OpNat32     int64 = -7
	OpNat64     int64 = -8
	OpInt8      int64 = -9
	OpInt16     int64 = -10
	OpInt32     int64 = -11
	OpInt64     int64 = -12
	OpFloat32   int64 = -13
	OpFloat64   int64 = -14
	OpText      int64 = -15
	OpReserved  int64 = -16
	OpEmpty     int64 = -17
	OpOpt       int64 = -18
	OpVec       int64 = -19
	OpRecord    int64 = -20
	OpVariant   int64 = -21
	OpFunc      int64 = -22
	OpService   int64 = -23
	OpPrincipal int64 = -24
)

var kindOps = [...]int64{
	types.KindNull:      OpNull,
	types.KindBool:      OpBool,
	types.KindNat:       OpNat,
	types.KindInt:       OpInt,
	types.KindNat8:      OpNat8,
	types.KindNat16:     OpNat16,
	types.KindNat32:     OpNat32,
	types.KindNat64:     OpNat64,
	types.KindInt8:      OpInt8,
	types.KindInt16:     OpInt16,
	types.KindInt32:     OpInt32,
	types.KindInt64:     OpInt64,
	types.KindFloat32:   OpFloat32,
	types.KindFloat64:   OpFloat64,
	types.KindText:      OpText,
	types.KindReserved:  OpReserved,
	types.KindEmpty:     OpEmpty,
	types.KindPrincipal: OpPrincipal,
	types.KindOpt:       OpOpt,
	types.KindVec:       OpVec,
	types.KindRecord:    OpRecord,
	types.KindVariant:   OpVariant,
	types.KindFunc:      OpFunc,
	types.KindService:   OpService,
}

// Opcode returns the opcode of kind k.
func Opcode(k types.Kind) (int64, bool) {
	if int(k) >= len(kindOps) {
		return 0, false
	}
	return kindOps[k], true
}

// KindOf returns the kind an opcode stands for.
func KindOf(op int64) (types.Kind, bool) {
	if op >= 0 || op < OpPrincipal {
		return 0, false
	}
	for k, o := range kindOps {
		if o == op {
			return types.Kind(k), true
		}
	}
	return 0, false
}

// primitiveOf maps a primitive opcode to its type.
func primitiveOf(op int64) (types.Type, bool) {
	k, ok := KindOf(op)
	if !ok || !k.IsPrimitive() {
		return nil, false
	}
	return types.Primitive(k), true
}
