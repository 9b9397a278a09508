package leb128

import (
	"bytes"
	"io"
	"math/big"

	"github.com/wippyai/candid-go/errors"
)

// ErrOverflow is returned when a LEB128 value exceeds the target bit width.
var ErrOverflow = errors.New(errors.PhaseDecode, errors.KindOverflow).
	Detail("leb128: value exceeds target width").
	Build()

// fast paths stay below this many 7-bit groups
const maxFastGroups = 9

var (
	mask7    = big.NewInt(0x7f)
	minusOne = big.NewInt(-1)
)

// ReadUnsigned reads an unsigned LEB128 value that must fit in bits (<= 64).
// Redundant zero continuation groups are accepted.
func ReadUnsigned(r io.ByteReader, bits uint) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		low := uint64(b & 0x7f)
		if shift >= bits {
			if low != 0 {
				return 0, ErrOverflow
			}
		} else {
			if room := bits - shift; room < 7 && low>>room != 0 {
				return 0, ErrOverflow
			}
			result |= low << shift
			shift += 7
		}
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadSigned reads a signed LEB128 value that must fit in bits (<= 64).
func ReadSigned(r io.ByteReader, bits uint) (int64, error) {
	v, err := ReadInt(r)
	if err != nil {
		return 0, err
	}
	if v.BitLen() >= int(bits) {
		// -2^(bits-1) is the single value with BitLen == bits-1+1 that still fits
		lowest := new(big.Int).Lsh(big.NewInt(1), bits-1)
		lowest.Neg(lowest)
		if v.Cmp(lowest) != 0 {
			return 0, ErrOverflow
		}
	}
	return v.Int64(), nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func ReadU32(r io.ByteReader) (uint32, error) {
	v, err := ReadUnsigned(r, 32)
	return uint32(v), err
}

// ReadU64 reads an unsigned LEB128 encoded uint64.
func ReadU64(r io.ByteReader) (uint64, error) {
	return ReadUnsigned(r, 64)
}

// ReadS64 reads a signed LEB128 encoded int64.
func ReadS64(r io.ByteReader) (int64, error) {
	return ReadSigned(r, 64)
}

// ReadNat reads an unsigned LEB128 value of any size.
func ReadNat(r io.ByteReader) (*big.Int, error) {
	groups, err := readGroups(r)
	if err != nil {
		return nil, err
	}
	if len(groups) <= maxFastGroups {
		var v uint64
		for i := len(groups) - 1; i >= 0; i-- {
			v = v<<7 | uint64(groups[i])
		}
		return new(big.Int).SetUint64(v), nil
	}
	return fromGroups(groups), nil
}

// ReadInt reads a signed LEB128 value of any size.
func ReadInt(r io.ByteReader) (*big.Int, error) {
	groups, err := readGroups(r)
	if err != nil {
		return nil, err
	}
	v := fromGroups(groups)
	if groups[len(groups)-1]&0x40 != 0 {
		// Sign extend
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(7*len(groups))))
	}
	return v, nil
}

func readGroups(r io.ByteReader) ([]byte, error) {
	groups := make([]byte, 0, 10)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		groups = append(groups, b&0x7f)
		if b&0x80 == 0 {
			return groups, nil
		}
	}
}

func fromGroups(groups []byte) *big.Int {
	v := new(big.Int)
	g := new(big.Int)
	for i := len(groups) - 1; i >= 0; i-- {
		v.Lsh(v, 7)
		v.Or(v, g.SetUint64(uint64(groups[i])))
	}
	return v
}

// WriteUnsigned writes an unsigned LEB128 value
func WriteUnsigned(w *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteSigned writes a signed LEB128 value
func WriteSigned(w *bytes.Buffer, v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.WriteByte(b)
	}
}

// WriteNat writes a non-negative big integer as unsigned LEB128.
// Negative values are the caller's error and are written as zero.
func WriteNat(w *bytes.Buffer, v *big.Int) {
	if v.Sign() <= 0 {
		w.WriteByte(0)
		return
	}
	if v.IsUint64() {
		WriteUnsigned(w, v.Uint64())
		return
	}
	x := new(big.Int).Set(v)
	g := new(big.Int)
	for {
		b := byte(g.And(x, mask7).Uint64())
		x.Rsh(x, 7)
		if x.Sign() != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if x.Sign() == 0 {
			return
		}
	}
}

// WriteInt writes a big integer as signed LEB128.
func WriteInt(w *bytes.Buffer, v *big.Int) {
	if v.IsInt64() {
		WriteSigned(w, v.Int64())
		return
	}
	x := new(big.Int).Set(v)
	g := new(big.Int)
	for {
		// And and Rsh follow two's complement semantics for negative x
		b := byte(g.And(x, mask7).Uint64())
		x.Rsh(x, 7)
		if (x.Sign() == 0 && b&0x40 == 0) || (x.Cmp(minusOne) == 0 && b&0x40 != 0) {
			w.WriteByte(b)
			return
		}
		w.WriteByte(b | 0x80)
	}
}

// EncodeUnsigned encodes an unsigned LEB128 value to bytes.
func EncodeUnsigned(v uint64) []byte {
	var buf bytes.Buffer
	WriteUnsigned(&buf, v)
	return buf.Bytes()
}

// EncodeSigned encodes a signed LEB128 value to bytes.
func EncodeSigned(v int64) []byte {
	var buf bytes.Buffer
	WriteSigned(&buf, v)
	return buf.Bytes()
}

// EncodeNat encodes a non-negative big integer to unsigned LEB128 bytes.
func EncodeNat(v *big.Int) []byte {
	var buf bytes.Buffer
	WriteNat(&buf, v)
	return buf.Bytes()
}

// EncodeInt encodes a big integer to signed LEB128 bytes.
func EncodeInt(v *big.Int) []byte {
	var buf bytes.Buffer
	WriteInt(&buf, v)
	return buf.Bytes()
}
