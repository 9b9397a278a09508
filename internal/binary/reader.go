package binary

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/leb128"
)

// Magic is the 4-byte header of every message.
var Magic = [4]byte{'D', 'I', 'D', 'L'}

// Reader reads wire primitives from a byte slice with position tracking.
// Every failure is an *errors.Error; running out of input is KindUnexpectedEOF.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.UnexpectedEOF(r.pos, 1, 0)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.UnexpectedEOF(r.pos, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// ReadMagic consumes and checks the message header.
func (r *Reader) ReadMagic() error {
	if r.Remaining() < len(Magic) {
		return errors.BadMagic(r.data[r.pos:])
	}
	head := r.data[r.pos : r.pos+len(Magic)]
	if !bytes.Equal(head, Magic[:]) {
		return errors.BadMagic(head)
	}
	r.pos += len(Magic)
	return nil
}

// ReadULEB reads an unsigned LEB128 value that must fit in bits.
func (r *Reader) ReadULEB(bits uint) (uint64, error) {
	start := r.pos
	v, err := leb128.ReadUnsigned(r, bits)
	if err != nil {
		return 0, r.wrapError(start, err)
	}
	return v, nil
}

// ReadSLEB reads a signed LEB128 value that must fit in bits.
func (r *Reader) ReadSLEB(bits uint) (int64, error) {
	start := r.pos
	v, err := leb128.ReadSigned(r, bits)
	if err != nil {
		return 0, r.wrapError(start, err)
	}
	return v, nil
}

// ReadLen reads an unsigned LEB128 length or count.
func (r *Reader) ReadLen() (int, error) {
	v, err := r.ReadULEB(32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ReadTypeRef reads a signed LEB128 type reference: negative values are
// primitive opcodes, non-negative values are type-table indices.
func (r *Reader) ReadTypeRef() (int64, error) {
	return r.ReadSLEB(64)
}

// ReadNat reads an arbitrary-precision unsigned LEB128 value.
func (r *Reader) ReadNat() (*big.Int, error) {
	return leb128.ReadNat(r)
}

// ReadInt reads an arbitrary-precision signed LEB128 value.
func (r *Reader) ReadInt() (*big.Int, error) {
	return leb128.ReadInt(r)
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadF32 reads a little-endian float32.
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads a little-endian float64.
func (r *Reader) ReadF64() (float64, error) {
	bits, err := r.ReadU64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadBool reads a boolean byte; anything but 0 or 1 is invalid.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.InvalidData(errors.PhaseDecode, nil, r.at(r.pos-1, "bool byte %d", b))
	}
}

// ReadBlob reads a length-prefixed byte string. A length above max is
// KindTooLong; a length above the remaining input is KindUnexpectedEOF.
func (r *Reader) ReadBlob(max int) ([]byte, error) {
	n, err := r.ReadULEB(64)
	if err != nil {
		return nil, err
	}
	if max > 0 && n > uint64(max) {
		return nil, errors.TooLong(errors.PhaseDecode, "blob", n, uint64(max))
	}
	if n > uint64(r.Remaining()) {
		return nil, errors.UnexpectedEOF(r.pos, int(min(n, math.MaxInt32)), r.Remaining())
	}
	return r.ReadBytes(int(n))
}

// ReadText reads a length-prefixed UTF-8 string.
func (r *Reader) ReadText(max int) (string, error) {
	data, err := r.ReadBlob(max)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, data)
	}
	return string(data), nil
}

// ReadPrincipal reads a transparent principal reference: 0x01 then a blob.
func (r *Reader) ReadPrincipal(max int) ([]byte, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if flag != 1 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, r.at(r.pos-1, "opaque reference flag %d", flag))
	}
	data, err := r.ReadBlob(max)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

func (r *Reader) at(pos int, format string, args ...any) string {
	return fmt.Sprintf("at offset %d: ", pos) + fmt.Sprintf(format, args...)
}

func (r *Reader) wrapError(start int, err error) error {
	if stderrors.Is(err, errors.ErrOverflow) {
		return errors.New(errors.PhaseDecode, errors.KindOverflow).
			Detail("leb128 at offset %d exceeds target width", start).
			Build()
	}
	return err
}
