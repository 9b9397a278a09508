package binary

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/big"

	"github.com/wippyai/candid-go/leb128"
)

// Writer provides buffered writing utilities for wire encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteMagic writes the message header.
func (w *Writer) WriteMagic() {
	w.buf.Write(Magic[:])
}

// WriteULEB writes an unsigned LEB128 value.
func (w *Writer) WriteULEB(v uint64) {
	leb128.WriteUnsigned(w.buf, v)
}

// WriteSLEB writes a signed LEB128 value.
func (w *Writer) WriteSLEB(v int64) {
	leb128.WriteSigned(w.buf, v)
}

// WriteNat writes an arbitrary-precision unsigned LEB128 value.
func (w *Writer) WriteNat(v *big.Int) {
	leb128.WriteNat(w.buf, v)
}

// WriteInt writes an arbitrary-precision signed LEB128 value.
func (w *Writer) WriteInt(v *big.Int) {
	leb128.WriteInt(w.buf, v)
}

// WriteU16LE writes a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32LE writes a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64LE writes a little-endian uint64.
func (w *Writer) WriteU64LE(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteF32 writes a little-endian float32.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32LE(math.Float32bits(v))
}

// WriteF64 writes a little-endian float64.
func (w *Writer) WriteF64(v float64) {
	w.WriteU64LE(math.Float64bits(v))
}

// WriteBool writes a boolean byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteBlob writes a length-prefixed byte string.
func (w *Writer) WriteBlob(data []byte) {
	w.WriteULEB(uint64(len(data)))
	w.buf.Write(data)
}

// WriteText writes a length-prefixed UTF-8 string.
func (w *Writer) WriteText(s string) {
	w.WriteULEB(uint64(len(s)))
	w.buf.WriteString(s)
}

// WritePrincipal writes a transparent principal reference.
func (w *Writer) WritePrincipal(id []byte) {
	w.buf.WriteByte(1)
	w.WriteBlob(id)
}
