package binary

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"

	cerrors "github.com/wippyai/candid-go/errors"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	_, err := r.ReadByte()
	if !errors.Is(err, cerrors.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected_eof, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", r.Remaining())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, cerrors.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected_eof, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}
}

func TestReaderMagic(t *testing.T) {
	if err := NewReader([]byte("DIDL\x00\x00")).ReadMagic(); err != nil {
		t.Fatalf("ReadMagic: %v", err)
	}
	for _, data := range [][]byte{[]byte("DIDX"), []byte("DI"), nil} {
		err := NewReader(data).ReadMagic()
		if !errors.Is(err, cerrors.ErrBadMagic) {
			t.Errorf("ReadMagic(%q): got %v, want bad_magic", data, err)
		}
	}
}

func TestRoundTripPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteMagic()
	w.WriteULEB(624485)
	w.WriteSLEB(-129)
	w.WriteU16LE(0xBEEF)
	w.WriteU32LE(0xDEADBEEF)
	w.WriteU64LE(math.MaxUint64)
	w.WriteF32(1.5)
	w.WriteF64(-2.25)
	w.WriteBool(true)
	w.WriteText("héllo")
	w.WriteBlob([]byte{9, 8, 7})
	w.WritePrincipal([]byte{0xca, 0xff, 0xee})
	w.WriteNat(big.NewInt(5_000_000_000_000))
	w.WriteInt(big.NewInt(-5_000_000_000_000))

	r := NewReader(w.Bytes())
	if err := r.ReadMagic(); err != nil {
		t.Fatalf("ReadMagic: %v", err)
	}
	if v, err := r.ReadULEB(64); err != nil || v != 624485 {
		t.Errorf("ReadULEB = %d, %v", v, err)
	}
	if v, err := r.ReadSLEB(64); err != nil || v != -129 {
		t.Errorf("ReadSLEB = %d, %v", v, err)
	}
	if v, err := r.ReadU16LE(); err != nil || v != 0xBEEF {
		t.Errorf("ReadU16LE = %x, %v", v, err)
	}
	if v, err := r.ReadU32LE(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadU32LE = %x, %v", v, err)
	}
	if v, err := r.ReadU64LE(); err != nil || v != math.MaxUint64 {
		t.Errorf("ReadU64LE = %x, %v", v, err)
	}
	if v, err := r.ReadF32(); err != nil || v != 1.5 {
		t.Errorf("ReadF32 = %v, %v", v, err)
	}
	if v, err := r.ReadF64(); err != nil || v != -2.25 {
		t.Errorf("ReadF64 = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Errorf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadText(0); err != nil || v != "héllo" {
		t.Errorf("ReadText = %q, %v", v, err)
	}
	if v, err := r.ReadBlob(0); err != nil || !bytes.Equal(v, []byte{9, 8, 7}) {
		t.Errorf("ReadBlob = %v, %v", v, err)
	}
	if v, err := r.ReadPrincipal(0); err != nil || !bytes.Equal(v, []byte{0xca, 0xff, 0xee}) {
		t.Errorf("ReadPrincipal = %x, %v", v, err)
	}
	if v, err := r.ReadNat(); err != nil || v.Int64() != 5_000_000_000_000 {
		t.Errorf("ReadNat = %v, %v", v, err)
	}
	if v, err := r.ReadInt(); err != nil || v.Int64() != -5_000_000_000_000 {
		t.Errorf("ReadInt = %v, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining = %d", r.Remaining())
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		read   func(r *Reader) error
		target error
		name   string
		data   []byte
	}{
		{
			name:   "invalid utf8",
			data:   []byte{0x02, 0xc3, 0x28},
			read:   func(r *Reader) error { _, err := r.ReadText(0); return err },
			target: cerrors.ErrInvalidUTF8,
		},
		{
			name:   "truncated principal",
			data:   []byte{0x01, 0x0a, 0x00, 0x01},
			read:   func(r *Reader) error { _, err := r.ReadPrincipal(0); return err },
			target: cerrors.ErrUnexpectedEOF,
		},
		{
			name:   "opaque principal",
			data:   []byte{0x00},
			read:   func(r *Reader) error { _, err := r.ReadPrincipal(0); return err },
			target: cerrors.ErrInvalidData,
		},
		{
			name:   "blob over limit",
			data:   []byte{0x05, 1, 2, 3, 4, 5},
			read:   func(r *Reader) error { _, err := r.ReadBlob(4); return err },
			target: cerrors.ErrTooLong,
		},
		{
			name:   "huge length",
			data:   []byte{0xff, 0xff, 0xff, 0xff, 0x0f},
			read:   func(r *Reader) error { _, err := r.ReadBlob(0); return err },
			target: cerrors.ErrUnexpectedEOF,
		},
		{
			name:   "bool byte",
			data:   []byte{0x02},
			read:   func(r *Reader) error { _, err := r.ReadBool(); return err },
			target: cerrors.ErrInvalidData,
		},
		{
			name:   "length overflow",
			data:   []byte{0x80, 0x80, 0x80, 0x80, 0x10},
			read:   func(r *Reader) error { _, err := r.ReadLen(); return err },
			target: cerrors.ErrOverflow,
		},
		{
			name:   "truncated nat",
			data:   []byte{0x80},
			read:   func(r *Reader) error { _, err := r.ReadNat(); return err },
			target: cerrors.ErrUnexpectedEOF,
		},
		{
			name:   "truncated float",
			data:   []byte{0x00, 0x00},
			read:   func(r *Reader) error { _, err := r.ReadF64(); return err },
			target: cerrors.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.data))
			if !errors.Is(err, tt.target) {
				t.Fatalf("got %v, want %v", err, tt.target)
			}
		})
	}
}
