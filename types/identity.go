package types

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Fingerprint is a structural hash of a type graph.
type Fingerprint [32]byte

const (
	tagBackref byte = 0xff
	tagUnset   byte = 0xfe
	tagRef     byte = 0xfd
)

// Identity fingerprints t. Knots are transparent and cycles are written as
// back-references to the enclosing node by stack distance, so two graphs with
// the same shape rooted at t get the same Fingerprint regardless of which *Knot or
// pointer values build them.
func Identity(t Type) Fingerprint {
	h := blake3.New()
	w := &idWriter{h: h}
	w.write(t)
	var id Fingerprint
	copy(id[:], h.Sum(nil))
	return id
}

type idWriter struct {
	h     *blake3.Hasher
	stack []Type
	buf   [binary.MaxVarintLen64]byte
}

func (w *idWriter) byte(b byte) {
	w.buf[0] = b
	w.h.Write(w.buf[:1])
}

func (w *idWriter) uvarint(v uint64) {
	n := binary.PutUvarint(w.buf[:], v)
	w.h.Write(w.buf[:n])
}

func (w *idWriter) write(t Type) {
	t = Unknot(t)
	if t == nil {
		w.byte(tagUnset)
		return
	}
	k := t.Kind()
	if k.IsPrimitive() {
		w.byte(byte(k))
		return
	}
	if r, ok := t.(Ref); ok {
		w.byte(tagRef)
		w.uvarint(uint64(r.Index))
		return
	}
	for i := len(w.stack) - 1; i >= 0; i-- {
		if w.stack[i] == t {
			w.byte(tagBackref)
			w.uvarint(uint64(len(w.stack) - 1 - i))
			return
		}
	}

	w.stack = append(w.stack, t)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	w.byte(byte(k))
	switch x := t.(type) {
	case *Opt:
		w.write(x.Elem)
	case *Vec:
		w.write(x.Elem)
	case *Record:
		w.fields(x.fields)
	case *Variant:
		w.fields(x.fields)
	case *Func:
		w.list(x.Args)
		w.list(x.Rets)
		w.uvarint(uint64(len(x.Modes)))
		for _, m := range x.Modes {
			w.byte(byte(m))
		}
	case *Service:
		w.uvarint(uint64(len(x.methods)))
		for _, m := range x.methods {
			w.uvarint(uint64(len(m.Name)))
			w.h.WriteString(m.Name)
			w.write(m.Type)
		}
	}
}

func (w *idWriter) fields(fs []Field) {
	w.uvarint(uint64(len(fs)))
	for _, f := range fs {
		w.uvarint(uint64(f.Key()))
		w.write(f.Type)
	}
}

func (w *idWriter) list(ts []Type) {
	w.uvarint(uint64(len(ts)))
	for _, t := range ts {
		w.write(t)
	}
}
