package table

import (
	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/types"
)

// Table is an ordered list of composite type entries. Children of an entry
// are primitives or types.Ref values pointing at other entries.
type Table struct {
	entries []types.Type
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entry returns the entry at index i.
func (t *Table) Entry(i int) types.Type {
	return t.entries[i]
}

// Entries returns all entries in table order. The slice must not be modified.
func (t *Table) Entries() []types.Type {
	return t.entries
}

// Resolve follows a reference to its entry. It returns the entry and its
// index, or ty itself and errors.NoIndex when ty is not a reference.
func (t *Table) Resolve(ty types.Type) (types.Type, int) {
	if r, ok := ty.(types.Ref); ok {
		return t.entries[r.Index], r.Index
	}
	return ty, errors.NoIndex
}

// TypeOf converts a wire type reference into a type: a primitive for negative
// opcodes or a types.Ref for table indices.
func (t *Table) TypeOf(ref int64) (types.Type, error) {
	if ref >= 0 {
		if ref >= int64(len(t.entries)) {
			return nil, errors.MalformedTable(errors.NoIndex, "type reference %d out of range (table has %d entries)", ref, len(t.entries))
		}
		return types.Ref{Index: int(ref)}, nil
	}
	p, ok := primitiveOf(ref)
	if !ok {
		return nil, errors.MalformedTable(errors.NoIndex, "opcode %d is not a primitive type", ref)
	}
	return p, nil
}

// Encode writes the table: entry count then one opcode and payload per entry.
func (t *Table) Encode(w *binary.Writer) {
	w.WriteULEB(uint64(len(t.entries)))
	for _, e := range t.entries {
		op, _ := Opcode(e.Kind())
		w.WriteSLEB(op)
		switch x := e.(type) {
		case *types.Opt:
			writeRef(w, x.Elem)
		case *types.Vec:
			writeRef(w, x.Elem)
		case *types.Record:
			writeFields(w, x.Fields())
		case *types.Variant:
			writeFields(w, x.Fields())
		case *types.Func:
			w.WriteULEB(uint64(len(x.Args)))
			for _, a := range x.Args {
				writeRef(w, a)
			}
			w.WriteULEB(uint64(len(x.Rets)))
			for _, r := range x.Rets {
				writeRef(w, r)
			}
			w.WriteULEB(uint64(len(x.Modes)))
			for _, m := range x.Modes {
				w.Byte(byte(m))
			}
		case *types.Service:
			ms := x.Methods()
			w.WriteULEB(uint64(len(ms)))
			for _, m := range ms {
				w.WriteText(m.Name)
				writeRef(w, m.Type)
			}
		}
	}
}

// MarshalBinary returns the encoded table.
func (t *Table) MarshalBinary() ([]byte, error) {
	w := binary.NewWriter()
	t.Encode(w)
	return w.Bytes(), nil
}

// WriteRef writes the wire reference for a primitive or a types.Ref.
func WriteRef(w *binary.Writer, t types.Type) {
	writeRef(w, t)
}

func writeRef(w *binary.Writer, t types.Type) {
	if r, ok := t.(types.Ref); ok {
		w.WriteSLEB(int64(r.Index))
		return
	}
	op, _ := Opcode(t.Kind())
	w.WriteSLEB(op)
}

func writeFields(w *binary.Writer, fields []types.Field) {
	w.WriteULEB(uint64(len(fields)))
	for _, f := range fields {
		w.WriteULEB(uint64(f.Key()))
		writeRef(w, f.Type)
	}
}
