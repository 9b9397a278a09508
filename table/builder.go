package table

import (
	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/types"
)

// Builder assigns table slots to the composite nodes of one or more type
// graphs. A Builder serves a single message and is not safe for concurrent use.
type Builder struct {
	entries []types.Type
	byID    map[types.Fingerprint]int
	byNode  map[types.Type]int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		byID:   make(map[types.Fingerprint]int),
		byNode: make(map[types.Type]int),
	}
}

// Add registers t and everything reachable from it, and returns the wire
// reference for t: its primitive opcode or its slot index.
// A failed Add leaves the Builder as it was.
func (b *Builder) Add(t types.Type) (int64, error) {
	mark := b.Mark()
	ty, err := b.add(t)
	if err != nil {
		b.Rollback(mark)
		return 0, err
	}
	if r, ok := ty.(types.Ref); ok {
		return int64(r.Index), nil
	}
	op, _ := Opcode(ty.Kind())
	return op, nil
}

// Table returns the entries registered so far.
func (b *Builder) Table() *Table {
	return &Table{entries: b.entries}
}

// Encode writes the table built so far.
func (b *Builder) Encode(w *binary.Writer) {
	b.Table().Encode(w)
}

// Mark returns the current slot count for a later Rollback.
func (b *Builder) Mark() int {
	return len(b.entries)
}

// Rollback releases every slot assigned after mark.
func (b *Builder) Rollback(mark int) {
	if mark < 0 || mark >= len(b.entries) {
		return
	}
	clear(b.entries[mark:])
	b.entries = b.entries[:mark]
	for id, idx := range b.byID {
		if idx >= mark {
			delete(b.byID, id)
		}
	}
	for node, idx := range b.byNode {
		if idx >= mark {
			delete(b.byNode, node)
		}
	}
}

// Len returns the number of slots assigned so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// add returns a primitive or a types.Ref for t.
func (b *Builder) add(t types.Type) (types.Type, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
			Detail("nil type").
			Build()
	}
	node := types.Unknot(t)
	if node == nil {
		return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
			Detail("recursive type %s was never tied", t).
			Build()
	}
	k := node.Kind()
	if k.IsPrimitive() {
		return node, nil
	}
	if k == types.KindRef {
		return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
			Detail("table reference %s inside a type descriptor", node).
			Build()
	}

	if idx, ok := b.byNode[node]; ok {
		return types.Ref{Index: idx}, nil
	}
	id := types.Identity(node)
	if idx, ok := b.byID[id]; ok {
		b.byNode[node] = idx
		return types.Ref{Index: idx}, nil
	}

	// Reserve before descending so that cycles back to this node resolve.
	idx := len(b.entries)
	b.entries = append(b.entries, nil)
	b.byID[id] = idx
	b.byNode[node] = idx

	entry, err := b.entry(node)
	if err != nil {
		return nil, err
	}
	b.entries[idx] = entry
	return types.Ref{Index: idx}, nil
}

func (b *Builder) entry(node types.Type) (types.Type, error) {
	switch x := node.(type) {
	case *types.Opt:
		elem, err := b.add(x.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Opt{Elem: elem}, nil
	case *types.Vec:
		elem, err := b.add(x.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Vec{Elem: elem}, nil
	case *types.Record:
		fields, err := b.fields(x.Fields())
		if err != nil {
			return nil, err
		}
		return types.NewRecord(fields...)
	case *types.Variant:
		fields, err := b.fields(x.Fields())
		if err != nil {
			return nil, err
		}
		return types.NewVariant(fields...)
	case *types.Func:
		args, err := b.list(x.Args)
		if err != nil {
			return nil, err
		}
		rets, err := b.list(x.Rets)
		if err != nil {
			return nil, err
		}
		return &types.Func{Args: args, Rets: rets, Modes: x.Modes}, nil
	case *types.Service:
		ms := x.Methods()
		methods := make([]types.Method, len(ms))
		for i, m := range ms {
			if f := types.Unknot(m.Type); f == nil || f.Kind() != types.KindFunc {
				return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
					Detail("service method %q has non-function type %s", m.Name, m.Type).
					Build()
			}
			ref, err := b.add(m.Type)
			if err != nil {
				return nil, err
			}
			methods[i] = types.Method{Name: m.Name, Type: ref}
		}
		return types.NewService(methods...)
	}
	return nil, errors.New(errors.PhaseTable, errors.KindInvalidData).
		Detail("unsupported type %s", node).
		Build()
}

func (b *Builder) fields(fs []types.Field) ([]types.Field, error) {
	out := make([]types.Field, len(fs))
	for i, f := range fs {
		ref, err := b.add(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = types.Field{Label: f.Label, Type: ref}
	}
	return out, nil
}

func (b *Builder) list(ts []types.Type) ([]types.Type, error) {
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		ref, err := b.add(t)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}
