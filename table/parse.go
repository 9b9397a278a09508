package table

import (
	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/internal/binary"
	"github.com/wippyai/candid-go/types"
)

// Parse reads and validates a type table. A positive maxEntries bounds the
// declared entry count.
func Parse(r *binary.Reader, maxEntries int) (*Table, error) {
	n, err := r.ReadLen()
	if err != nil {
		return nil, err
	}
	if maxEntries > 0 && n > maxEntries {
		return nil, errors.LimitExceeded(nil, "type table entries", n, maxEntries)
	}

	p := &parser{r: r, n: n}
	entries := make([]types.Type, 0, min(n, r.Remaining()))
	for i := range n {
		e, err := p.entry(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	t := &Table{entries: entries}
	for i, e := range entries {
		s, ok := e.(*types.Service)
		if !ok {
			continue
		}
		for _, m := range s.Methods() {
			target, _ := t.Resolve(m.Type)
			if target.Kind() != types.KindFunc {
				return nil, errors.MalformedTable(i, "method %q refers to %s, not a func", m.Name, target.Kind())
			}
		}
	}
	return t, nil
}

type parser struct {
	r *binary.Reader
	n int
}

func (p *parser) entry(idx int) (types.Type, error) {
	op, err := p.r.ReadTypeRef()
	if err != nil {
		return nil, err
	}
	switch op {
	case OpOpt:
		elem, err := p.ref(idx)
		if err != nil {
			return nil, err
		}
		return &types.Opt{Elem: elem}, nil
	case OpVec:
		elem, err := p.ref(idx)
		if err != nil {
			return nil, err
		}
		return &types.Vec{Elem: elem}, nil
	case OpRecord, OpVariant:
		fields, err := p.fields(idx)
		if err != nil {
			return nil, err
		}
		if op == OpRecord {
			return types.NewRecord(fields...)
		}
		return types.NewVariant(fields...)
	case OpFunc:
		return p.function(idx)
	case OpService:
		return p.service(idx)
	}
	if op >= 0 {
		return nil, errors.MalformedTable(idx, "entry opcode %d is a table index", op)
	}
	if _, ok := primitiveOf(op); ok {
		return nil, errors.MalformedTable(idx, "primitive opcode %d cannot be a table entry", op)
	}
	return nil, errors.MalformedTable(idx, "unknown opcode %d", op)
}

// ref reads a child reference: a primitive opcode or an index below n.
func (p *parser) ref(idx int) (types.Type, error) {
	ref, err := p.r.ReadTypeRef()
	if err != nil {
		return nil, err
	}
	if ref >= 0 {
		if ref >= int64(p.n) {
			return nil, errors.MalformedTable(idx, "reference %d out of range (table has %d entries)", ref, p.n)
		}
		return types.Ref{Index: int(ref)}, nil
	}
	t, ok := primitiveOf(ref)
	if !ok {
		return nil, errors.MalformedTable(idx, "opcode %d used as a type reference", ref)
	}
	return t, nil
}

func (p *parser) count(idx int) (int, error) {
	n, err := p.r.ReadLen()
	if err != nil {
		return 0, err
	}
	// Every counted item takes at least one byte.
	if n > p.r.Remaining() {
		return 0, errors.UnexpectedEOF(p.r.Position(), n, p.r.Remaining())
	}
	return n, nil
}

func (p *parser) fields(idx int) ([]types.Field, error) {
	n, err := p.count(idx)
	if err != nil {
		return nil, err
	}
	fields := make([]types.Field, n)
	for i := range n {
		key, err := p.r.ReadULEB(32)
		if err != nil {
			return nil, err
		}
		if i > 0 && uint32(key) <= fields[i-1].Key() {
			return nil, errors.MalformedTable(idx, "field key %d after %d: keys must be strictly increasing", key, fields[i-1].Key())
		}
		t, err := p.ref(idx)
		if err != nil {
			return nil, err
		}
		fields[i] = types.FID(uint32(key), t)
	}
	return fields, nil
}

func (p *parser) refs(idx int) ([]types.Type, error) {
	n, err := p.count(idx)
	if err != nil {
		return nil, err
	}
	ts := make([]types.Type, n)
	for i := range n {
		if ts[i], err = p.ref(idx); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (p *parser) function(idx int) (types.Type, error) {
	args, err := p.refs(idx)
	if err != nil {
		return nil, err
	}
	rets, err := p.refs(idx)
	if err != nil {
		return nil, err
	}
	n, err := p.count(idx)
	if err != nil {
		return nil, err
	}
	var modes []types.FuncMode
	for range n {
		b, err := p.r.ReadByte()
		if err != nil {
			return nil, err
		}
		m := types.FuncMode(b)
		if m < types.ModeQuery || m > types.ModeCompositeQuery {
			return nil, errors.MalformedTable(idx, "unknown function annotation %d", b)
		}
		modes = append(modes, m)
	}
	return &types.Func{Args: args, Rets: rets, Modes: modes}, nil
}

func (p *parser) service(idx int) (types.Type, error) {
	n, err := p.count(idx)
	if err != nil {
		return nil, err
	}
	methods := make([]types.Method, n)
	for i := range n {
		name, err := p.r.ReadText(0)
		if err != nil {
			return nil, err
		}
		if i > 0 && name <= methods[i-1].Name {
			return nil, errors.MalformedTable(idx, "method %q after %q: names must be sorted and unique", name, methods[i-1].Name)
		}
		ref, err := p.r.ReadTypeRef()
		if err != nil {
			return nil, err
		}
		if ref < 0 || ref >= int64(p.n) {
			return nil, errors.MalformedTable(idx, "method %q type %d is not a table index", name, ref)
		}
		methods[i] = types.Method{Name: name, Type: types.Ref{Index: int(ref)}}
	}
	return types.NewService(methods...)
}
