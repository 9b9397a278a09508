package candid

import (
	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/types"
	"github.com/wippyai/candid-go/values"
)

// Marshaler is implemented by Go types that describe and serialize
// themselves.
type Marshaler interface {
	IDLType() types.Type
	MarshalIDL(w *ValueWriter) error
}

// Unmarshaler is implemented by Go types that can be filled from a value
// decoded against their own type.
type Unmarshaler interface {
	IDLType() types.Type
	UnmarshalIDL(v values.Value) error
}

// ValueWriter receives the single value a Marshaler produces.
type ValueWriter struct {
	v values.Value
}

// Write sets the value. It may be called once.
func (w *ValueWriter) Write(v values.Value) error {
	if w.v != nil {
		return errors.New(errors.PhaseEncode, errors.KindEncode).
			Detail("MarshalIDL wrote more than one value").
			Build()
	}
	if v == nil {
		return errors.New(errors.PhaseEncode, errors.KindEncode).
			Detail("MarshalIDL wrote a nil value").
			Build()
	}
	w.v = v
	return nil
}

// WriteRecord sorts fields and writes them as a record.
func (w *ValueWriter) WriteRecord(fields ...values.Field) error {
	r, err := values.NewRecord(fields...)
	if err != nil {
		return err
	}
	return w.Write(r)
}

// WriteVariant writes the case name carrying v.
func (w *ValueWriter) WriteVariant(name string, v values.Value) error {
	return w.Write(values.NewVariant(name, v))
}

// Value returns what was written, or nil.
func (w *ValueWriter) Value() values.Value {
	return w.v
}
