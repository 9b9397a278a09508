// Package errors provides structured error types for the candid codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the context a caller needs to locate a failure in a message:
// the value path, the expected and wire type, the type-table index and the
// record/variant key involved.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindFieldSubtypeMismatch).
//		Path("settings", "controller").
//		Expected("principal").
//		Wire("text").
//		TableIndex(3).
//		Key(79599772).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedEOF(offset, 10, 4)
//	err := errors.Encode(path, "nat", "text")
//
// Sentinels such as ErrBadMagic or ErrUnknownVariantTag match any error of the
// same Kind through errors.Is, whatever its phase:
//
//	if errors.Is(err, errors.ErrUnexpectedEOF) { ... }
package errors
