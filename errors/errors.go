package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode Phase = "encode" // value to bytes
	PhaseDecode Phase = "decode" // bytes to value
	PhaseTable  Phase = "table"  // type table construction and parsing
	PhaseConfig Phase = "config" // configuration loading
	PhaseText   Phase = "text"   // textual principal form
)

// Kind categorizes the error
type Kind string

const (
	KindEncode               Kind = "encode_mismatch"
	KindBadMagic             Kind = "bad_magic"
	KindMalformedTable       Kind = "malformed_table"
	KindUnexpectedEOF        Kind = "unexpected_eof"
	KindOverflow             Kind = "overflow"
	KindInvalidUTF8          Kind = "invalid_utf8"
	KindTooLong              Kind = "too_long"
	KindUnknownVariantTag    Kind = "unknown_variant_tag"
	KindFieldSubtypeMismatch Kind = "field_subtype_mismatch"
	KindMissingRequiredField Kind = "missing_required_field"
	KindInvalidData          Kind = "invalid_data"
	KindLimitExceeded        Kind = "limit_exceeded"
	KindInvalidText          Kind = "invalid_text"
	KindChecksumMismatch     Kind = "checksum_mismatch"
)

// maxPathShown bounds the path elements an error message prints. Longer
// paths keep both ends.
const maxPathShown = 16

func writePath(b *strings.Builder, path []string) {
	if len(path) <= maxPathShown {
		b.WriteString(strings.Join(path, "."))
		return
	}
	half := maxPathShown / 2
	b.WriteString(strings.Join(path[:half], "."))
	b.WriteString(".<")
	b.WriteString(strconv.Itoa(len(path) - maxPathShown))
	b.WriteString(" more>.")
	b.WriteString(strings.Join(path[len(path)-half:], "."))
}

// NoIndex marks an Error that is not tied to a type-table entry.
const NoIndex = -1

// Error is the structured error type used throughout the codec
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	Expected   string
	Wire       string
	Detail     string
	Path       []string
	TableIndex int
	Key        uint32
	HasKey     bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		writePath(&b, e.Path)
	}

	if e.TableIndex > NoIndex || e.HasKey {
		b.WriteString(" (")
		if e.TableIndex > NoIndex {
			b.WriteString("table[")
			b.WriteString(strconv.Itoa(e.TableIndex))
			b.WriteByte(']')
			if e.HasKey {
				b.WriteByte(' ')
			}
		}
		if e.HasKey {
			b.WriteString("key ")
			b.WriteString(strconv.FormatUint(uint64(e.Key), 10))
		}
		b.WriteByte(')')
	}

	if e.Expected != "" || e.Wire != "" {
		b.WriteString(": ")
		if e.Expected != "" && e.Wire != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			b.WriteString(", wire ")
			b.WriteString(e.Wire)
		} else if e.Expected != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		} else {
			b.WriteString("wire ")
			b.WriteString(e.Wire)
		}
	}

	if e.Detail != "" {
		if e.Expected != "" || e.Wire != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Kind-only sentinels for errors.Is.
var (
	ErrEncode               = &Error{Kind: KindEncode, TableIndex: NoIndex}
	ErrBadMagic             = &Error{Kind: KindBadMagic, TableIndex: NoIndex}
	ErrMalformedTable       = &Error{Kind: KindMalformedTable, TableIndex: NoIndex}
	ErrUnexpectedEOF        = &Error{Kind: KindUnexpectedEOF, TableIndex: NoIndex}
	ErrOverflow             = &Error{Kind: KindOverflow, TableIndex: NoIndex}
	ErrInvalidUTF8          = &Error{Kind: KindInvalidUTF8, TableIndex: NoIndex}
	ErrTooLong              = &Error{Kind: KindTooLong, TableIndex: NoIndex}
	ErrUnknownVariantTag    = &Error{Kind: KindUnknownVariantTag, TableIndex: NoIndex}
	ErrFieldSubtypeMismatch = &Error{Kind: KindFieldSubtypeMismatch, TableIndex: NoIndex}
	ErrMissingRequiredField = &Error{Kind: KindMissingRequiredField, TableIndex: NoIndex}
	ErrInvalidData          = &Error{Kind: KindInvalidData, TableIndex: NoIndex}
	ErrLimitExceeded        = &Error{Kind: KindLimitExceeded, TableIndex: NoIndex}
	ErrInvalidText          = &Error{Kind: KindInvalidText, TableIndex: NoIndex}
	ErrChecksumMismatch     = &Error{Kind: KindChecksumMismatch, TableIndex: NoIndex}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:      phase,
			Kind:       kind,
			TableIndex: NoIndex,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Expected sets the rendered expected type
func (b *Builder) Expected(t string) *Builder {
	b.err.Expected = t
	return b
}

// Wire sets the rendered wire type
func (b *Builder) Wire(t string) *Builder {
	b.err.Wire = t
	return b
}

// TableIndex sets the type-table index involved
func (b *Builder) TableIndex(idx int) *Builder {
	b.err.TableIndex = idx
	return b
}

// Key sets the record field or variant tag key involved
func (b *Builder) Key(k uint32) *Builder {
	b.err.Key = k
	b.err.HasKey = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Encode creates an error for a value that does not conform to its declared type
func Encode(path []string, expected, got string) *Error {
	return &Error{
		Phase:      PhaseEncode,
		Kind:       KindEncode,
		Path:       path,
		Expected:   expected,
		Detail:     "value " + got + " does not conform",
		TableIndex: NoIndex,
	}
}

// BadMagic creates a bad header error
func BadMagic(got []byte) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindBadMagic,
		Detail:     fmt.Sprintf("header %x is not DIDL", got),
		TableIndex: NoIndex,
	}
}

// MalformedTable creates a type table error for the entry at idx
func MalformedTable(idx int, detail string, args ...any) *Error {
	return &Error{
		Phase:      PhaseTable,
		Kind:       KindMalformedTable,
		Detail:     fmt.Sprintf(detail, args...),
		TableIndex: idx,
	}
}

// UnexpectedEOF creates a truncated input error
func UnexpectedEOF(offset, want, have int) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindUnexpectedEOF,
		Detail:     fmt.Sprintf("at offset %d: need %d bytes, %d remaining", offset, want, have),
		TableIndex: NoIndex,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindOverflow,
		Path:       path,
		Expected:   target,
		Detail:     fmt.Sprintf("value %v overflows %s", value, target),
		Value:      value,
		TableIndex: NoIndex,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:      phase,
		Kind:       KindInvalidUTF8,
		Path:       path,
		Detail:     fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
		TableIndex: NoIndex,
	}
}

// TooLong creates an error for a length prefix above the allowed maximum
func TooLong(phase Phase, what string, length, max uint64) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTooLong,
		Detail:     fmt.Sprintf("%s length %d exceeds maximum %d", what, length, max),
		Value:      length,
		TableIndex: NoIndex,
	}
}

// UnknownVariantTag creates an error for a variant tag the expected type lacks
func UnknownVariantTag(path []string, idx int, key uint32, expected string) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindUnknownVariantTag,
		Path:       path,
		Expected:   expected,
		Detail:     fmt.Sprintf("variant tag %d not in expected type", key),
		TableIndex: idx,
		Key:        key,
		HasKey:     true,
	}
}

// MissingRequiredField creates an error for a non-optional field absent from the wire type
func MissingRequiredField(path []string, idx int, key uint32, expected string) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindMissingRequiredField,
		Path:       path,
		Expected:   expected,
		Detail:     fmt.Sprintf("required field %d not found", key),
		TableIndex: idx,
		Key:        key,
		HasKey:     true,
	}
}

// SubtypeMismatch creates an error for a wire type that cannot be read as the expected type
func SubtypeMismatch(path []string, idx int, expected, wire string) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindFieldSubtypeMismatch,
		Path:       path,
		Expected:   expected,
		Wire:       wire,
		TableIndex: idx,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindInvalidData,
		Path:       path,
		Detail:     detail,
		TableIndex: NoIndex,
	}
}

// LimitExceeded creates an error for a decoder limit being hit
func LimitExceeded(path []string, limit string, value, max int) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindLimitExceeded,
		Path:       path,
		Detail:     fmt.Sprintf("%s %d exceeds limit %d", limit, value, max),
		Value:      value,
		TableIndex: NoIndex,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       kind,
		Detail:     detail,
		Cause:      cause,
		TableIndex: NoIndex,
	}
}

// WithPath returns err with path prepended when err is an *Error; other errors pass through.
func WithPath(err error, path []string) error {
	e, ok := err.(*Error)
	if !ok || len(path) == 0 {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), e.Path...)
	return &cp
}
