// Package principal converts principal identifiers between their raw byte
// form and the dash-grouped, checksum-guarded text form.
//
// The text form is base32 (lowercase, unpadded) over a big-endian CRC32 of
// the bytes followed by the bytes themselves, split into groups of five
// characters joined by '-'.
package principal

import (
	"crypto/sha256"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/multiformats/go-base32"

	"github.com/wippyai/candid-go/errors"
)

// MaxLength is the longest principal accepted by FromBytes and FromText.
const MaxLength = 29

const (
	typeSelfAuthenticating = 0x02
	typeAnonymous          = 0x04
)

var encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Principal is an immutable identity. The zero value is the management
// canister (the empty principal). Principals are comparable with ==.
type Principal struct {
	raw string
}

// FromBytes copies b into a Principal.
func FromBytes(b []byte) (Principal, error) {
	if len(b) > MaxLength {
		return Principal{}, errors.TooLong(errors.PhaseText, "principal", uint64(len(b)), MaxLength)
	}
	return Principal{raw: string(b)}, nil
}

// MustFromBytes is FromBytes that panics on error.
func MustFromBytes(b []byte) Principal {
	p, err := FromBytes(b)
	if err != nil {
		panic(err)
	}
	return p
}

// Management returns the empty principal.
func Management() Principal {
	return Principal{}
}

// Anonymous returns the principal used by unauthenticated callers.
func Anonymous() Principal {
	return Principal{raw: string([]byte{typeAnonymous})}
}

// SelfAuthenticating derives the principal owned by a DER-encoded public key.
func SelfAuthenticating(publicKey []byte) Principal {
	sum := sha256.Sum224(publicKey)
	return Principal{raw: string(sum[:]) + string([]byte{typeSelfAuthenticating})}
}

// Bytes returns a copy of the raw identifier.
func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

// Len returns the raw identifier length.
func (p Principal) Len() int {
	return len(p.raw)
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p.raw == string([]byte{typeAnonymous})
}

func (p Principal) String() string {
	return Text([]byte(p.raw))
}

// MarshalText implements encoding.TextMarshaler.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Principal) UnmarshalText(text []byte) error {
	v, err := FromText(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Text renders raw bytes in principal text form. Unlike Principal.String it
// accepts any length.
func Text(b []byte) string {
	buf := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(b))
	copy(buf[4:], b)
	s := encoding.EncodeToString(buf)

	var out strings.Builder
	out.Grow(len(s) + len(s)/5)
	for i := 0; i < len(s); i += 5 {
		if i > 0 {
			out.WriteByte('-')
		}
		out.WriteString(s[i:min(i+5, len(s))])
	}
	return out.String()
}

// FromText parses the text form. The input must be exactly what String
// would produce: lowercase, grouped by five, with a matching checksum.
func FromText(text string) (Principal, error) {
	data, err := encoding.DecodeString(strings.ReplaceAll(text, "-", ""))
	if err != nil {
		return Principal{}, errors.New(errors.PhaseText, errors.KindInvalidText).
			Value(text).
			Cause(err).
			Detail("not base32").
			Build()
	}
	if len(data) < 4 {
		return Principal{}, errors.New(errors.PhaseText, errors.KindInvalidText).
			Value(text).
			Detail("too short to hold a checksum").
			Build()
	}
	body := data[4:]
	if len(body) > MaxLength {
		return Principal{}, errors.TooLong(errors.PhaseText, "principal", uint64(len(body)), MaxLength)
	}
	if got, want := binary.BigEndian.Uint32(data), crc32.ChecksumIEEE(body); got != want {
		return Principal{}, errors.New(errors.PhaseText, errors.KindChecksumMismatch).
			Value(text).
			Detail("checksum %08x, computed %08x", got, want).
			Build()
	}
	p := Principal{raw: string(body)}
	if canonical := p.String(); canonical != text {
		return Principal{}, errors.New(errors.PhaseText, errors.KindInvalidText).
			Value(text).
			Detail("expected canonical form %s", canonical).
			Build()
	}
	return p, nil
}
