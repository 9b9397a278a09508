package types

import (
	"strconv"
)

// Hash computes the 32-bit key of a text label:
// key = key*223 + b (mod 2^32) over the label's UTF-8 bytes.
func Hash(name string) uint32 {
	var key uint32
	for i := 0; i < len(name); i++ {
		key = key*223 + uint32(name[i])
	}
	return key
}

// Label names a record field or variant case.
type Label struct {
	name  string
	id    uint32
	named bool
}

// Named returns a text label keyed by Hash(name).
func Named(name string) Label {
	return Label{name: name, id: Hash(name), named: true}
}

// ID returns a numeric label whose key is id itself.
func ID(id uint32) Label {
	return Label{id: id}
}

// Key returns the label's 32-bit sort and match key.
func (l Label) Key() uint32 {
	return l.id
}

// Name returns the text of a named label.
func (l Label) Name() (string, bool) {
	return l.name, l.named
}

func (l Label) String() string {
	if l.named {
		if isIdent(l.name) {
			return l.name
		}
		return strconv.Quote(l.name)
	}
	return strconv.FormatUint(uint64(l.id), 10)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
