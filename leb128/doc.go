// Package leb128 implements the variable-length integer encodings used by the
// wire format: unsigned LEB128 and signed (two's complement) SLEB128.
//
// Each 7 bits of payload occupy one byte; the high bit marks continuation.
// Readers take an explicit bit width for fixed-width targets and report
// an overflow error when the accumulated value does not fit. Nat and Int
// readers/writers work on *big.Int and impose no width limit at all.
package leb128
