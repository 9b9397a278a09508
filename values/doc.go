// Package values is the dynamic value model: one Go type per wire kind.
//
// Values are what the encoder consumes and the decoder produces. Each value
// can also infer a type for itself, which is how arguments are encoded when
// the caller does not supply one.
package values
