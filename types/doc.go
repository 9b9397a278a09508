// Package types defines the structural type algebra carried by every message.
//
// A Type is one node of a type graph: a Primitive, an Opt or Vec wrapper, a
// Record or Variant with labelled members, a Func, a Service, a Knot (the
// placeholder used to close recursive types) or a Ref (an index into a parsed
// type table).
//
// Record and Variant members are keyed by a 32-bit hash of their label and kept
// sorted by that key, so member order in the source never affects the wire
// layout. Numeric labels use their own value as key; a numeric label and a text
// label can therefore collide, and the constructors report such a collision as
// a duplicate key.
//
// Two type graphs are compared with Equal and identified with Identity, a
// BLAKE3 digest of the graph's canonical form. Identity is what the table
// builder uses to assign one table slot per distinct type.
package types
