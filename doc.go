// Package candid implements a self-describing binary serialization format for
// typed values, with structural subtyping on decode.
//
// A message is the 4-byte magic "DIDL", a type table, the list of argument
// types and the argument values. Because the table travels with the message,
// a reader needs no shared schema: it decodes each argument against the type
// it expects, and the wire type only has to be a subtype of it. This is what
// lets interfaces evolve. Records may gain optional fields or lose fields the
// reader ignores, optional values that no longer fit degrade to None, and
// trailing arguments may be added or dropped.
//
// # Architecture Overview
//
//	candid/              Encoder, Decoder, subtyping, Marshaler/Unmarshaler
//	├── types/           Type algebra, label hashing, structural identity
//	├── table/           Type table builder and parser
//	├── values/          Dynamic value model
//	├── leb128/          LEB128 and SLEB128, fixed width and unbounded
//	├── principal/       Principal text form
//	├── errors/          Structured error types
//	├── config/          Loading decode limits from YAML or JSON
//	├── export/          Decoded values as JSON, CBOR or MessagePack
//	└── cmd/idldump/     Message inspector
//
// # Quick Start
//
// Encode a record and read it back with a newer type that added a field:
//
//	v1 := types.MustRecord(types.F("name", types.Text))
//	data, err := candid.Serialize(
//	    []values.Value{values.MustRecord(values.F("name", values.Text("ada")))},
//	    []types.Type{v1},
//	)
//
//	v2 := types.MustRecord(
//	    types.F("name", types.Text),
//	    types.F("email", types.OptOf(types.Text)),
//	)
//	vals, err := candid.Deserialize(data, []types.Type{v2})
//	// vals[0] is record { name = "ada"; email = null }
//
// # Recursive Types
//
// A recursive type is built around a Knot, which is used before it is tied:
//
//	list := types.NewKnot("list")
//	list.Set(types.OptOf(types.MustRecord(
//	    types.F("head", types.Int),
//	    types.F("tail", list),
//	)))
//
// The table builder gives each distinct node one slot however often the
// recursion is unrolled in the value.
//
// # Limits
//
// Decoding is bounded by Config: table size, nesting depth, vector and blob
// lengths. The limits protect against small inputs that expand into large
// allocations or deep recursion.
//
// # Logging
//
// The package logs at debug level through a zap logger installed with
// SetLogger. It never logs payload bytes.
package candid
