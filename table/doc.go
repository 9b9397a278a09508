// Package table builds and parses the type table that heads every message.
//
// On the encode side a Builder walks type graphs in pre-order and gives each
// structurally distinct composite node one slot, in first-discovery order.
// Children are written as type references: negative opcodes for primitives,
// slot indices for composites. A child that is structurally equal to a node
// still being built (a recursive type) refers back to that node's slot.
//
// On the decode side Parse reads the same layout and validates it: every
// opcode must be known, every reference must be in range, record and variant
// keys must be strictly increasing and service methods must be sorted,
// unique and of function type.
//
// Both sides represent entries with the types algebra, using types.Ref for
// references between slots.
package table
