// Package record implements the record codec: the bidirectional mapping
// between the caller's record representation (keyed by a schema-declared
// primary-key field) and the store's native document representation (keyed
// by an internal identifier field), including blob text coercion and the
// non-enumerable attachment of denormalized fields.
package record
