package record

// Kind identifies the declared value type of a schema field.
type Kind uint8

const (
	// KindAny places no type expectation on the field.
	KindAny Kind = iota
	// KindString represents a text value.
	KindString
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a floating point value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
	// KindBytes marks a binary blob field. Blobs have no native store
	// representation and are coerced to a length-preserving text encoding
	// on write and back on read.
	KindBytes
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// Field describes a single declared field of a record type.
type Field struct {
	Name  string
	Kind  Kind
	Array bool

	// Inverse marks a field whose value is denormalized from a relationship.
	// It is attached to decoded records but excluded from field enumeration,
	// and is never treated as an own field on output.
	Inverse bool
}

// Schema is the ordered list of field descriptors for a record type.
//
// Order is significant: the codec applies absent-field defaults in
// declaration order.
type Schema []Field

// Lookup returns the descriptor for the named field.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Type describes a record type. Name doubles as the store file name, Key is
// the primary-key field name used by the caller's record model.
type Type struct {
	Name   string
	Key    string
	Schema Schema
}
