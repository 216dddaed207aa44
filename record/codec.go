package record

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// IDField is the store-side identifier field. Records are keyed by the
// schema's primary-key field on the ORM side; every read and write renames
// between the two.
const IDField = "_id"

// Encode translates an ORM-side record into the store's native document.
//
// The identifier field receives the record's primary-key value, or a freshly
// generated id when the key is absent or empty. All other own fields are
// copied through, unknown fields included. Declared fields absent from the
// input default to an empty array or to null; declared blob fields are
// coerced to their text encoding.
func Encode(typ Type, rec Record) bson.M {
	doc := bson.M{}

	id, _ := rec.Get(typ.Key)
	doc[IDField] = encodeID(id)

	rec.Range(func(name string, value any) bool {
		if name != typ.Key {
			doc[name] = value
		}
		return true
	})

	for _, f := range typ.Schema {
		if f.Name == typ.Key {
			continue
		}
		v, ok := doc[f.Name]
		if !ok {
			if f.Array {
				doc[f.Name] = bson.A{}
			} else {
				doc[f.Name] = nil
			}
			continue
		}
		if f.Kind == KindBytes && v != nil {
			doc[f.Name] = Coerce(f, v)
		}
	}

	return doc
}

// Decode translates a store document back into an ORM-side record.
//
// The primary-key field is set from the identifier field. Only declared
// fields are carried over: blob fields are coerced back to bytes, inverse
// fields are attached non-enumerably, the rest copy directly. Undeclared
// fields are dropped.
func Decode(typ Type, doc bson.M) Record {
	rec := NewRecord()

	if id, ok := doc[IDField]; ok {
		rec.Set(typ.Key, id)
	}

	for _, f := range typ.Schema {
		v, ok := doc[f.Name]
		if !ok {
			continue
		}
		switch {
		case f.Kind == KindBytes:
			rec.Set(f.Name, uncoerce(f, v))
		case f.Inverse:
			rec.SetInverse(f.Name, v)
		default:
			rec.Set(f.Name, v)
		}
	}

	return rec
}

func encodeID(v any) string {
	switch x := v.(type) {
	case nil:
		return NewID()
	case string:
		if x == "" {
			return NewID()
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

func uncoerce(f Field, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return TextToBytes(x)
	case bson.A:
		return uncoerceSlice(f, x)
	case []any:
		return uncoerceSlice(f, x)
	default:
		return v
	}
}

func uncoerceSlice(f Field, in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = uncoerce(f, v)
	}
	return out
}
