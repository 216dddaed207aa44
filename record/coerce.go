package record

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// BytesToText encodes a blob as text, one character per byte (code points
// U+0000 through U+00FF). The encoding preserves length in characters and is
// bit-exact on round-trip.
func BytesToText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// TextToBytes reverses BytesToText.
func TextToBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

// Coerce applies the field's storage coercion to a query or record value:
// blob values become text, sequences are coerced element-wise, everything
// else is passed through unchanged.
func Coerce(f Field, v any) any {
	if f.Kind != KindBytes {
		return v
	}
	switch x := v.(type) {
	case []byte:
		return BytesToText(x)
	case bson.A:
		return coerceSlice(f, x)
	case []any:
		return coerceSlice(f, x)
	default:
		return v
	}
}

func coerceSlice(f Field, in []any) bson.A {
	out := make(bson.A, len(in))
	for i, v := range in {
		out[i] = Coerce(f, v)
	}
	return out
}
