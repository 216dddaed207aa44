package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func userType() Type {
	return Type{
		Name: "user",
		Key:  "id",
		Schema: Schema{
			{Name: "name", Kind: KindString},
			{Name: "age", Kind: KindInt},
			{Name: "tags", Kind: KindString, Array: true},
			{Name: "avatar", Kind: KindBytes},
			{Name: "attachments", Kind: KindBytes, Array: true},
			{Name: "posts", Kind: KindString, Array: true, Inverse: true},
		},
	}
}

func TestEncode(t *testing.T) {
	typ := userType()

	t.Run("RenamesPrimaryKey", func(t *testing.T) {
		rec := FromMap(map[string]any{"id": "abc", "name": "hupe"})
		doc := Encode(typ, rec)

		assert.Equal(t, "abc", doc[IDField])
		assert.Equal(t, "hupe", doc["name"])
		_, hasKey := doc["id"]
		assert.False(t, hasKey)
	})

	t.Run("GeneratesIDWhenAbsent", func(t *testing.T) {
		doc := Encode(typ, FromMap(map[string]any{"name": "hupe"}))

		id, ok := doc[IDField].(string)
		require.True(t, ok)
		assert.Len(t, id, 20)
	})

	t.Run("GeneratesIDWhenEmpty", func(t *testing.T) {
		doc := Encode(typ, FromMap(map[string]any{"id": ""}))

		id, ok := doc[IDField].(string)
		require.True(t, ok)
		assert.Len(t, id, 20)
	})

	t.Run("DefaultsAbsentFields", func(t *testing.T) {
		doc := Encode(typ, FromMap(map[string]any{"id": "abc"}))

		assert.Nil(t, doc["name"])
		assert.Nil(t, doc["age"])
		assert.Equal(t, bson.A{}, doc["tags"])
		assert.Equal(t, bson.A{}, doc["attachments"])
		assert.Nil(t, doc["avatar"])
	})

	t.Run("UnknownFieldsPassThrough", func(t *testing.T) {
		doc := Encode(typ, FromMap(map[string]any{"id": "abc", "extra": 42}))

		assert.Equal(t, 42, doc["extra"])
	})

	t.Run("CoercesBlobToText", func(t *testing.T) {
		blob := []byte{0x00, 0x7f, 0x80, 0xff}
		doc := Encode(typ, FromMap(map[string]any{"id": "abc", "avatar": blob}))

		text, ok := doc["avatar"].(string)
		require.True(t, ok)
		assert.Equal(t, blob, TextToBytes(text))
	})

	t.Run("CoercesBlobArrayElementWise", func(t *testing.T) {
		doc := Encode(typ, FromMap(map[string]any{
			"id":          "abc",
			"attachments": []any{[]byte{0x01}, []byte{0xfe, 0xff}},
		}))

		arr, ok := doc["attachments"].(bson.A)
		require.True(t, ok)
		require.Len(t, arr, 2)
		for _, elem := range arr {
			_, isText := elem.(string)
			assert.True(t, isText)
		}
	})
}

func TestDecode(t *testing.T) {
	typ := userType()

	t.Run("RenamesIdentifier", func(t *testing.T) {
		rec := Decode(typ, bson.M{IDField: "abc", "name": "hupe"})

		id, ok := rec.Get("id")
		require.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("DropsUndeclaredFields", func(t *testing.T) {
		rec := Decode(typ, bson.M{IDField: "abc", "junk": true})

		_, ok := rec.Get("junk")
		assert.False(t, ok)
	})

	t.Run("CoercesTextToBlob", func(t *testing.T) {
		blob := []byte{0x00, 0x10, 0xcc, 0xff}
		rec := Decode(typ, bson.M{IDField: "abc", "avatar": BytesToText(blob)})

		v, ok := rec.Get("avatar")
		require.True(t, ok)
		assert.Equal(t, blob, v)
	})

	t.Run("InverseFieldsAreNotEnumerable", func(t *testing.T) {
		rec := Decode(typ, bson.M{IDField: "abc", "posts": bson.A{"p1", "p2"}})

		v, ok := rec.Get("posts")
		require.True(t, ok)
		assert.Equal(t, bson.A{"p1", "p2"}, v)

		rec.Range(func(name string, _ any) bool {
			assert.NotEqual(t, "posts", name)
			return true
		})
	})
}

func TestRoundTrip(t *testing.T) {
	typ := userType()

	t.Run("DeclaredFields", func(t *testing.T) {
		rec := FromMap(map[string]any{
			"id":   "abc",
			"name": "hupe",
			"age":  42,
			"tags": []any{"go", "db"},
		})

		out := Decode(typ, Encode(typ, rec))

		for _, field := range []string{"id", "name", "age", "tags"} {
			want, _ := rec.Get(field)
			got, ok := out.Get(field)
			require.True(t, ok, field)
			assert.Equal(t, want, got, field)
		}
	})

	t.Run("ScalarBlob", func(t *testing.T) {
		blob := make([]byte, 256)
		for i := range blob {
			blob[i] = byte(i)
		}
		rec := FromMap(map[string]any{"id": "abc", "avatar": blob})

		out := Decode(typ, Encode(typ, rec))

		v, ok := out.Get("avatar")
		require.True(t, ok)
		assert.Equal(t, blob, v)
	})

	t.Run("BlobArray", func(t *testing.T) {
		rec := FromMap(map[string]any{
			"id":          "abc",
			"attachments": []any{[]byte{0x00, 0xff}, []byte{0xde, 0xad, 0xbe, 0xef}},
		})

		out := Decode(typ, Encode(typ, rec))

		v, ok := out.Get("attachments")
		require.True(t, ok)
		assert.Equal(t, []any{[]byte{0x00, 0xff}, []byte{0xde, 0xad, 0xbe, 0xef}}, v)
	})
}
