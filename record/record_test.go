package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	t.Run("SetGetDelete", func(t *testing.T) {
		rec := NewRecord()
		rec.Set("name", "hupe")

		v, ok := rec.Get("name")
		require.True(t, ok)
		assert.Equal(t, "hupe", v)

		rec.Delete("name")
		_, ok = rec.Get("name")
		assert.False(t, ok)
	})

	t.Run("InverseReadableButNotEnumerable", func(t *testing.T) {
		rec := NewRecord()
		rec.Set("name", "hupe")
		rec.SetInverse("posts", []any{"p1"})

		v, ok := rec.Get("posts")
		require.True(t, ok)
		assert.Equal(t, []any{"p1"}, v)

		assert.Equal(t, 1, rec.Len())

		var seen []string
		rec.Range(func(name string, _ any) bool {
			seen = append(seen, name)
			return true
		})
		assert.Equal(t, []string{"name"}, seen)

		_, inMap := rec.Map()["posts"]
		assert.False(t, inMap)
	})

	t.Run("OwnFieldShadowsInverse", func(t *testing.T) {
		rec := NewRecord()
		rec.SetInverse("posts", "denormalized")
		rec.Set("posts", "own")

		v, _ := rec.Get("posts")
		assert.Equal(t, "own", v)
	})

	t.Run("FromMapCopies", func(t *testing.T) {
		src := map[string]any{"name": "hupe"}
		rec := FromMap(src)
		src["name"] = "changed"

		v, _ := rec.Get("name")
		assert.Equal(t, "hupe", v)
	})
}
