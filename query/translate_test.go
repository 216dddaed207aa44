package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hupe1980/docbolt/record"
)

func testSchema() record.Schema {
	return record.Schema{
		{Name: "status", Kind: record.KindString},
		{Name: "age", Kind: record.KindInt},
		{Name: "tags", Kind: record.KindString, Array: true},
		{Name: "avatar", Kind: record.KindBytes},
	}
}

func TestTranslate(t *testing.T) {
	schema := testSchema()

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, bson.M{}, Translate(schema, nil))
		assert.Equal(t, bson.M{}, Translate(schema, &Options{}))
	})

	t.Run("MatchEquality", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Match: map[string]any{"status": "active"},
		})
		assert.Equal(t, bson.M{"status": "active"}, filter)
	})

	t.Run("MatchMembership", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Match: map[string]any{"status": []any{"active", "pending"}},
		})
		assert.Equal(t, bson.M{"status": bson.M{"$in": bson.A{"active", "pending"}}}, filter)
	})

	t.Run("MatchCoercesBlob", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Match: map[string]any{"avatar": []byte{0x01, 0x02}},
		})
		assert.Equal(t, bson.M{"avatar": record.BytesToText([]byte{0x01, 0x02})}, filter)
	})

	t.Run("RangeOnArrayField", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Range: map[string][]any{"tags": {2, 5}},
		})
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"tags.1": bson.M{"$exists": true}},
			bson.M{"tags.5": bson.M{"$exists": false}},
		}}, filter)
	})

	t.Run("RangeOnArrayFieldLowerOnly", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Range: map[string][]any{"tags": {3, nil}},
		})
		assert.Equal(t, bson.M{"tags.2": bson.M{"$exists": true}}, filter)
	})

	t.Run("RangeOnScalarField", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Range: map[string][]any{"age": {18, 65}},
		})
		assert.Equal(t, bson.M{"age": bson.M{"$ne": nil, "$gte": 18, "$lte": 65}}, filter)
	})

	t.Run("RangeOnScalarFieldUpperOnly", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Range: map[string][]any{"age": {nil, 65}},
		})
		assert.Equal(t, bson.M{"age": bson.M{"$ne": nil, "$lte": 65}}, filter)
	})

	t.Run("RangeDropsUnknownField", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Range: map[string][]any{"nope": {1, 2}},
		})
		assert.Equal(t, bson.M{}, filter)
	})

	t.Run("ExistsScalar", func(t *testing.T) {
		filter := Translate(schema, &Options{Exists: map[string]bool{"status": true}})
		assert.Equal(t, bson.M{"status": bson.M{"$ne": nil}}, filter)

		filter = Translate(schema, &Options{Exists: map[string]bool{"status": false}})
		assert.Equal(t, bson.M{"status": nil}, filter)
	})

	t.Run("ExistsArray", func(t *testing.T) {
		filter := Translate(schema, &Options{Exists: map[string]bool{"tags": true}})
		assert.Equal(t, bson.M{"tags": bson.M{"$ne": bson.A{}}}, filter)

		filter = Translate(schema, &Options{Exists: map[string]bool{"tags": false}})
		assert.Equal(t, bson.M{"tags": bson.A{}}, filter)
	})

	t.Run("ExistsDropsUnknownField", func(t *testing.T) {
		filter := Translate(schema, &Options{Exists: map[string]bool{"nope": true}})
		assert.Equal(t, bson.M{}, filter)
	})

	t.Run("MultipleClausesConjoin", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Match:  map[string]any{"status": "active"},
			Exists: map[string]bool{"tags": true},
		})
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"status": "active"},
			bson.M{"tags": bson.M{"$ne": bson.A{}}},
		}}, filter)
	})

	t.Run("AndCombinator", func(t *testing.T) {
		filter := Translate(schema, &Options{
			And: map[string]*Options{
				"a": {Match: map[string]any{"status": "active"}},
				"b": {Exists: map[string]bool{"status": true}},
			},
		})
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"status": "active"},
			bson.M{"status": bson.M{"$ne": nil}},
		}}, filter)
	})

	t.Run("OrCombinator", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Or: map[string]*Options{
				"a": {Match: map[string]any{"status": "active"}},
				"b": {Match: map[string]any{"status": "pending"}},
			},
		})
		assert.Equal(t, bson.M{"$or": bson.A{
			bson.M{"status": "active"},
			bson.M{"status": "pending"},
		}}, filter)
	})

	t.Run("NotNegatesLeafClauses", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Not: &Options{Match: map[string]any{"status": "active"}},
		})
		assert.Equal(t, bson.M{"status": bson.M{"$not": "active"}}, filter)
	})

	t.Run("NotNegatesEachClause", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Not: &Options{Match: map[string]any{
				"age":    42,
				"status": "active",
			}},
		})
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"age": bson.M{"$not": 42}},
			bson.M{"status": bson.M{"$not": "active"}},
		}}, filter)
	})

	t.Run("DoubleNegationCancels", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Not: &Options{Not: &Options{Match: map[string]any{"status": "active"}}},
		})
		assert.Equal(t, bson.M{"status": "active"}, filter)
	})

	t.Run("NotOverCombinatorStaysShallow", func(t *testing.T) {
		// Negation wraps the compiled $or clause itself rather than
		// distributing over its members. Downstream shapes depend on it.
		filter := Translate(schema, &Options{
			Not: &Options{
				Or: map[string]*Options{
					"a": {Match: map[string]any{"status": "active"}},
					"b": {Match: map[string]any{"status": "pending"}},
				},
			},
		})
		require.Contains(t, filter, "$or")
		assert.Equal(t, bson.M{"$not": bson.A{
			bson.M{"status": "active"},
			bson.M{"status": "pending"},
		}}, filter["$or"])
	})

	t.Run("NegationDoesNotPropagateIntoCombinators", func(t *testing.T) {
		filter := Translate(schema, &Options{
			Not: &Options{
				And: map[string]*Options{
					"a": {Match: map[string]any{"status": "active"}},
				},
				Match: map[string]any{"age": 42},
			},
		})
		// The and-branch compiles un-negated; both top-level clauses are
		// then wrapped shallowly.
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"$and": bson.M{"$not": bson.A{bson.M{"status": "active"}}}},
			bson.M{"age": bson.M{"$not": 42}},
		}}, filter)
	})
}
