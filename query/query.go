package query

import "go.mongodb.org/mongo-driver/bson"

// SortOrder is a single sort key. Slice order is significant: earlier keys
// dominate.
type SortOrder struct {
	Field      string
	Descending bool
}

// Options is the abstract query the ORM layer hands to Find.
//
// The filter expression is the nested combination of And, Or, Not, Range,
// Match and Exists. The remaining fields shape the result set only and are
// ignored by the filter compiler.
type Options struct {
	// And and Or map clause names to sub-queries. Each sub-query compiles
	// independently; the results combine under the corresponding native
	// boolean combinator.
	And map[string]*Options
	Or  map[string]*Options

	// Not negates every clause its sub-query produces. The negation is
	// shallow; see Translate.
	Not *Options

	// Range maps a field to a [lower, upper] bound pair. Either slot may be
	// nil to leave that side open. On array fields the bounds constrain
	// length instead of value.
	Range map[string][]any

	// Match maps a field to a value (equality) or to a sequence of values
	// (membership).
	Match map[string]any

	// Exists asserts field presence. On array fields presence means
	// non-empty.
	Exists map[string]bool

	// Fields is a projection: truthy values include, falsy values exclude.
	Fields map[string]bool

	// Sort orders the result set.
	Sort []SortOrder

	// Offset and Limit page the result set.
	Offset int64
	Limit  int64

	// Query is an escape hatch: it receives the compiled native filter and
	// may return a replacement. Returning nil keeps the compiled filter.
	Query func(filter bson.M) bson.M
}
