package query

import (
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hupe1980/docbolt/record"
)

// Translate compiles an abstract query into the store's native filter.
//
// Clauses collected at one level combine by native conjunction: zero clauses
// yield the match-all filter, exactly one clause is returned unwrapped, more
// than one is wrapped in $and.
//
// Negation introduced by Not is applied post-hoc and shallowly: every clause
// produced by the negated sub-query has its top-level keys wrapped in $not,
// including compiled $and/$or combinator clauses. This is not a semantic
// boolean negation of nested combinators, and callers depend on the exact
// shapes it produces, so it must stay as is.
func Translate(schema record.Schema, opts *Options) bson.M {
	return translate(schema, opts, false)
}

func translate(schema record.Schema, opts *Options, negate bool) bson.M {
	if opts == nil {
		return bson.M{}
	}

	var clauses []bson.M

	if len(opts.And) > 0 {
		clauses = append(clauses, bson.M{"$and": combinator(schema, opts.And)})
	}
	if len(opts.Or) > 0 {
		clauses = append(clauses, bson.M{"$or": combinator(schema, opts.Or)})
	}

	if opts.Not != nil {
		if sub := translate(schema, opts.Not, !negate); len(sub) > 0 {
			clauses = append(clauses, sub)
		}
	}

	for _, name := range sortedKeys(opts.Range) {
		clauses = append(clauses, rangeClauses(schema, name, opts.Range[name])...)
	}

	for _, name := range sortedKeys(opts.Match) {
		f, _ := schema.Lookup(name)
		clauses = append(clauses, matchClause(f, name, opts.Match[name]))
	}

	for _, name := range sortedKeys(opts.Exists) {
		f, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		clauses = append(clauses, existsClause(f, name, opts.Exists[name]))
	}

	if negate {
		for _, c := range clauses {
			for k, v := range c {
				c[k] = bson.M{"$not": v}
			}
		}
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		sub := make(bson.A, len(clauses))
		for i, c := range clauses {
			sub[i] = c
		}
		return bson.M{"$and": sub}
	}
}

// combinator compiles named sub-queries. Negation never propagates into
// combinator branches.
func combinator(schema record.Schema, subs map[string]*Options) bson.A {
	out := make(bson.A, 0, len(subs))
	for _, name := range sortedKeys(subs) {
		out = append(out, translate(schema, subs[name], false))
	}
	return out
}

// rangeClauses compiles a [lower, upper] bound pair for one field.
//
// Array fields translate bounds into length assertions: a lower bound of n
// asserts that index n-1 exists, an upper bound of n asserts that index n
// does not. Scalar fields get a not-null constraint plus optional $gte/$lte
// bounds, value-coerced per the field's kind. Fields absent from the schema
// produce nothing.
func rangeClauses(schema record.Schema, name string, bounds []any) []bson.M {
	f, ok := schema.Lookup(name)
	if !ok {
		return nil
	}

	var lower, upper any
	if len(bounds) > 0 {
		lower = bounds[0]
	}
	if len(bounds) > 1 {
		upper = bounds[1]
	}

	if f.Array {
		var out []bson.M
		if n, ok := toInt(lower); ok {
			out = append(out, bson.M{name + "." + strconv.Itoa(n-1): bson.M{"$exists": true}})
		}
		if n, ok := toInt(upper); ok {
			out = append(out, bson.M{name + "." + strconv.Itoa(n): bson.M{"$exists": false}})
		}
		return out
	}

	cond := bson.M{"$ne": nil}
	if lower != nil {
		cond["$gte"] = record.Coerce(f, lower)
	}
	if upper != nil {
		cond["$lte"] = record.Coerce(f, upper)
	}
	return []bson.M{{name: cond}}
}

func matchClause(f record.Field, name string, value any) bson.M {
	if seq, ok := asSlice(value); ok {
		in := make(bson.A, len(seq))
		for i, v := range seq {
			in[i] = record.Coerce(f, v)
		}
		return bson.M{name: bson.M{"$in": in}}
	}
	return bson.M{name: record.Coerce(f, value)}
}

func existsClause(f record.Field, name string, want bool) bson.M {
	if f.Array {
		if want {
			return bson.M{name: bson.M{"$ne": bson.A{}}}
		}
		return bson.M{name: bson.A{}}
	}
	if want {
		return bson.M{name: bson.M{"$ne": nil}}
	}
	return bson.M{name: nil}
}

func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case bson.A:
		return x, true
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
