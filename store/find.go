package store

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// SortField is one sort key. Slice order is significant: earlier keys
// dominate.
type SortField struct {
	Name       string
	Descending bool
}

// FindOptions shape a find result set. Shaping order is sort, then skip,
// then limit, then projection.
type FindOptions struct {
	// Projection selects fields: truthy values include, falsy values
	// exclude. An empty projection keeps every field. In include mode the
	// identifier field is always kept.
	Projection map[string]bool

	Sort  []SortField
	Skip  int64
	Limit int64
}

func (c *Collection) find(filter bson.M, opts FindOptions) ([]bson.M, error) {
	matched := make([]bson.M, 0)
	for _, id := range c.sortedIDs() {
		doc := c.docs[id]
		ok, err := Match(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	if len(opts.Sort) > 0 {
		sortDocs(matched, opts.Sort)
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = matched[:0]
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}

	out := make([]bson.M, len(matched))
	for i, doc := range matched {
		out[i] = project(copyDoc(doc), opts.Projection)
	}
	return out, nil
}

// sortDocs orders documents by the given keys, id ascending as the final
// tiebreak. The base iteration is already id-ordered, so the sort is stable
// and deterministic.
func sortDocs(docs []bson.M, keys []SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			cmp := compareForSort(docs[i][key.Name], docs[j][key.Name])
			if cmp == 0 {
				continue
			}
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareForSort is a total order over document values: null sorts first,
// then numbers, strings, booleans, times, everything else. Values of the
// same family compare naturally; unordered families tie.
func compareForSort(a, b any) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if cmp, ok := compareOrdered(a, b); ok {
		return cmp
	}
	return 0
}

func sortRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 2
	case bool:
		return 3
	case time.Time:
		return 4
	default:
		if _, ok := asFloat(v); ok {
			return 1
		}
		return 5
	}
}

func project(doc bson.M, projection map[string]bool) bson.M {
	if len(projection) == 0 {
		return doc
	}

	include := false
	for _, keep := range projection {
		if keep {
			include = true
			break
		}
	}

	if include {
		out := make(bson.M, len(projection)+1)
		if id, ok := doc[idField]; ok {
			out[idField] = id
		}
		for name, keep := range projection {
			if !keep {
				continue
			}
			if v, ok := doc[name]; ok {
				out[name] = v
			}
		}
		return out
	}

	for name, keep := range projection {
		if !keep {
			delete(doc, name)
		}
	}
	return doc
}
