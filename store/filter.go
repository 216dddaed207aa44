package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Match reports whether doc satisfies the native filter. An empty filter
// matches every document.
func Match(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		var (
			ok  bool
			err error
		)
		switch key {
		case "$and":
			ok, err = matchAll(doc, cond)
		case "$or":
			ok, err = matchAny(doc, cond)
		case "$not":
			sub, valid := asDoc(cond)
			if !valid {
				return false, fmt.Errorf("$not requires a filter document")
			}
			ok, err = Match(doc, sub)
			ok = !ok
		default:
			ok, err = matchField(doc, key, cond)
		}
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchAll(doc bson.M, cond any) (bool, error) {
	clauses, ok := clauseList(cond)
	if !ok {
		return false, fmt.Errorf("$and operator used without an array")
	}
	for _, clause := range clauses {
		ok, err := Match(doc, clause)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAny(doc bson.M, cond any) (bool, error) {
	clauses, ok := clauseList(cond)
	if !ok {
		return false, fmt.Errorf("$or operator used without an array")
	}
	for _, clause := range clauses {
		ok, err := Match(doc, clause)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// matchField evaluates one field condition: either an operator document or a
// direct equality value.
func matchField(doc bson.M, path string, cond any) (bool, error) {
	val, exists := lookupPath(doc, path)

	if ops, ok := operatorDoc(cond); ok {
		for op, arg := range ops {
			ok, err := matchOperator(doc, path, val, exists, op, arg)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	return equalOrElem(val, cond), nil
}

func matchOperator(doc bson.M, path string, val any, exists bool, op string, arg any) (bool, error) {
	switch op {
	case "$eq":
		return equalOrElem(val, arg), nil
	case "$ne":
		return !equalOrElem(val, arg), nil
	case "$in":
		set, ok := valueList(arg)
		if !ok {
			return false, fmt.Errorf("$in operator used without an array")
		}
		for _, want := range set {
			if equalOrElem(val, want) {
				return true, nil
			}
		}
		return false, nil
	case "$nin":
		set, ok := valueList(arg)
		if !ok {
			return false, fmt.Errorf("$nin operator used without an array")
		}
		for _, want := range set {
			if equalOrElem(val, want) {
				return false, nil
			}
		}
		return true, nil
	case "$gt", "$gte", "$lt", "$lte":
		cmp, ok := compareOrdered(val, arg)
		if !ok {
			return false, nil
		}
		switch op {
		case "$gt":
			return cmp > 0, nil
		case "$gte":
			return cmp >= 0, nil
		case "$lt":
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case "$exists":
		want, _ := arg.(bool)
		return exists == want, nil
	case "$not":
		ok, err := matchField(doc, path, arg)
		return !ok, err
	default:
		return false, fmt.Errorf("unknown comparison operator %q", op)
	}
}

// lookupPath resolves a dotted path against a document. Numeric segments
// index into arrays; an out-of-range index resolves to absent.
func lookupPath(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case bson.M:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			arr, ok := valueList(cur)
			if !ok {
				return nil, false
			}
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(arr) {
				return nil, false
			}
			cur = arr[i]
		}
	}
	return cur, true
}

// equalOrElem reports deep equality, or element membership when the stored
// value is an array and the wanted value is not.
func equalOrElem(val, want any) bool {
	if valuesEqual(val, want) {
		return true
	}
	arr, ok := valueList(val)
	if !ok {
		return false
	}
	if _, wantIsArr := valueList(want); wantIsArr {
		return false
	}
	for _, elem := range arr {
		if valuesEqual(elem, want) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	}

	if aa, ok := valueList(a); ok {
		ba, ok := valueList(b)
		if !ok || len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !valuesEqual(aa[i], ba[i]) {
				return false
			}
		}
		return true
	}

	if am, ok := asDoc(a); ok {
		bm, ok := asDoc(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !valuesEqual(av, bv) {
				return false
			}
		}
		return true
	}

	return false
}

// compareOrdered compares two values of the same comparable family. The
// second return is false when the pair is not ordered (mixed families,
// nulls, arrays).
func compareOrdered(a, b any) (int, bool) {
	if af, ok := asFloat(a); ok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, ok := a.(string); ok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if at, ok := a.(time.Time); ok {
		bt, bok := b.(time.Time)
		if !bok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	if ab, ok := a.(bool); ok {
		bb, bok := b.(bool)
		if !bok {
			return 0, false
		}
		switch {
		case ab == bb:
			return 0, true
		case ab:
			return 1, true
		default:
			return -1, true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func asDoc(v any) (bson.M, bool) {
	switch x := v.(type) {
	case bson.M:
		return x, true
	case map[string]any:
		return bson.M(x), true
	case bson.D:
		m := make(bson.M, len(x))
		for _, e := range x {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

// operatorDoc reports whether cond is a non-empty document whose keys are
// all operators. Mixed documents are treated as literal values.
func operatorDoc(cond any) (bson.M, bool) {
	m, ok := asDoc(cond)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func clauseList(v any) ([]bson.M, bool) {
	arr, ok := valueList(v)
	if !ok {
		return nil, false
	}
	out := make([]bson.M, len(arr))
	for i, e := range arr {
		m, ok := asDoc(e)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

func valueList(v any) ([]any, bool) {
	switch x := v.(type) {
	case bson.A:
		return x, true
	case []any:
		return x, true
	default:
		return nil, false
	}
}
