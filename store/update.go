package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// applyUpdate applies an operator document to a copy of doc and returns the
// result. The original is never mutated, so a failing operator leaves the
// stored document untouched. The identifier field cannot be modified.
func applyUpdate(doc bson.M, update bson.M) (bson.M, error) {
	out := copyDoc(doc)

	for op, arg := range update {
		if !strings.HasPrefix(op, "$") {
			return nil, fmt.Errorf("update must use operators, got field %q", op)
		}
		fields, ok := asDoc(arg)
		if !ok {
			return nil, fmt.Errorf("operator %s requires a document", op)
		}

		for name, value := range fields {
			if name == idField {
				return nil, fmt.Errorf("operator %s may not modify %s", op, idField)
			}
			var err error
			switch op {
			case "$set":
				out[name] = copyValue(value)
			case "$unset":
				delete(out, name)
			case "$inc":
				err = applyInc(out, name, value)
			case "$push":
				err = applyPush(out, name, value)
			case "$pull":
				err = applyPull(out, name, value)
			default:
				err = fmt.Errorf("unknown update operator %q", op)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func applyInc(doc bson.M, name string, value any) error {
	delta, ok := asFloat(value)
	if !ok {
		return fmt.Errorf("$inc on %q: %v is not a number", name, value)
	}

	cur := doc[name]
	if cur == nil {
		doc[name] = value
		return nil
	}
	base, ok := asFloat(cur)
	if !ok {
		return fmt.Errorf("$inc on %q: field is not a number", name)
	}

	// Keep integer fields integral when both sides are integral.
	if isIntegral(cur) && isIntegral(value) {
		doc[name] = int64(base) + int64(delta)
		return nil
	}
	doc[name] = base + delta
	return nil
}

// applyPush appends to an array field. A {$each: [...]} argument appends
// element-wise.
func applyPush(doc bson.M, name string, value any) error {
	arr, err := arrayField(doc, name)
	if err != nil {
		return fmt.Errorf("$push on %q: %w", name, err)
	}

	if m, ok := asDoc(value); ok {
		if each, found := m["$each"]; found {
			items, ok := valueList(each)
			if !ok {
				return fmt.Errorf("$push on %q: $each requires an array", name)
			}
			for _, item := range items {
				arr = append(arr, copyValue(item))
			}
			doc[name] = arr
			return nil
		}
	}

	doc[name] = append(arr, copyValue(value))
	return nil
}

// applyPull removes matching elements from an array field. A {$in: [...]}
// argument removes any element equal to a member of the set.
func applyPull(doc bson.M, name string, value any) error {
	arr, err := arrayField(doc, name)
	if err != nil {
		return fmt.Errorf("$pull on %q: %w", name, err)
	}

	matches := func(elem any) bool { return valuesEqual(elem, value) }
	if m, ok := asDoc(value); ok {
		if set, found := m["$in"]; found {
			items, ok := valueList(set)
			if !ok {
				return fmt.Errorf("$pull on %q: $in requires an array", name)
			}
			matches = func(elem any) bool {
				for _, item := range items {
					if valuesEqual(elem, item) {
						return true
					}
				}
				return false
			}
		}
	}

	kept := make(bson.A, 0, len(arr))
	for _, elem := range arr {
		if !matches(elem) {
			kept = append(kept, elem)
		}
	}
	doc[name] = kept
	return nil
}

func arrayField(doc bson.M, name string) (bson.A, error) {
	cur, ok := doc[name]
	if !ok || cur == nil {
		return bson.A{}, nil
	}
	arr, ok := valueList(cur)
	if !ok {
		return nil, fmt.Errorf("field is not an array")
	}
	return bson.A(arr), nil
}

func isIntegral(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
