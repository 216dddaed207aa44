package record

// Record is a loosely typed record: a set of own fields plus a side map for
// denormalized values. Denormalized values are readable through Get but are
// excluded from Range, Len and Map, so generic field iteration never sees
// them.
type Record struct {
	fields  map[string]any
	inverse map[string]any
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: make(map[string]any)}
}

// FromMap builds a record from a plain field map. The map is copied.
func FromMap(m map[string]any) Record {
	r := Record{fields: make(map[string]any, len(m))}
	for k, v := range m {
		r.fields[k] = v
	}
	return r
}

// Get reads a field by name. Denormalized values are reachable here even
// though they do not enumerate.
func (r Record) Get(name string) (any, bool) {
	if v, ok := r.fields[name]; ok {
		return v, true
	}
	v, ok := r.inverse[name]
	return v, ok
}

// Set writes an own field.
func (r *Record) Set(name string, value any) {
	if r.fields == nil {
		r.fields = make(map[string]any)
	}
	r.fields[name] = value
}

// Delete removes an own field.
func (r *Record) Delete(name string) {
	delete(r.fields, name)
}

// SetInverse attaches a denormalized value. It shadows nothing: own fields
// win on Get.
func (r *Record) SetInverse(name string, value any) {
	if r.inverse == nil {
		r.inverse = make(map[string]any)
	}
	r.inverse[name] = value
}

// Range calls fn for every own field until fn returns false. Denormalized
// values are not visited.
func (r Record) Range(fn func(name string, value any) bool) {
	for k, v := range r.fields {
		if !fn(k, v) {
			return
		}
	}
}

// Len reports the number of own fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Map returns a copy of the own fields.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		m[k] = v
	}
	return m
}
