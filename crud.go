package docbolt

import (
	"context"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/docbolt/record"
)

// Create encodes and inserts records as one batch. A uniqueness violation in
// the store surfaces as ErrConflict. On success the inserted records are
// returned codec-decoded, identifiers included.
func (a *Adapter) Create(ctx context.Context, typeName string, records []record.Record) ([]record.Record, error) {
	typ, col, err := a.collection(typeName)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	docs := make([]bson.M, len(records))
	for i, rec := range records {
		docs[i] = record.Encode(typ, rec)
	}

	if err := col.Insert(ctx, docs); err != nil {
		err = translateError(err)
		a.opts.logger.LogCreate(ctx, typeName, len(records), err)
		a.opts.metrics.RecordCreate(len(records), time.Since(start), err)
		return nil, err
	}

	inserted := make([]record.Record, len(docs))
	for i, doc := range docs {
		inserted[i] = record.Decode(typ, doc)
	}

	a.opts.logger.LogCreate(ctx, typeName, len(inserted), nil)
	a.opts.metrics.RecordCreate(len(inserted), time.Since(start), nil)
	return inserted, nil
}

// Update describes one update item targeting a record by primary key.
type Update struct {
	// ID is the primary-key value of the target record.
	ID string

	// Replace sets fields to new values.
	Replace map[string]any

	// Push appends to array fields. A slice value appends element-wise.
	Push map[string]any

	// Pull removes from array fields by value. A slice value removes any
	// matching element.
	Pull map[string]any

	// Operate carries native update operators applied verbatim. Its keys
	// take precedence over operators built from Replace, Push and Pull.
	Operate bson.M
}

// Update applies the update items, one native update call per item, all
// dispatched concurrently, and returns the summed affected-record count.
// An item with no resulting operators contributes zero and never reaches
// the store.
func (a *Adapter) Update(ctx context.Context, typeName string, updates []Update) (int64, error) {
	typ, col, err := a.collection(typeName)
	if err != nil {
		return 0, err
	}

	start := time.Now()

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, u := range updates {
		modifier := buildModifier(typ, u)
		if len(modifier) == 0 {
			continue
		}
		filter := bson.M{record.IDField: u.ID}
		g.Go(func() error {
			n, err := col.Update(gctx, filter, modifier, false)
			if err != nil {
				return err
			}
			total.Add(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		err = translateError(err)
		a.opts.logger.LogUpdate(ctx, typeName, len(updates), 0, err)
		a.opts.metrics.RecordUpdate(0, time.Since(start), err)
		return 0, err
	}

	affected := total.Load()
	a.opts.logger.LogUpdate(ctx, typeName, len(updates), affected, nil)
	a.opts.metrics.RecordUpdate(affected, time.Since(start), nil)
	return affected, nil
}

// buildModifier compiles one update item into a native operator document.
// Operate keys win on collision with the compiled operators.
func buildModifier(typ record.Type, u Update) bson.M {
	modifier := bson.M{}

	if len(u.Replace) > 0 {
		set := bson.M{}
		for name, value := range u.Replace {
			if name == typ.Key || name == record.IDField {
				continue
			}
			set[name] = value
		}
		if len(set) > 0 {
			modifier["$set"] = set
		}
	}

	if len(u.Push) > 0 {
		push := bson.M{}
		for name, value := range u.Push {
			if seq, ok := asSequence(value); ok {
				push[name] = bson.M{"$each": seq}
			} else {
				push[name] = value
			}
		}
		modifier["$push"] = push
	}

	if len(u.Pull) > 0 {
		pull := bson.M{}
		for name, value := range u.Pull {
			if seq, ok := asSequence(value); ok {
				pull[name] = bson.M{"$in": seq}
			} else {
				pull[name] = value
			}
		}
		modifier["$pull"] = pull
	}

	for op, arg := range u.Operate {
		modifier[op] = arg
	}

	return modifier
}

func asSequence(v any) (bson.A, bool) {
	switch x := v.(type) {
	case bson.A:
		return x, true
	case []any:
		return bson.A(x), true
	case []string:
		out := make(bson.A, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// Delete removes records by identifier membership, or every record of the
// type when ids is nil, in one multi-record removal. A non-nil empty ids
// slice short-circuits to zero without touching the store.
func (a *Adapter) Delete(ctx context.Context, typeName string, ids []string) (int64, error) {
	_, col, err := a.collection(typeName)
	if err != nil {
		return 0, err
	}

	if ids != nil && len(ids) == 0 {
		return 0, nil
	}

	start := time.Now()

	filter := bson.M{}
	if ids != nil {
		in := make(bson.A, len(ids))
		for i, id := range ids {
			in[i] = id
		}
		filter = bson.M{record.IDField: bson.M{"$in": in}}
	}

	removed, err := col.Remove(ctx, filter, true)
	if err != nil {
		err = translateError(err)
		a.opts.logger.LogDelete(ctx, typeName, 0, err)
		a.opts.metrics.RecordDelete(0, time.Since(start), err)
		return 0, err
	}

	a.opts.logger.LogDelete(ctx, typeName, removed, nil)
	a.opts.metrics.RecordDelete(removed, time.Since(start), nil)
	return removed, nil
}
