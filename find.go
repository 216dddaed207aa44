package docbolt

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/docbolt/query"
	"github.com/hupe1980/docbolt/record"
	"github.com/hupe1980/docbolt/store"
)

// Result is one page of records plus the total number of records matching
// the filter before offset and limit were applied.
type Result struct {
	Records []record.Record
	Count   int64
}

// Find returns records of the given type. A non-nil empty ids slice
// short-circuits to an empty result without touching the store; a nil ids
// slice places no identifier constraint. When ids are given the compiled
// filter is intersected with an identifier-membership clause.
//
// The find and the total count run concurrently against the same filter;
// projection, sort, offset and limit shape the find only.
func (a *Adapter) Find(ctx context.Context, typeName string, ids []string, opts *query.Options) (*Result, error) {
	typ, col, err := a.collection(typeName)
	if err != nil {
		return nil, err
	}

	if ids != nil && len(ids) == 0 {
		return &Result{Records: []record.Record{}}, nil
	}

	start := time.Now()

	filter := query.Translate(typ.Schema, opts)
	if ids != nil {
		filter = intersectIDs(filter, ids)
	}
	if opts != nil && opts.Query != nil {
		if replacement := opts.Query(filter); replacement != nil {
			filter = replacement
		}
	}

	findOpts := store.FindOptions{}
	if opts != nil {
		findOpts.Projection = opts.Fields
		findOpts.Skip = opts.Offset
		findOpts.Limit = opts.Limit
		for _, s := range opts.Sort {
			findOpts.Sort = append(findOpts.Sort, store.SortField{
				Name:       s.Field,
				Descending: s.Descending,
			})
		}
	}

	var (
		docs  []bson.M
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = col.Find(gctx, filter, findOpts)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = col.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		err = translateError(err)
		a.opts.logger.LogFind(ctx, typeName, 0, 0, err)
		a.opts.metrics.RecordFind(0, time.Since(start), err)
		return nil, err
	}

	records := make([]record.Record, len(docs))
	for i, doc := range docs {
		records[i] = record.Decode(typ, doc)
	}

	a.opts.logger.LogFind(ctx, typeName, len(records), count, nil)
	a.opts.metrics.RecordFind(len(records), time.Since(start), nil)
	return &Result{Records: records, Count: count}, nil
}

// intersectIDs combines a compiled filter with an identifier-membership
// clause.
func intersectIDs(filter bson.M, ids []string) bson.M {
	in := make(bson.A, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	clause := bson.M{record.IDField: bson.M{"$in": in}}
	if len(filter) == 0 {
		return clause
	}
	return bson.M{"$and": bson.A{filter, clause}}
}
