package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const idField = "_id"

// Collection is one record type's document set. Documents live in memory,
// keyed by their string identifier; when a path is configured they are
// mirrored into a bbolt file.
//
// Every operation funnels through a single-worker queue, so operations on
// one collection are serialized in submission order. Callers may issue
// operations concurrently; the queue provides the ordering.
type Collection struct {
	name string
	opts Options
	docs map[string]bson.M

	file *backingFile

	queue      chan *task
	workerDone chan struct{}

	mu     sync.Mutex
	closed bool

	ticker     *time.Ticker
	tickerStop chan struct{}
	tickerDone chan struct{}
	stopOnce   sync.Once
}

type task struct {
	fn   func() error
	err  error
	done chan struct{}
}

// Open creates or loads a collection. File-backed collections read their
// entire persisted state before Open returns; a load failure fails the open.
func Open(name string, opts *Options) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("store: collection name must not be empty")
	}

	o := opts.withDefaults()
	c := &Collection{
		name:       name,
		opts:       o,
		docs:       make(map[string]bson.M),
		queue:      make(chan *task, o.QueueSize),
		workerDone: make(chan struct{}),
	}

	if o.Path != "" {
		file, err := openBackingFile(o)
		if err != nil {
			return nil, fmt.Errorf("store: opening %q: %w", o.Path, err)
		}
		c.file = file
		if err := file.load(c.docs); err != nil {
			file.close()
			return nil, fmt.Errorf("store: loading %q: %w", o.Path, err)
		}
	}

	go c.worker()

	if c.file != nil && o.CompactionInterval > 0 {
		c.ticker = time.NewTicker(o.CompactionInterval)
		c.tickerStop = make(chan struct{})
		c.tickerDone = make(chan struct{})
		go c.compactLoop()
	}

	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

func (c *Collection) worker() {
	defer close(c.workerDone)
	for t := range c.queue {
		t.err = t.fn()
		close(t.done)
	}
}

func (c *Collection) compactLoop() {
	defer close(c.tickerDone)
	for {
		select {
		case <-c.tickerStop:
			return
		case <-c.ticker.C:
			if err := c.Compact(context.Background()); err != nil {
				c.opts.Logger.Error("compaction failed",
					"collection", c.name,
					"error", err,
				)
			}
		}
	}
}

// do submits fn to the operation queue and waits for it to run. A canceled
// context aborts the submission; once submitted an operation always runs to
// completion.
func (c *Collection) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &task{fn: fn, done: make(chan struct{})}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.queue <- t
	c.mu.Unlock()

	<-t.done
	return t.err
}

// Insert adds documents as one batch. Identifiers must be unique, both
// against the existing set and within the batch; a collision fails the whole
// batch with ErrUniqueViolated before anything is written.
func (c *Collection) Insert(ctx context.Context, docs []bson.M) error {
	return c.do(ctx, func() error { return c.insert(docs) })
}

func (c *Collection) insert(docs []bson.M) error {
	ids := make([]string, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		id, ok := doc[idField].(string)
		if !ok || id == "" {
			return ErrMissingID
		}
		if _, dup := c.docs[id]; dup {
			return fmt.Errorf("%w: %q", ErrUniqueViolated, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrUniqueViolated, id)
		}
		seen[id] = struct{}{}
		ids[i] = id
	}

	if c.file != nil {
		if err := c.file.putBatch(ids, docs); err != nil {
			return err
		}
	}
	for i, doc := range docs {
		c.docs[ids[i]] = copyDoc(doc)
	}
	return nil
}

// Find returns copies of every document matching filter, shaped by opts.
func (c *Collection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	var out []bson.M
	err := c.do(ctx, func() error {
		var err error
		out, err = c.find(filter, opts)
		return err
	})
	return out, err
}

// Count returns the number of documents matching filter.
func (c *Collection) Count(ctx context.Context, filter bson.M) (int64, error) {
	var n int64
	err := c.do(ctx, func() error {
		for _, doc := range c.docs {
			ok, err := Match(doc, filter)
			if err != nil {
				return err
			}
			if ok {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Len reports the number of stored documents.
func (c *Collection) Len(ctx context.Context) (int, error) {
	var n int
	err := c.do(ctx, func() error {
		n = len(c.docs)
		return nil
	})
	return n, err
}

// Update applies an operator document to matching documents and returns the
// number affected. With multi false at most one document (the lowest id in
// the match set) is touched.
func (c *Collection) Update(ctx context.Context, filter, update bson.M, multi bool) (int64, error) {
	var n int64
	err := c.do(ctx, func() error {
		var err error
		n, err = c.update(filter, update, multi)
		return err
	})
	return n, err
}

func (c *Collection) update(filter, update bson.M, multi bool) (int64, error) {
	var affected int64
	for _, id := range c.sortedIDs() {
		ok, err := Match(c.docs[id], filter)
		if err != nil {
			return affected, err
		}
		if !ok {
			continue
		}

		updated, err := applyUpdate(c.docs[id], update)
		if err != nil {
			return affected, err
		}
		if c.file != nil {
			if err := c.file.put(id, updated); err != nil {
				return affected, err
			}
		}
		c.docs[id] = updated
		affected++

		if !multi {
			break
		}
	}
	return affected, nil
}

// Remove deletes matching documents and returns the number removed. With
// multi false at most one document is removed.
func (c *Collection) Remove(ctx context.Context, filter bson.M, multi bool) (int64, error) {
	var n int64
	err := c.do(ctx, func() error {
		var err error
		n, err = c.remove(filter, multi)
		return err
	})
	return n, err
}

func (c *Collection) remove(filter bson.M, multi bool) (int64, error) {
	var removed int64
	for _, id := range c.sortedIDs() {
		ok, err := Match(c.docs[id], filter)
		if err != nil {
			return removed, err
		}
		if !ok {
			continue
		}
		if c.file != nil {
			if err := c.file.delete(id); err != nil {
				return removed, err
			}
		}
		delete(c.docs, id)
		removed++
		if !multi {
			break
		}
	}
	return removed, nil
}

// Compact rewrites the backing file to reclaim free pages. In-memory
// collections treat it as a no-op. The pass runs on the operation queue, so
// it serializes with reads and writes.
func (c *Collection) Compact(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.file == nil {
			return nil
		}
		start := time.Now()
		if err := c.file.compact(); err != nil {
			return err
		}
		c.opts.Logger.Debug("compacted collection",
			"collection", c.name,
			"duration", time.Since(start),
		)
		return nil
	})
}

// StopCompaction halts the background compaction pass and waits for it to
// exit. Safe to call more than once; Close calls it first.
func (c *Collection) StopCompaction() {
	c.stopOnce.Do(func() {
		if c.ticker == nil {
			return
		}
		c.ticker.Stop()
		close(c.tickerStop)
		<-c.tickerDone
	})
}

// Close tears the collection down: background compaction is halted first,
// then the operation queue is drained completely, then the backing file is
// released. Close does not return until no operation remains pending.
func (c *Collection) Close() error {
	c.StopCompaction()

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()

	<-c.workerDone

	if c.file != nil {
		err := c.file.close()
		c.file = nil
		return err
	}
	return nil
}

func (c *Collection) sortedIDs() []string {
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
