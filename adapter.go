package docbolt

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/docbolt/record"
	"github.com/hupe1980/docbolt/store"
)

// Adapter persists records of the registered types through the embedded
// store, one collection per type. It is safe for concurrent use; the store
// serializes operations per type internally, the adapter adds no locking of
// its own.
type Adapter struct {
	types map[string]record.Type
	order []string
	opts  options

	mu          sync.RWMutex
	collections map[string]*store.Collection
	connected   bool
	broken      error
}

// New creates an Adapter for the given record types. Type names must be
// unique and non-empty, and every type needs a primary-key field name.
func New(types []record.Type, optFns ...Option) (*Adapter, error) {
	opts := options{
		compactionInterval: DefaultCompactionInterval,
		logger:             NoopLogger(),
		metrics:            NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Adapter{
		types: make(map[string]record.Type, len(types)),
		order: make([]string, 0, len(types)),
		opts:  opts,
	}
	for _, typ := range types {
		if typ.Name == "" {
			return nil, fmt.Errorf("docbolt: record type with empty name")
		}
		if typ.Key == "" {
			return nil, fmt.Errorf("docbolt: record type %q has no primary-key field", typ.Name)
		}
		if _, dup := a.types[typ.Name]; dup {
			return nil, fmt.Errorf("docbolt: duplicate record type %q", typ.Name)
		}
		a.types[typ.Name] = typ
		a.order = append(a.order, typ.Name)
	}
	return a, nil
}

// Connect opens one collection per record type and loads persisted state.
// The first failure aborts the connect, already-opened collections are
// released, and the adapter stays unusable; there is no partial-connect
// retry.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.connected {
		return ErrConnected
	}
	if a.broken != nil {
		return fmt.Errorf("docbolt: adapter unusable after failed connect: %w", a.broken)
	}

	if a.opts.dbPath != "" {
		if err := os.MkdirAll(a.opts.dbPath, 0o700); err != nil {
			a.broken = err
			return err
		}
	}

	collections := make(map[string]*store.Collection, len(a.order))
	for _, name := range a.order {
		col, err := store.Open(name, a.storeOptions(name))
		if err != nil {
			for _, opened := range collections {
				opened.Close()
			}
			a.broken = err
			return err
		}
		collections[name] = col
	}

	a.collections = collections
	a.connected = true
	a.opts.logger.DebugContext(ctx, "connected", "types", len(a.order))
	return nil
}

func (a *Adapter) storeOptions(name string) *store.Options {
	o := &store.Options{
		CompactionInterval: a.opts.compactionInterval,
		Compression:        a.opts.compression,
		Logger:             a.opts.logger.Logger,
	}
	if a.opts.dbPath != "" {
		o.Path = filepath.Join(a.opts.dbPath, name+".db")
	}
	if v, ok := a.opts.storeOptions["noSync"].(bool); ok {
		o.NoSync = v
	}
	switch v := a.opts.storeOptions["fileMode"].(type) {
	case fs.FileMode:
		o.FileMode = v
	case int:
		o.FileMode = fs.FileMode(v)
	}
	return o
}

// Disconnect tears every collection down. Per collection the background
// compaction pass is halted first, then the operation queue drains fully
// before the handle is released; Disconnect does not return earlier. The
// first close error is reported after all collections have been closed.
func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.connected {
		return ErrNotConnected
	}

	var firstErr error
	for _, name := range a.order {
		if err := a.collections[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.collections = nil
	a.connected = false
	a.opts.logger.DebugContext(ctx, "disconnected")
	return firstErr
}

// collection resolves a record type to its descriptor and open collection.
func (a *Adapter) collection(typeName string) (record.Type, *store.Collection, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	typ, ok := a.types[typeName]
	if !ok {
		return record.Type{}, nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	if !a.connected {
		return record.Type{}, nil, ErrNotConnected
	}
	return typ, a.collections[typeName], nil
}
