package store

import (
	"io"
	"io/fs"
	"log/slog"
	"math"
	"time"
)

// Options configures a collection.
type Options struct {
	// Path is the backing file. Empty keeps the collection in memory only.
	Path string

	// CompactionInterval is the period of the background compaction pass.
	// Zero or negative disables it. Compaction only applies to file-backed
	// collections.
	CompactionInterval time.Duration

	// Compression enables zstd compression of persisted documents.
	Compression bool

	// NoSync disables fsync on commit. Faster, but a crash can lose the most
	// recent writes.
	NoSync bool

	// FileMode is the mode of the backing file. Defaults to 0600.
	FileMode fs.FileMode

	// QueueSize bounds the operation queue. Defaults to 128.
	QueueSize int

	// Logger receives compaction and lifecycle events. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o600
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 128
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return opts
}
