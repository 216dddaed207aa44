package docbolt

import "time"

// DefaultCompactionInterval is the period of the background compaction pass
// unless overridden with WithCompactionInterval.
const DefaultCompactionInterval = 60 * time.Second

type options struct {
	dbPath             string
	compactionInterval time.Duration
	compression        bool
	storeOptions       map[string]any
	logger             *Logger
	metrics            MetricsCollector
}

// Option configures an Adapter.
type Option func(*options)

// WithDBPath configures the directory holding one persisted file per record
// type, named by type. Without it every collection stays in memory only.
func WithDBPath(path string) Option {
	return func(o *options) {
		o.dbPath = path
	}
}

// WithCompactionInterval overrides the background compaction period.
// Zero or negative disables compaction.
func WithCompactionInterval(d time.Duration) Option {
	return func(o *options) {
		o.compactionInterval = d
	}
}

// WithCompression enables zstd compression of persisted documents.
func WithCompression() Option {
	return func(o *options) {
		o.compression = true
	}
}

// WithStoreOptions passes native store options through to every collection.
// The map is copied, never mutated; a "filename" key is dropped since file
// names are derived from record type names.
//
// Recognized keys: "noSync" (bool), "fileMode" (fs.FileMode or int).
// Unrecognized keys are ignored by the store.
func WithStoreOptions(m map[string]any) Option {
	return func(o *options) {
		copied := make(map[string]any, len(m))
		for k, v := range m {
			if k == "filename" {
				continue
			}
			copied[k] = v
		}
		o.storeOptions = copied
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}
