// Package store implements the embedded document store wrapped by the
// adapter: one collection per record type, documents held in memory and
// mirrored into a bbolt file, every operation serialized through a per
// collection operation queue, with a periodic background compaction pass.
package store
