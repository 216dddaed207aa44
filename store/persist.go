package store

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"
)

var bucketDocs = []byte("docs")

// backingFile mirrors a collection's documents into a bbolt file, one
// key/value pair per document, values BSON-encoded and optionally zstd
// compressed. All methods run on the collection's worker goroutine.
type backingFile struct {
	path string
	mode os.FileMode
	db   *bbolt.DB

	enc *zstd.Encoder
	dec *zstd.Decoder
}

func openBackingFile(o Options) (*backingFile, error) {
	f := &backingFile{path: o.Path, mode: o.FileMode}

	if o.Compression {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, err
		}
		f.enc = enc
		f.dec = dec
	}

	db, err := bbolt.Open(o.Path, o.FileMode, nil)
	if err != nil {
		f.closeCodecs()
		return nil, err
	}
	db.NoSync = o.NoSync

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocs)
		return err
	})
	if err != nil {
		db.Close()
		f.closeCodecs()
		return nil, err
	}

	f.db = db
	return f, nil
}

// load reads every persisted document into dst.
func (f *backingFile) load(dst map[string]bson.M) error {
	return f.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			doc, err := f.decode(v)
			if err != nil {
				return fmt.Errorf("document %q: %w", k, err)
			}
			dst[string(k)] = doc
			return nil
		})
	})
}

func (f *backingFile) put(id string, doc bson.M) error {
	raw, err := f.encode(doc)
	if err != nil {
		return err
	}
	return f.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Put([]byte(id), raw)
	})
}

// putBatch writes all documents in a single transaction, so a batch insert
// is atomic at the file level.
func (f *backingFile) putBatch(ids []string, docs []bson.M) error {
	raws := make([][]byte, len(docs))
	for i, doc := range docs {
		raw, err := f.encode(doc)
		if err != nil {
			return err
		}
		raws[i] = raw
	}
	return f.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		for i, id := range ids {
			if err := b.Put([]byte(id), raws[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *backingFile) delete(id string) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

// compact rewrites the file into a temporary sibling and swaps it in.
// bbolt never shrinks its file on its own, so reclaiming space after heavy
// deletion needs this pass.
func (f *backingFile) compact() error {
	tmpPath := f.path + ".compact"

	dst, err := bbolt.Open(tmpPath, f.mode, nil)
	if err != nil {
		return err
	}
	if err := bbolt.Compact(dst, f.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	noSync := f.db.NoSync
	if err := f.db.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return err
	}

	db, err := bbolt.Open(f.path, f.mode, nil)
	if err != nil {
		return err
	}
	db.NoSync = noSync
	f.db = db
	return nil
}

func (f *backingFile) close() error {
	var err error
	if f.db != nil {
		err = f.db.Close()
		f.db = nil
	}
	f.closeCodecs()
	return err
}

func (f *backingFile) closeCodecs() {
	if f.enc != nil {
		f.enc.Close()
		f.enc = nil
	}
	if f.dec != nil {
		f.dec.Close()
		f.dec = nil
	}
}

func (f *backingFile) encode(doc bson.M) ([]byte, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if f.enc != nil {
		raw = f.enc.EncodeAll(raw, nil)
	}
	return raw, nil
}

func (f *backingFile) decode(raw []byte) (bson.M, error) {
	if f.dec != nil {
		plain, err := f.dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, err
		}
		raw = plain
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return normalizeDoc(doc), nil
}

// normalizeDoc flattens BSON decoding artifacts: nested documents decode as
// ordered bson.D, which the matcher does not traverse.
func normalizeDoc(doc bson.M) bson.M {
	for k, v := range doc {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case bson.D:
		m := make(bson.M, len(x))
		for _, e := range x {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.M:
		return normalizeDoc(x)
	case bson.A:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
		return x
	default:
		return v
	}
}

// copyDoc deep-copies a document so callers and the in-memory set never
// alias each other.
func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case bson.M:
		return copyDoc(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = copyValue(v)
		}
		return out
	case bson.A:
		out := make(bson.A, len(x))
		for i := range x {
			out[i] = copyValue(x[i])
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = copyValue(x[i])
		}
		return out
	case []byte:
		out := make([]byte, len(x))
		copy(out, x)
		return out
	default:
		return v
	}
}
