// Package docbolt is a storage adapter that lets a generic record/schema
// framework persist records through an embedded, file-backed document store.
//
// The adapter is translational: it encodes the caller's records into the
// store's native document shape, compiles abstract filter expressions into
// the store's native filter form, and maps results and errors back. Storage,
// durability and per-collection operation ordering belong to the store
// package.
//
// Basic usage:
//
//	types := []record.Type{{
//	    Name: "user",
//	    Key:  "id",
//	    Schema: record.Schema{
//	        {Name: "name", Kind: record.KindString},
//	        {Name: "tags", Kind: record.KindString, Array: true},
//	    },
//	}}
//
//	adapter, err := docbolt.New(types, docbolt.WithDBPath("./data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := adapter.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Disconnect(ctx)
//
//	result, err := adapter.Find(ctx, "user", nil, &query.Options{
//	    Match: map[string]any{"name": "hupe"},
//	})
package docbolt
