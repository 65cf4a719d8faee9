// Package kvstore defines the durable string key/value storage that backs the
// client's session state, plus the in-memory and SQLite implementations.
//
// Storage is deliberately small: Get, Set and Delete on string values. Backends
// that can increment a counter atomically also implement Incrementer; callers
// use it when present and fall back to read-modify-write otherwise.
//
// Other backends live next to their connection helpers: pkg/redis, pkg/pg and
// pkg/mongo.
//
// # Usage
//
//	store, err := kvstore.OpenSQLite(ctx, "profile.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Set(ctx, "isSignUp", "true")
//	v, ok, err := store.Get(ctx, "isSignUp")
package kvstore
