// Package session holds the client-side session state of a detection client:
// the bearer token issued by the authenticated backend, the onboarded flag set
// once registration has been attempted, and the anonymous usage counter.
//
// State lives in a kvstore.Storage under three string keys, so the same
// Store works over an in-memory map, a SQLite profile file, Redis, Postgres or
// MongoDB:
//
//	_ms-mid       session token
//	isSignUp      "true" once registration succeeded or was already done
//	requestCount  anonymous submissions dispatched, decimal
//
// Store never caches values in memory. Every call reads or writes the backend.
//
// # Usage
//
//	st := session.New(kvstore.NewMemory())
//
//	mode, err := st.Mode(ctx)
//	if err != nil {
//		return err
//	}
//	if mode == session.Anonymous {
//		n, err := st.IncrementUsage(ctx)
//		...
//	}
//
// A token is write-once: SetToken on a store that already holds one returns
// ErrTokenAlreadySet. SignOut clears the token and the onboarded flag and
// leaves the usage counter as is.
//
// Increments are serialized inside one process. When the backend implements
// kvstore.Incrementer the increment is also atomic across processes; otherwise
// concurrent processes sharing a backend are last-writer-wins.
package session
