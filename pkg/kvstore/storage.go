package kvstore

import (
	"context"
	"strconv"
	"strings"
)

// Storage persists string values by key.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Incrementer is implemented by backends that can increment an integer value
// atomically. A missing key counts as zero.
type Incrementer interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// ParseCounter interprets a stored counter value. Absent, blank and
// non-integer values count as zero, and the next increment stores 1. Every
// Incrementer follows the same rule.
func ParseCounter(value string, ok bool) int64 {
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ValidateKey rejects blank keys with ErrEmptyKey.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
