// Package storage holds the key-value slots the career store persists into.
//
// A Slot keeps one string value per key. Callers read and write whole
// values; CompareAndSwap gives them optimistic concurrency control when
// several writers share a key.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the key holds no value.
	ErrNotFound = errors.New("slot key not found")
	// ErrConflict indicates the stored value changed since it was read.
	ErrConflict = errors.New("slot value changed concurrently")
	// ErrUnknownDriver indicates an unsupported storage driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Slot is a string-keyed store of string values.
type Slot interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key unconditionally.
	Set(ctx context.Context, key, value string) error
	// CompareAndSwap stores value at key only if the current value equals
	// *old, or if old is nil and the key is absent. Otherwise it returns
	// ErrConflict and leaves the slot untouched.
	CompareAndSwap(ctx context.Context, key string, old *string, value string) error
	// Close releases the backend.
	Close() error
}

func matches(current string, found bool, old *string) bool {
	if old == nil {
		return !found
	}
	return found && current == *old
}
