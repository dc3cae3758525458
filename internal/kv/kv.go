// Package kv is the key-value collaborator that dashboard state is persisted
// through. Every value is a single serialized JSON blob under a fixed key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// ErrUnknownDriver is returned by Open for an unsupported storage driver.
var ErrUnknownDriver = errors.New("kv: unknown storage driver")

// Store reads and writes string values by key.
type Store interface {
	// Get returns ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Keys holds the fixed key names, each carrying the configured prefix.
type Keys struct {
	Snapshots         string
	ActionState       string
	ContactLog        string
	Notifications     string
	NotificationsRead string
}

// NewKeys builds the key set under prefix.
func NewKeys(prefix string) Keys {
	return Keys{
		Snapshots:         prefix + "snapshots.v1",
		ActionState:       prefix + "actionState.v1",
		ContactLog:        prefix + "contactLog.v1",
		Notifications:     prefix + "notifications.v1",
		NotificationsRead: prefix + "notifications.read.v1",
	}
}

// LoadJSON decodes the value under key into a fresh T. A missing key, a read
// error or malformed JSON all yield the zero value; failures are logged.
func LoadJSON[T any](ctx context.Context, s Store, key string) T {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: could not read %q: %v. Using empty state.", key, err)
		return out
	}
	if !ok || raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("Warning: malformed JSON under %q: %v. Using empty state.", key, err)
		var zero T
		return zero
	}
	return out
}

// SaveJSON encodes v and writes it under key. Failures are logged and reported
// as false; callers carry on with their in-memory state.
func SaveJSON(ctx context.Context, s Store, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("Warning: could not encode %q: %v", key, err)
		return false
	}
	if err := s.Set(ctx, key, string(raw)); err != nil {
		log.Printf("Warning: could not write %q: %v", key, err)
		return false
	}
	return true
}
