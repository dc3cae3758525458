package notification

import (
	"context"

	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/model"
)

// FeedCap bounds the persisted notification feed.
const FeedCap = 100

// Feed is the persisted, newest-first notification list plus a set of read ids.
type Feed struct {
	store   kv.Store
	key     string
	readKey string
}

// NewFeed creates a feed stored under key, with read ids under readKey.
func NewFeed(store kv.Store, key, readKey string) *Feed {
	return &Feed{store: store, key: key, readKey: readKey}
}

// Prepend adds ns (already newest-first) to the front of the feed, drops
// duplicate ids and evicts beyond FeedCap. Read ids for evicted entries are dropped too.
func (f *Feed) Prepend(ctx context.Context, ns []model.Notification) {
	if len(ns) == 0 {
		return
	}
	existing := kv.LoadJSON[[]model.Notification](ctx, f.store, f.key)

	seen := make(map[string]bool, len(ns)+len(existing))
	merged := make([]model.Notification, 0, len(ns)+len(existing))
	for _, n := range append(append([]model.Notification{}, ns...), existing...) {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		n.Acked = false
		merged = append(merged, n)
		if len(merged) == FeedCap {
			break
		}
	}
	kv.SaveJSON(ctx, f.store, f.key, merged)

	read := f.readSet(ctx)
	kept := make([]string, 0, len(read))
	for _, n := range merged {
		if read[n.ID] {
			kept = append(kept, n.ID)
		}
	}
	if len(kept) != len(read) {
		kv.SaveJSON(ctx, f.store, f.readKey, kept)
	}
}

// List returns the feed, newest first, with Acked filled from the read set.
func (f *Feed) List(ctx context.Context) []model.Notification {
	ns := kv.LoadJSON[[]model.Notification](ctx, f.store, f.key)
	read := f.readSet(ctx)
	out := make([]model.Notification, 0, len(ns))
	for _, n := range ns {
		n.Acked = read[n.ID]
		out = append(out, n)
	}
	return out
}

// Unread counts notifications not in the read set.
func (f *Feed) Unread(ctx context.Context) int {
	count := 0
	for _, n := range f.List(ctx) {
		if !n.Acked {
			count++
		}
	}
	return count
}

// Ack marks one notification read. It reports false when id is not in the feed.
func (f *Feed) Ack(ctx context.Context, id string) bool {
	found := false
	for _, n := range kv.LoadJSON[[]model.Notification](ctx, f.store, f.key) {
		if n.ID == id {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	read := f.readSet(ctx)
	if read[id] {
		return true
	}
	ids := make([]string, 0, len(read)+1)
	for rid := range read {
		ids = append(ids, rid)
	}
	ids = append(ids, id)
	kv.SaveJSON(ctx, f.store, f.readKey, ids)
	return true
}

// AckAll marks every notification in the feed read.
func (f *Feed) AckAll(ctx context.Context) {
	ns := kv.LoadJSON[[]model.Notification](ctx, f.store, f.key)
	ids := make([]string, 0, len(ns))
	for _, n := range ns {
		ids = append(ids, n.ID)
	}
	kv.SaveJSON(ctx, f.store, f.readKey, ids)
}

func (f *Feed) readSet(ctx context.Context) map[string]bool {
	ids := kv.LoadJSON[[]string](ctx, f.store, f.readKey)
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
