package actions

import (
	"context"
	"time"

	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
)

// SnoozeFor is how long a snooze lasts.
const SnoozeFor = 30 * time.Minute

// OverlayState applies state onto freshly derived actions. It returns the
// overlaid actions and the next state: entries for ids not derived this tick
// are pruned, and expired snoozes are rewritten to OPEN at now.
func OverlayState(derived []model.BrokerAction, state model.ActionStateMap, now time.Time) ([]model.BrokerAction, model.ActionStateMap) {
	nowISO := parse.ISO(now)
	next := make(model.ActionStateMap)
	out := make([]model.BrokerAction, 0, len(derived))

	for _, a := range derived {
		entry, ok := state[a.ID]
		if !ok {
			out = append(out, a)
			continue
		}
		if entry.Status == model.ActionSnoozed && snoozeExpired(entry, now) {
			entry = model.ActionStateEntry{Status: model.ActionOpen, UpdatedAtISO: nowISO}
		}
		next[a.ID] = entry
		a.Status = entry.Status
		out = append(out, a)
	}
	return out, next
}

// snoozeExpired is true once now reaches SnoozeUntilISO. A missing or
// unreadable snooze time counts as expired so the action cannot stay hidden.
func snoozeExpired(entry model.ActionStateEntry, now time.Time) bool {
	until, ok := parse.Instant(entry.SnoozeUntilISO)
	if !ok {
		return true
	}
	return !now.Before(until)
}

// Overlay persists action lifecycle state in a kv.Store.
type Overlay struct {
	store kv.Store
	key   string
}

// NewOverlay creates an Overlay that keeps its ActionStateMap under key.
func NewOverlay(store kv.Store, key string) *Overlay {
	return &Overlay{store: store, key: key}
}

// Apply loads the persisted state, overlays it on derived, and writes back the
// pruned state before returning.
func (o *Overlay) Apply(ctx context.Context, derived []model.BrokerAction, now time.Time) ([]model.BrokerAction, model.ActionStateMap) {
	state := o.State(ctx)
	out, next := OverlayState(derived, state, now)
	kv.SaveJSON(ctx, o.store, o.key, next)
	return out, next
}

// State returns the persisted map, empty when missing or unreadable.
func (o *Overlay) State(ctx context.Context) model.ActionStateMap {
	state := kv.LoadJSON[model.ActionStateMap](ctx, o.store, o.key)
	if state == nil {
		state = make(model.ActionStateMap)
	}
	return state
}

// SetDone marks the action done.
func (o *Overlay) SetDone(ctx context.Context, actionID string, now time.Time) model.ActionStateEntry {
	return o.put(ctx, actionID, model.ActionStateEntry{Status: model.ActionDone, UpdatedAtISO: parse.ISO(now)})
}

// Snooze30m hides the action until now + 30 minutes.
func (o *Overlay) Snooze30m(ctx context.Context, actionID string, now time.Time) model.ActionStateEntry {
	return o.put(ctx, actionID, model.ActionStateEntry{
		Status:         model.ActionSnoozed,
		SnoozeUntilISO: parse.ISO(now.Add(SnoozeFor)),
		UpdatedAtISO:   parse.ISO(now),
	})
}

// Reopen marks the action open again.
func (o *Overlay) Reopen(ctx context.Context, actionID string, now time.Time) model.ActionStateEntry {
	return o.put(ctx, actionID, model.ActionStateEntry{Status: model.ActionOpen, UpdatedAtISO: parse.ISO(now)})
}

// put reads the full map, sets one key and writes the full map back.
func (o *Overlay) put(ctx context.Context, actionID string, entry model.ActionStateEntry) model.ActionStateEntry {
	state := o.State(ctx)
	state[actionID] = entry
	kv.SaveJSON(ctx, o.store, o.key, state)
	return entry
}
