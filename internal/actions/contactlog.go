package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
)

// ContactLogCap bounds the persisted contact log.
const ContactLogCap = 200

// ErrUnknownMethod is returned for a contact method outside CALL/TEXT/MAP/EMAIL.
var ErrUnknownMethod = errors.New("unknown contact method")

var contactMethods = map[model.ContactMethod]bool{
	model.ContactCall:  true,
	model.ContactText:  true,
	model.ContactMap:   true,
	model.ContactEmail: true,
}

// ContactLog is an append-only, newest-first record of outreach.
type ContactLog struct {
	store kv.Store
	key   string
	newID func() string
}

// NewContactLog creates a log stored under key.
func NewContactLog(store kv.Store, key string) *ContactLog {
	return &ContactLog{store: store, key: key, newID: uuid.NewString}
}

// Record prepends a contact event and trims the log to ContactLogCap.
func (c *ContactLog) Record(ctx context.Context, actionID, loadID string, method model.ContactMethod, at time.Time) (model.ContactLogEntry, error) {
	if !contactMethods[method] {
		return model.ContactLogEntry{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	entry := model.ContactLogEntry{
		ID:       c.newID(),
		ActionID: actionID,
		LoadID:   loadID,
		Method:   method,
		AtISO:    parse.ISO(at),
	}

	entries := append([]model.ContactLogEntry{entry}, c.List(ctx)...)
	if len(entries) > ContactLogCap {
		entries = entries[:ContactLogCap]
	}
	kv.SaveJSON(ctx, c.store, c.key, entries)
	return entry, nil
}

// List returns every entry, newest first.
func (c *ContactLog) List(ctx context.Context) []model.ContactLogEntry {
	entries := kv.LoadJSON[[]model.ContactLogEntry](ctx, c.store, c.key)
	if entries == nil {
		entries = []model.ContactLogEntry{}
	}
	return entries
}

// LatestForLoad returns the most recent contact about loadID.
func (c *ContactLog) LatestForLoad(ctx context.Context, loadID string) (model.ContactLogEntry, bool) {
	return c.first(ctx, func(e model.ContactLogEntry) bool { return e.LoadID == loadID })
}

// LatestForAction returns the most recent contact made for actionID.
func (c *ContactLog) LatestForAction(ctx context.Context, actionID string) (model.ContactLogEntry, bool) {
	return c.first(ctx, func(e model.ContactLogEntry) bool { return e.ActionID == actionID })
}

// Filter returns entries matching loadID and actionID; empty arguments match all.
func (c *ContactLog) Filter(ctx context.Context, loadID, actionID string) []model.ContactLogEntry {
	out := []model.ContactLogEntry{}
	for _, e := range c.List(ctx) {
		if (loadID == "" || e.LoadID == loadID) && (actionID == "" || e.ActionID == actionID) {
			out = append(out, e)
		}
	}
	return out
}

func (c *ContactLog) first(ctx context.Context, match func(model.ContactLogEntry) bool) (model.ContactLogEntry, bool) {
	for _, e := range c.List(ctx) {
		if match(e) {
			return e, true
		}
	}
	return model.ContactLogEntry{}, false
}
