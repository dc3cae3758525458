package notification

import (
	"context"
	"sort"

	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/model"
)

// DiffOptions tunes which changes raise a notification.
type DiffOptions struct {
	// NotifyOnCodeChange also notifies when a non-green load stays non-green
	// but its set of exception codes changes.
	NotifyOnCodeChange bool
}

// DiffResult is the outcome of one diff.
type DiffResult struct {
	Notifications []model.Notification
	Next          model.SnapshotMap
}

// escalations lists the status transitions that notify. De-escalations are silent.
var escalations = map[model.Status]map[model.Status]bool{
	model.StatusGreen:  {model.StatusYellow: true, model.StatusRed: true},
	model.StatusYellow: {model.StatusRed: true},
}

// Snapshot fingerprints an evaluated load.
func Snapshot(l model.EvaluatedLoad) model.LoadSnapshot {
	codes := make([]model.ExceptionCode, 0, len(l.Exceptions))
	for _, ex := range l.Exceptions {
		codes = append(codes, ex.Code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return model.LoadSnapshot{Status: l.ComputedStatus, ExceptionCodes: codes}
}

// Diff compares the previous snapshots with the current evaluation. A load seen
// for the first time never notifies. The returned snapshot map covers exactly
// the loads in current.
func Diff(prev model.SnapshotMap, current []model.EvaluatedLoad, createdAtISO string, opts DiffOptions) DiffResult {
	res := DiffResult{
		Notifications: []model.Notification{},
		Next:          make(model.SnapshotMap, len(current)),
	}
	for _, l := range current {
		snap := Snapshot(l)
		res.Next[l.ID] = snap

		before, seen := prev[l.ID]
		if !seen {
			continue
		}
		if escalations[before.Status][snap.Status] || (opts.NotifyOnCodeChange && codesChanged(before, snap)) {
			if n, ok := build(l, createdAtISO); ok {
				res.Notifications = append(res.Notifications, n)
			}
		}
	}
	return res
}

func codesChanged(before, after model.LoadSnapshot) bool {
	if before.Status == model.StatusGreen || after.Status == model.StatusGreen {
		return false
	}
	a := sortedCodes(before.ExceptionCodes)
	b := after.ExceptionCodes
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// sortedCodes guards against persisted snapshots written unsorted.
func sortedCodes(codes []model.ExceptionCode) []model.ExceptionCode {
	out := append([]model.ExceptionCode(nil), codes...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func build(l model.EvaluatedLoad, createdAtISO string) (model.Notification, bool) {
	primary, ok := l.Primary()
	if !ok {
		return model.Notification{}, false
	}
	return model.Notification{
		ID:            l.ID + "::" + string(primary.Code) + "::" + createdAtISO,
		LoadID:        l.ID,
		CreatedAtISO:  createdAtISO,
		Severity:      primary.Severity,
		Status:        l.ComputedStatus,
		Message:       string(primary.Code) + ": " + primary.Detail,
		ExceptionCode: primary.Code,
	}, true
}

// Differ runs Diff against a persisted snapshot map.
type Differ struct {
	store kv.Store
	key   string
	opts  DiffOptions
}

// NewDiffer creates a Differ that keeps its snapshot map under key.
func NewDiffer(store kv.Store, key string, opts DiffOptions) *Differ {
	return &Differ{store: store, key: key, opts: opts}
}

// Diff loads the previous snapshot map, diffs, and saves the next one.
func (d *Differ) Diff(ctx context.Context, current []model.EvaluatedLoad, createdAtISO string) []model.Notification {
	prev := kv.LoadJSON[model.SnapshotMap](ctx, d.store, d.key)
	res := Diff(prev, current, createdAtISO, d.opts)
	kv.SaveJSON(ctx, d.store, d.key, res.Next)
	return res.Notifications
}
