// Package dashboard runs the evaluation tick and holds the latest derived view.
package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"freight-ops-backend/config"
	"freight-ops-backend/internal/actions"
	"freight-ops-backend/internal/evaluate"
	"freight-ops-backend/internal/kv"
	"freight-ops-backend/internal/loads"
	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/notification"
	"freight-ops-backend/internal/parse"
)

// Dispatcher queues a notification for push delivery without blocking.
type Dispatcher interface {
	Dispatch(n model.Notification)
}

// View is everything the dashboard renders, as of GeneratedAtISO.
type View struct {
	GeneratedAtISO string                `json:"generatedAtISO"`
	Loads          []model.EvaluatedLoad `json:"loads"`
	Attention      []model.EvaluatedLoad `json:"attention"`
	Actions        []model.BrokerAction  `json:"actions"`
	Notifications  []model.Notification  `json:"notifications"`
	Unread         int                   `json:"unread"`
}

// Service re-derives the dashboard on a timer and on demand.
type Service struct {
	interval time.Duration
	provider loads.Provider
	differ   *notification.Differ
	feed     *notification.Feed
	overlay  *actions.Overlay
	contacts *actions.ContactLog
	push     Dispatcher

	now    func() time.Time
	onTick func()

	trigger chan struct{}

	// mu serializes ticks and mutations.
	mu      sync.Mutex
	derived []model.BrokerAction

	viewMu sync.RWMutex
	view   View
}

// NewService wires a Service over store. push may be nil when web push is off.
func NewService(cfg config.EvaluatorConfig, keyPrefix string, provider loads.Provider, store kv.Store, push Dispatcher) *Service {
	keys := kv.NewKeys(keyPrefix)
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{
		interval: interval,
		provider: provider,
		differ:   notification.NewDiffer(store, keys.Snapshots, notification.DiffOptions{NotifyOnCodeChange: cfg.NotifyOnCodeChange}),
		feed:     notification.NewFeed(store, keys.Notifications, keys.NotificationsRead),
		overlay:  actions.NewOverlay(store, keys.ActionState),
		contacts: actions.NewContactLog(store, keys.ContactLog),
		push:     push,
		now:      func() time.Time { return time.Now().UTC() },
		trigger:  make(chan struct{}, 1),
		view: View{
			Loads:         []model.EvaluatedLoad{},
			Attention:     []model.EvaluatedLoad{},
			Actions:       []model.BrokerAction{},
			Notifications: []model.Notification{},
		},
	}
}

// OnTick registers fn to run after every completed tick and mutation.
func (s *Service) OnTick(fn func()) {
	s.onTick = fn
}

// Run ticks once, then on every interval or Trigger until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting dashboard service...")
	s.Tick(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dashboard service shutting down.")
			return
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.interval)
		case <-s.trigger:
			s.Tick(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Trigger requests an immediate tick. It never blocks; requests made while
// one is already pending are coalesced.
func (s *Service) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Tick fetches loads and rebuilds the view. A fetch error keeps the previous view.
// The fetch runs outside mu so mutations are not held up by a slow source.
func (s *Service) Tick(ctx context.Context) {
	raw, err := s.provider.Loads(ctx)
	if err != nil {
		log.Printf("Error fetching loads: %v. Keeping previous view.", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	nowISO := parse.ISO(now)

	evaluated := evaluate.AllLoads(raw, now)
	attention := evaluate.SortNeedsAttention(evaluate.NeedsAttention(evaluated))

	fresh := s.differ.Diff(ctx, evaluated, nowISO)
	if len(fresh) > 0 {
		log.Printf("Raising %d notifications", len(fresh))
		s.feed.Prepend(ctx, fresh)
		if s.push != nil {
			for _, n := range fresh {
				s.push.Dispatch(n)
			}
		}
	}

	s.derived = actions.Derive(actions.DeriveInput(attention), nowISO)
	overlaid, _ := s.overlay.Apply(ctx, s.derived, now)

	s.setView(View{
		GeneratedAtISO: nowISO,
		Loads:          evaluated,
		Attention:      attention,
		Actions:        overlaid,
		Notifications:  s.feed.List(ctx),
		Unread:         s.feed.Unread(ctx),
	})
	log.Printf("Tick finished: %d loads, %d need attention, %d actions", len(evaluated), len(attention), len(overlaid))
}

// View returns the latest view.
func (s *Service) View() View {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.view
}

func (s *Service) setView(v View) {
	s.viewMu.Lock()
	s.view = v
	s.viewMu.Unlock()
	if s.onTick != nil {
		s.onTick()
	}
}

// refreshLocked re-overlays the last derived actions and re-reads the feed so
// a mutation is visible before the triggered tick lands. State is not written
// back here; pruning happens on the tick. Callers hold mu.
func (s *Service) refreshLocked(ctx context.Context) {
	v := s.View()
	v.Actions, _ = actions.OverlayState(s.derived, s.overlay.State(ctx), s.now())
	v.Notifications = s.feed.List(ctx)
	v.Unread = s.feed.Unread(ctx)
	s.setView(v)
}

// SetActionDone marks actionID done.
func (s *Service) SetActionDone(ctx context.Context, actionID string) model.ActionStateEntry {
	return s.mutateAction(ctx, actionID, s.overlay.SetDone)
}

// SnoozeAction hides actionID for actions.SnoozeFor.
func (s *Service) SnoozeAction(ctx context.Context, actionID string) model.ActionStateEntry {
	return s.mutateAction(ctx, actionID, s.overlay.Snooze30m)
}

// ReopenAction marks actionID open.
func (s *Service) ReopenAction(ctx context.Context, actionID string) model.ActionStateEntry {
	return s.mutateAction(ctx, actionID, s.overlay.Reopen)
}

func (s *Service) mutateAction(ctx context.Context, actionID string, apply func(context.Context, string, time.Time) model.ActionStateEntry) model.ActionStateEntry {
	s.mu.Lock()
	entry := apply(ctx, actionID, s.now())
	s.refreshLocked(ctx)
	s.mu.Unlock()

	s.Trigger()
	return entry
}

// LogContact records outreach for an action.
func (s *Service) LogContact(ctx context.Context, actionID, loadID string, method model.ContactMethod) (model.ContactLogEntry, error) {
	s.mu.Lock()
	entry, err := s.contacts.Record(ctx, actionID, loadID, method, s.now())
	s.mu.Unlock()
	if err != nil {
		return entry, err
	}

	s.Trigger()
	return entry, nil
}

// Contacts returns the contact log filtered by loadID and actionID.
func (s *Service) Contacts(ctx context.Context, loadID, actionID string) []model.ContactLogEntry {
	return s.contacts.Filter(ctx, loadID, actionID)
}

// LatestContact returns the newest contact for actionID when set, else for loadID.
func (s *Service) LatestContact(ctx context.Context, loadID, actionID string) (model.ContactLogEntry, bool) {
	if actionID != "" {
		return s.contacts.LatestForAction(ctx, actionID)
	}
	return s.contacts.LatestForLoad(ctx, loadID)
}

// AckNotification marks one notification read. It reports false for an unknown id.
func (s *Service) AckNotification(ctx context.Context, id string) bool {
	s.mu.Lock()
	ok := s.feed.Ack(ctx, id)
	if ok {
		s.refreshLocked(ctx)
	}
	s.mu.Unlock()

	if ok {
		s.Trigger()
	}
	return ok
}

// AckAllNotifications marks the whole feed read.
func (s *Service) AckAllNotifications(ctx context.Context) {
	s.mu.Lock()
	s.feed.AckAll(ctx)
	s.refreshLocked(ctx)
	s.mu.Unlock()

	s.Trigger()
}
