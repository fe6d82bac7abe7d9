package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reason explains a denied reservation.
type Reason string

const (
	ReasonRPMExceeded  Reason = "RPM_EXCEEDED"
	ReasonRPDExceeded  Reason = "RPD_EXCEEDED"
	ReasonUnknownModel Reason = "UNKNOWN_MODEL"
)

// snapshotMaxAge bounds how old a restored snapshot may be.
const snapshotMaxAge = 24 * time.Hour

// Limit is the per-model request budget.
type Limit struct {
	Model string
	RPM   int
	RPD   int
}

// Decision is the result of TryReserve.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Counters holds the two rolling windows for one model. Windows are the
// UTC minute and day the counts belong to.
type Counters struct {
	MinuteWindow time.Time `json:"minute_window"`
	MinuteCount  int       `json:"minute_count"`
	DayWindow    time.Time `json:"day_window"`
	DayCount     int       `json:"day_count"`
}

// Snapshot is the persisted form of the tracker.
type Snapshot struct {
	TakenAt time.Time           `json:"taken_at"`
	Models  map[string]Counters `json:"models"`
}

// Status reports current usage for one model.
type Status struct {
	Model      string `json:"model"`
	RPM        int    `json:"rpm"`
	RPD        int    `json:"rpd"`
	MinuteUsed int    `json:"minute_used"`
	DayUsed    int    `json:"day_used"`
}

// SnapshotStore persists tracker snapshots.
type SnapshotStore interface {
	// Load returns the last saved snapshot, or nil if there is none.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// Tracker counts requests per model in minute and day windows. Checks are
// advisory: concurrent callers that all pass TryReserve before any of them
// commits may overshoot a limit slightly.
type Tracker struct {
	mu       sync.Mutex
	limits   map[string]Limit
	order    []string
	counters map[string]*Counters
	now      func() time.Time
	store    SnapshotStore
	cron     *cron.Cron
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithStore enables snapshot persistence.
func WithStore(s SnapshotStore) Option {
	return func(t *Tracker) { t.store = s }
}

// New creates a tracker for the given models.
func New(limits []Limit, opts ...Option) *Tracker {
	t := &Tracker{
		limits:   make(map[string]Limit, len(limits)),
		counters: make(map[string]*Counters, len(limits)),
		now:      time.Now,
	}
	for _, l := range limits {
		if _, dup := t.limits[l.Model]; !dup {
			t.order = append(t.order, l.Model)
		}
		t.limits[l.Model] = l
		t.counters[l.Model] = &Counters{}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Models returns the tracked models in registration order.
func (t *Tracker) Models() []string {
	return append([]string(nil), t.order...)
}

// TryReserve reports whether model may be called now. It does not count
// the call; Commit does.
func (t *Tracker) TryReserve(model string) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit, ok := t.limits[model]
	if !ok {
		return Decision{Reason: ReasonUnknownModel}
	}
	c := t.current(model)
	if c.MinuteCount >= limit.RPM {
		return Decision{Reason: ReasonRPMExceeded}
	}
	if c.DayCount >= limit.RPD {
		return Decision{Reason: ReasonRPDExceeded}
	}
	return Decision{Allowed: true}
}

// Commit counts one confirmed call against model and persists a snapshot.
// Persistence failures are logged and otherwise ignored.
func (t *Tracker) Commit(ctx context.Context, model string) {
	t.mu.Lock()
	if _, ok := t.limits[model]; !ok {
		t.mu.Unlock()
		return
	}
	c := t.current(model)
	c.MinuteCount++
	c.DayCount++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, snap); err != nil {
		log.Warn().Err(err).Str("model", model).Msg("saving quota snapshot")
	}
}

// current returns the counters for model with stale windows reset.
// Callers must hold t.mu.
func (t *Tracker) current(model string) *Counters {
	now := t.now().UTC()
	minute := now.Truncate(time.Minute)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	c := t.counters[model]
	if !c.MinuteWindow.Equal(minute) {
		c.MinuteWindow = minute
		c.MinuteCount = 0
	}
	if !c.DayWindow.Equal(day) {
		c.DayWindow = day
		c.DayCount = 0
	}
	return c
}

// Status returns usage for every model in registration order.
func (t *Tracker) Status() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Status, 0, len(t.order))
	for _, m := range t.order {
		l := t.limits[m]
		c := t.current(m)
		out = append(out, Status{
			Model:      m,
			RPM:        l.RPM,
			RPD:        l.RPD,
			MinuteUsed: c.MinuteCount,
			DayUsed:    c.DayCount,
		})
	}
	return out
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{TakenAt: t.now().UTC(), Models: make(map[string]Counters, len(t.counters))}
	for m, c := range t.counters {
		s.Models[m] = *c
	}
	return s
}

// Restore loads counters from s. Snapshots older than a day and models
// no longer configured are ignored. Windows that have since rolled over
// reset on next use.
func (t *Tracker) Restore(s Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now().Sub(s.TakenAt) > snapshotMaxAge {
		return false
	}
	for m, c := range s.Models {
		if _, ok := t.limits[m]; !ok {
			continue
		}
		cc := c
		t.counters[m] = &cc
	}
	return true
}

// Load restores the tracker from its store, if any.
func (t *Tracker) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	s, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading quota snapshot: %w", err)
	}
	if s == nil {
		return nil
	}
	if t.Restore(*s) {
		log.Info().Time("taken_at", s.TakenAt).Msg("restored quota snapshot")
	} else {
		log.Info().Time("taken_at", s.TakenAt).Msg("ignoring stale quota snapshot")
	}
	return nil
}

// Persist saves a snapshot to the store.
func (t *Tracker) Persist(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.Save(ctx, t.Snapshot()); err != nil {
		return fmt.Errorf("saving quota snapshot: %w", err)
	}
	return nil
}

// StartSnapshots persists a snapshot every interval until Stop is called.
func (t *Tracker) StartSnapshots(interval time.Duration) error {
	if t.store == nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.Persist(ctx); err != nil {
			log.Warn().Err(err).Msg("periodic quota snapshot")
		}
	}); err != nil {
		return fmt.Errorf("scheduling quota snapshots: %w", err)
	}
	c.Start()

	t.mu.Lock()
	t.cron = c
	t.mu.Unlock()
	return nil
}

// Stop halts periodic snapshots and writes a final one.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	c := t.cron
	t.cron = nil
	t.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	return t.Persist(ctx)
}
