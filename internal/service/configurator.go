// Package service owns the live rate configuration.  The Configurator holds
// the current store snapshot and is the only place where it changes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/queue"
	"github.com/iliyamo/hotel-rate-configurator/internal/repository"
)

// ErrPersist wraps repository failures during a mutation.  When it is
// returned the previous snapshot is still the current one.
var ErrPersist = errors.New("persist store")

// Options tune a Configurator.  Zero values pick the defaults.
type Options struct {
	PropertyID   string
	Instance     string           // defaults to a random id
	CalendarDays int              // days of a freshly created calendar
	Now          func() time.Time // clock used to seed the calendar
	OnChange     func(ctx context.Context)
}

// Configurator serializes every change to the store.  A change is applied to
// a deep copy, saved, and only then swapped in, so readers always see a
// complete saved snapshot and never a half-applied one.
type Configurator struct {
	repo repository.StoreRepository
	pub  Publisher
	log  *zap.Logger
	opts Options

	writeMu sync.Mutex // one mutation at a time
	mu      sync.RWMutex
	current *model.Store
	rev     atomic.Uint64 // bumped on every swap
}

// NewConfigurator wires a configurator.  Bootstrap must run before use.
func NewConfigurator(repo repository.StoreRepository, pub Publisher, log *zap.Logger, opts Options) *Configurator {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Instance == "" {
		opts.Instance = uuid.NewString()
	}
	if opts.CalendarDays <= 0 {
		opts.CalendarDays = model.DefaultCalendarDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Configurator{repo: repo, pub: pub, log: log, opts: opts}
}

// Instance returns the id this configurator publishes under.
func (c *Configurator) Instance() string { return c.opts.Instance }

// CalendarDays returns the length of a freshly created calendar.
func (c *Configurator) CalendarDays() int { return c.opts.CalendarDays }

// Bootstrap loads the stored configuration.  A property without one is
// seeded with the demo store and saved.  A stored configuration without a
// calendar gets a fresh one starting today.
func (c *Configurator) Bootstrap(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	s, err := c.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	seeded := s == nil
	if seeded {
		s = model.DefaultStore()
	}
	hydrated := s.Hydrate(c.opts.Now(), c.opts.CalendarDays)
	if seeded || hydrated {
		if err := c.repo.Save(ctx, s); err != nil {
			return fmt.Errorf("bootstrap: %w: %v", ErrPersist, err)
		}
	}
	c.swap(s)
	c.log.Info("store ready",
		zap.String("property", c.opts.PropertyID),
		zap.Bool("seeded", seeded),
		zap.Bool("calendar_created", hydrated),
		zap.Int("rates", len(s.Rates)),
		zap.Int("rooms", len(s.Rooms)))
	return nil
}

// Snapshot returns the current store.  It is shared by all readers and must
// not be modified.
func (c *Configurator) Snapshot() *model.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Configurator) swap(s *model.Store) {
	c.mu.Lock()
	c.current = s
	c.rev.Add(1)
	c.mu.Unlock()
}

// Revision counts the snapshots made current so far.  A reader that sees the
// same revision before and after its work read one unchanged snapshot.
func (c *Configurator) Revision() uint64 { return c.rev.Load() }

// Mutate applies fn to a copy of the current store, saves the copy and makes
// it current.  If fn or the save fails nothing changes.  kind names the
// change in logs and notifications.
func (c *Configurator) Mutate(ctx context.Context, kind string, fn func(s *model.Store) error) (*model.Store, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	next := c.Snapshot().Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := c.repo.Save(ctx, next); err != nil {
		c.log.Error("store save failed", zap.String("kind", kind), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	c.swap(next)
	c.log.Debug("store changed", zap.String("kind", kind))
	c.changed(ctx)

	ev := queue.StoreChangedEvent{
		PropertyID: c.opts.PropertyID,
		Instance:   c.opts.Instance,
		Kind:       kind,
		ChangedAt:  time.Now().UTC(),
	}
	if err := c.pub.Publish(ctx, ev); err != nil {
		c.log.Warn("change notification not sent", zap.String("kind", kind), zap.Error(err))
	}
	return next, nil
}

func (c *Configurator) changed(ctx context.Context) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(ctx)
	}
}

// Reload replaces the current snapshot with the stored one.  It is a no-op
// when nothing is stored.
func (c *Configurator) Reload(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	s, err := c.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if s == nil {
		return nil
	}
	s.Hydrate(c.opts.Now(), c.opts.CalendarDays)
	c.swap(s)
	c.changed(ctx)
	return nil
}

// HandleChange is the queue handler: changes published by other instances
// for the same property trigger a reload.
func (c *Configurator) HandleChange(ctx context.Context, ev queue.StoreChangedEvent) error {
	if ev.Instance == c.opts.Instance || ev.PropertyID != c.opts.PropertyID {
		return nil
	}
	c.log.Info("store changed elsewhere, reloading", zap.String("kind", ev.Kind), zap.String("from", ev.Instance))
	return c.Reload(ctx)
}
