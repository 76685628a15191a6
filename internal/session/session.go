// Package session owns a running save profile: it serializes engine calls behind a
// mutex, converts wall-clock time into ticks and fans updates out to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/models"
	"github.com/napolitain/tycoon/internal/platform/logger"
)

var ErrNoProfile = errors.New("no profile loaded")

// subscriberBuffer is how many updates a slow subscriber may lag before updates are dropped
const subscriberBuffer = 16

// Update is published after every state change
type Update struct {
	Profile models.SaveProfile
	Report  engine.TickReport
}

type Session struct {
	mu        sync.Mutex
	id        string
	settings  *models.Settings
	clk       clock.Clock
	log       *logger.Logger
	profile   models.SaveProfile
	loaded    bool
	settledAt time.Time

	subMu   sync.Mutex
	subs    map[int]chan Update
	nextSub int
	closed  bool
}

// New creates an empty session. A nil logger discards output.
func New(id string, settings *models.Settings, clk clock.Clock, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Discard()
	}
	return &Session{
		id:       id,
		settings: settings,
		clk:      clk,
		log:      log,
		subs:     make(map[int]chan Update),
	}
}

// ID returns the save id this session runs
func (s *Session) ID() string {
	return s.id
}

// Settings returns the settings the session simulates against
func (s *Session) Settings() *models.Settings {
	return s.settings
}

// Load replaces the current profile and catches up on the whole ticks elapsed since
// the profile was saved. The remainder carries over to the next settle.
func (s *Session) Load(profile models.SaveProfile) engine.TickReport {
	s.mu.Lock()
	s.profile = profile.Clone()
	s.loaded = true
	s.settledAt = profile.CreatedAt
	if now := s.clk.Now(); s.settledAt.After(now) {
		s.settledAt = now
	}
	update, report := s.settleLocked()
	s.mu.Unlock()

	if report.Ticks > 0 {
		s.log.Event("catch_up", s.id, fmt.Sprintf("%d ticks", report.Ticks))
	}
	s.publish(update)
	return report
}

// Settle applies the whole ticks that elapsed since the last settle
func (s *Session) Settle() (engine.TickReport, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return engine.TickReport{}, ErrNoProfile
	}
	update, report := s.settleLocked()
	s.mu.Unlock()

	if report.Ticks > 0 {
		s.publish(update)
	}
	return report, nil
}

func (s *Session) settleLocked() (Update, engine.TickReport) {
	ticks := s.settings.TicksElapsed(s.clk.Now().Sub(s.settledAt))
	var report engine.TickReport
	if ticks > 0 {
		s.profile, report = engine.Advance(s.profile, ticks, s.settings)
		s.settledAt = s.settledAt.Add(time.Duration(ticks) * s.settings.TickInterval)
	}
	return Update{Profile: s.profile.Clone(), Report: report}, report
}

// Tick advances the profile by n ticks regardless of wall-clock time
func (s *Session) Tick(n int) (models.SaveProfile, engine.TickReport, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.SaveProfile{}, engine.TickReport{}, ErrNoProfile
	}
	next, report := engine.Advance(s.profile, n, s.settings)
	s.profile = next
	snap := next.Clone()
	s.mu.Unlock()

	for _, c := range report.Completed {
		s.log.Event("completed", s.id, c.ID)
	}
	s.publish(Update{Profile: snap.Clone(), Report: report})
	return snap, report, nil
}

// Acquire settles elapsed ticks, then develops a content asset or hires an employee
func (s *Session) Acquire(category models.AssetCategory, assetID string) (models.SaveProfile, engine.Outcome, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.SaveProfile{}, engine.UnknownDefinition, ErrNoProfile
	}
	settled, report := s.settleLocked()
	next, outcome := engine.TryAcquireAsset(s.profile, category, assetID, s.settings, s.clk.Now())
	s.profile = next
	snap := next.Clone()
	s.mu.Unlock()

	if report.Ticks > 0 {
		s.publish(settled)
	}

	s.log.Event("acquire", s.id, fmt.Sprintf("%s/%s %s", category.ShortName(), assetID, outcome))
	if outcome == engine.Applied {
		s.publish(Update{Profile: snap.Clone()})
	}
	return snap, outcome, nil
}

// PurchaseContainer settles elapsed ticks, then buys one container of the given type
func (s *Session) PurchaseContainer(containerTypeID string) (models.SaveProfile, engine.Outcome, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.SaveProfile{}, engine.UnknownDefinition, ErrNoProfile
	}
	settled, report := s.settleLocked()
	next, outcome := engine.TryPurchaseContainer(s.profile, containerTypeID, s.settings)
	s.profile = next
	snap := next.Clone()
	s.mu.Unlock()

	if report.Ticks > 0 {
		s.publish(settled)
	}

	s.log.Event("purchase_container", s.id, fmt.Sprintf("%s %s", containerTypeID, outcome))
	if outcome == engine.Applied {
		s.publish(Update{Profile: snap.Clone()})
	}
	return snap, outcome, nil
}

// Capacity returns the slot totals of the current profile
func (s *Session) Capacity() (engine.Capacity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoProfile
	}
	return engine.ComputeCapacity(s.profile, s.settings), nil
}

// Snapshot returns a copy of the current profile
func (s *Session) Snapshot() (models.SaveProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.SaveProfile{}, ErrNoProfile
	}
	return s.profile.Clone(), nil
}

// Checkpoint returns a copy of the current profile stamped with the instant it was
// last settled to, ready to be persisted. The part of a tick since then is not lost:
// reloading catches up from that instant.
func (s *Session) Checkpoint() (models.SaveProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.SaveProfile{}, ErrNoProfile
	}
	snap := s.profile.Clone()
	snap.CreatedAt = s.settledAt.UTC()
	return snap, nil
}

// Run settles the session once per tick interval until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.settings.TickInterval)
	defer ticker.Stop()
	return s.run(ctx, ticker.C)
}

func (s *Session) run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			if _, err := s.Settle(); err != nil {
				return err
			}
		}
	}
}

// Subscribe registers for updates. Updates are dropped while the channel is full.
// The returned cancel func closes the channel. After Close the channel is already closed.
func (s *Session) Subscribe() (<-chan Update, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan Update, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription. The profile stays readable.
func (s *Session) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) publish(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
			s.log.Warn("session %s: dropping update for slow subscriber", s.id)
		}
	}
}
