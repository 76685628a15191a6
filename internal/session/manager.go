package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/models"
	"github.com/napolitain/tycoon/internal/platform/logger"
	"github.com/napolitain/tycoon/internal/store"
)

// SaveStore is the persistence a Manager needs
type SaveStore interface {
	Get(ctx context.Context, id string) (store.Slot, error)
	Update(ctx context.Context, id string, profile models.SaveProfile) error
}

type running struct {
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager keeps one Session per open save id and autosaves running sessions
type Manager struct {
	mu            sync.Mutex
	store         SaveStore
	settings      *models.Settings
	clk           clock.Clock
	log           *logger.Logger
	autosaveEvery int
	sessions      map[string]*running
}

// NewManager creates a manager. autosaveEvery <= 0 disables autosave; sessions are
// still saved when stopped.
func NewManager(st SaveStore, settings *models.Settings, clk clock.Clock, log *logger.Logger, autosaveEvery int) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		store:         st,
		settings:      settings,
		clk:           clk,
		log:           log,
		autosaveEvery: autosaveEvery,
		sessions:      make(map[string]*running),
	}
}

// Open returns the session for id, loading it from the store if needed.
// A freshly loaded session has already caught up on elapsed time.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.openLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.session, nil
}

func (m *Manager) openLocked(ctx context.Context, id string) (*running, error) {
	if r, ok := m.sessions[id]; ok {
		return r, nil
	}
	slot, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s := New(id, m.settings, m.clk, m.log)
	s.Load(slot.Profile)
	r := &running{session: s}
	m.sessions[id] = r
	m.log.Info("session %s opened", id)
	return r, nil
}

// Start opens the session for id and runs its tick loop in the background
func (m *Manager) Start(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.openLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.cancel != nil {
		return r.session, nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	updates, unsubscribe := r.session.Subscribe()

	go func() {
		defer close(r.done)
		defer unsubscribe()
		go m.autosave(runCtx, r.session, updates)
		if err := r.session.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			m.log.Error("session %s stopped: %v", id, err)
		}
	}()
	return r.session, nil
}

func (m *Manager) autosave(ctx context.Context, s *Session, updates <-chan Update) {
	if m.autosaveEvery <= 0 {
		for range updates {
		}
		return
	}
	pending := 0
	for u := range updates {
		pending += u.Report.Ticks
		if pending < m.autosaveEvery {
			continue
		}
		pending = 0
		if err := m.saveSession(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
			m.log.Error("autosave %s: %v", s.ID(), err)
		}
	}
}

// Save checkpoints the session for id to the store
func (m *Manager) Save(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return m.saveSession(ctx, r.session)
}

func (m *Manager) saveSession(ctx context.Context, s *Session) error {
	profile, err := s.Checkpoint()
	if err != nil {
		return err
	}
	if err := m.store.Update(ctx, s.ID(), profile); err != nil {
		return err
	}
	m.log.Event("save", s.ID(), profile.Resources.Current.String())
	return nil
}

// Stop halts the tick loop for id and saves the session
func (m *Manager) Stop(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	halt(r)
	defer r.session.Close()
	return m.saveSession(ctx, r.session)
}

// Evict drops the session for id without saving it and ends its subscriptions
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		halt(r)
		r.session.Close()
	}
}

// Discard drops every session without saving. Callers that changed a profile are
// expected to have saved it already.
func (m *Manager) Discard() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*running)
	m.mu.Unlock()

	for _, r := range sessions {
		halt(r)
		r.session.Close()
	}
}

// Close stops and saves every session
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Stop(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func halt(r *running) {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}
