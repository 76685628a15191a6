package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/loader"
	"github.com/napolitain/tycoon/internal/models"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func loadSettings(t *testing.T) *models.Settings {
	t.Helper()
	settings, err := loader.LoadSettings("../../data/settings.json")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	return settings
}

func newLoadedSession(t *testing.T) (*Session, *clock.FakeClock) {
	t.Helper()
	settings := loadSettings(t)
	clk := clock.NewFakeClock(testStart)
	s := New("save-1", settings, clk, nil)
	s.Load(engine.CreateProfile(settings, testStart))
	return s, clk
}

func TestNoProfile(t *testing.T) {
	s := New("empty", loadSettings(t), clock.NewFakeClock(testStart), nil)

	if _, err := s.Snapshot(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Snapshot: expected ErrNoProfile, got %v", err)
	}
	if _, _, err := s.Tick(1); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Tick: expected ErrNoProfile, got %v", err)
	}
	if _, _, err := s.Acquire(models.Employee, "engineer_level_1"); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Acquire: expected ErrNoProfile, got %v", err)
	}
	if _, _, err := s.PurchaseContainer("garage"); !errors.Is(err, ErrNoProfile) {
		t.Errorf("PurchaseContainer: expected ErrNoProfile, got %v", err)
	}
	if _, err := s.Capacity(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Capacity: expected ErrNoProfile, got %v", err)
	}
	if _, err := s.Checkpoint(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Checkpoint: expected ErrNoProfile, got %v", err)
	}
	if _, err := s.Settle(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Settle: expected ErrNoProfile, got %v", err)
	}
}

func TestLoadCatchesUpElapsedTicks(t *testing.T) {
	settings := loadSettings(t)
	saved := engine.CreateProfile(settings, testStart)

	// 3.7 seconds at 1s per tick
	clk := clock.NewFakeClock(testStart.Add(3700 * time.Millisecond))
	s := New("save-1", settings, clk, nil)
	report := s.Load(saved)

	if report.Ticks != 3 {
		t.Fatalf("expected 3 catch-up ticks, got %d", report.Ticks)
	}
	p, _ := s.Snapshot()
	if p.Resources.Current.Creativity != 6 || p.Resources.Current.Productivity != 3 {
		t.Fatalf("expected 6/3 after catch-up, got %v", p.Resources.Current)
	}

	// The leftover 0.7s counts toward the next tick
	clk.Advance(300 * time.Millisecond)
	report, err := s.Settle()
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if report.Ticks != 1 {
		t.Fatalf("expected 1 tick from carried remainder, got %d", report.Ticks)
	}
}

func TestLoadFutureProfileIsNotRewound(t *testing.T) {
	settings := loadSettings(t)
	clk := clock.NewFakeClock(testStart)
	s := New("save-1", settings, clk, nil)

	report := s.Load(engine.CreateProfile(settings, testStart.Add(time.Hour)))
	if report.Ticks != 0 {
		t.Fatalf("expected no ticks, got %d", report.Ticks)
	}
	clk.Advance(2 * time.Second)
	if report, _ := s.Settle(); report.Ticks != 2 {
		t.Fatalf("expected 2 ticks after advancing, got %d", report.Ticks)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s, _ := newLoadedSession(t)

	snap, _ := s.Snapshot()
	snap.Assets[0].Count = 99
	snap.Resources.Current.Money = -1

	again, _ := s.Snapshot()
	if again.Assets[0].Count != 1 || again.Resources.Current.Money != 50 {
		t.Fatalf("snapshot mutation leaked into session: %+v", again)
	}
}

func TestAcquireAndPurchase(t *testing.T) {
	s, _ := newLoadedSession(t)

	p, outcome, err := s.Acquire(models.Employee, "engineer_level_1")
	if err != nil || outcome != engine.Applied {
		t.Fatalf("hire: outcome %s err %v", outcome, err)
	}
	if p.AssetCount(models.Employee, "engineer_level_1") != 2 {
		t.Fatalf("expected 2 engineers")
	}

	_, outcome, err = s.PurchaseContainer("garage")
	if err != nil || outcome != engine.InsufficientResources {
		t.Fatalf("garage: expected insufficient_resources, got %s err %v", outcome, err)
	}

	_, outcome, _ = s.Acquire(models.Content, "missing_game")
	if outcome != engine.UnknownDefinition {
		t.Fatalf("expected unknown_definition, got %s", outcome)
	}

	capacity, err := s.Capacity()
	if err != nil {
		t.Fatalf("Capacity: %v", err)
	}
	if limit, _ := capacity.Limit(models.Employee); limit != 3 {
		t.Fatalf("expected employee capacity 3, got %v", limit)
	}
}

func TestAcquireUsesClock(t *testing.T) {
	s, clk := newLoadedSession(t)
	if _, _, err := s.Tick(10); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	clk.Advance(42 * time.Second)

	p, outcome, _ := s.Acquire(models.Content, "novel_game")
	if outcome != engine.Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	if got := p.InProgressAssets[0].StartTime; !got.Equal(testStart.Add(42 * time.Second)) {
		t.Fatalf("unexpected start time %v", got)
	}
}

func TestCheckpointStampsSettledInstant(t *testing.T) {
	s, clk := newLoadedSession(t)
	clk.Advance(90500 * time.Millisecond)
	if _, err := s.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	cp, err := s.Checkpoint()
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if !cp.CreatedAt.Equal(testStart.Add(90 * time.Second)) {
		t.Fatalf("expected createdAt at the last whole tick, got %v", cp.CreatedAt)
	}

	// Reloading a checkpoint immediately must not replay time twice
	reloaded := New("save-1", s.Settings(), clk, nil)
	if report := reloaded.Load(cp); report.Ticks != 0 {
		t.Fatalf("expected no catch-up, got %d ticks", report.Ticks)
	}
	// The half tick left over is still owed
	clk.Advance(500 * time.Millisecond)
	if report, _ := reloaded.Settle(); report.Ticks != 1 {
		t.Fatalf("expected the carried half tick to complete, got %d ticks", report.Ticks)
	}
}

func TestCheckpointKeepsSubTickTime(t *testing.T) {
	settings := loadSettings(t)
	clk := clock.NewFakeClock(testStart)
	profile := engine.CreateProfile(settings, testStart)

	// Saving and reloading every 900ms must still accrue one tick per second
	for i := 0; i < 10; i++ {
		clk.Advance(900 * time.Millisecond)
		s := New("save-1", settings, clk, nil)
		s.Load(profile)
		cp, err := s.Checkpoint()
		if err != nil {
			t.Fatalf("Checkpoint %d: %v", i, err)
		}
		profile = cp
	}

	if got := profile.Resources.Current.Creativity; got != 10 {
		t.Fatalf("expected creativity 10 after 9 seconds, got %v", got)
	}
	if !profile.CreatedAt.Equal(testStart.Add(9 * time.Second)) {
		t.Fatalf("expected createdAt %v, got %v", testStart.Add(9*time.Second), profile.CreatedAt)
	}
}

func TestRunSettlesOnEachTick(t *testing.T) {
	s, clk := newLoadedSession(t)
	updates, cancel := s.Subscribe()
	defer cancel()
	<-drain(updates)

	ticks := make(chan time.Time)
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.run(ctx, ticks) }()

	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		ticks <- clk.Now()
		u := <-updates
		if u.Report.Ticks != 1 {
			t.Fatalf("tick %d: expected 1 tick, got %d", i, u.Report.Ticks)
		}
	}

	stop()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	p, _ := s.Snapshot()
	if p.Resources.Current.Creativity != 6 {
		t.Fatalf("expected creativity 6 after 3 ticks, got %v", p.Resources.Current.Creativity)
	}
}

func TestRunWithoutElapsedTimeIsQuiet(t *testing.T) {
	s, _ := newLoadedSession(t)
	updates, cancel := s.Subscribe()
	defer cancel()

	ticks := make(chan time.Time)
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.run(ctx, ticks) }()

	ticks <- testStart
	stop()
	<-done

	select {
	case u := <-updates:
		t.Fatalf("unexpected update %+v", u.Report)
	default:
	}
}

func TestSubscribeCancel(t *testing.T) {
	s, _ := newLoadedSession(t)
	updates, cancel := s.Subscribe()

	if _, _, err := s.Tick(1); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	u, ok := <-updates
	if !ok || u.Report.Ticks != 1 {
		t.Fatalf("expected tick update, got %+v ok=%v", u, ok)
	}

	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Fatalf("expected closed channel")
	}
	if _, _, err := s.Tick(1); err != nil {
		t.Fatalf("Tick after cancel: %v", err)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s, _ := newLoadedSession(t)
	_, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		if _, _, err := s.Tick(1); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
	}
}

// drain returns a channel that closes once updates has no buffered values
func drain(updates <-chan Update) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-updates:
			default:
				return
			}
		}
	}()
	return done
}

func TestAcquireSettlesFirst(t *testing.T) {
	s, clk := newLoadedSession(t)
	// novel_game needs 10 productivity, which one engineer makes in 10 ticks
	clk.Advance(10 * time.Second)

	p, outcome, err := s.Acquire(models.Content, "novel_game")
	if err != nil || outcome != engine.Applied {
		t.Fatalf("expected applied after elapsed time, got %s err %v", outcome, err)
	}
	if len(p.InProgressAssets) != 1 {
		t.Fatalf("expected one development, got %d", len(p.InProgressAssets))
	}
	if report, _ := s.Settle(); report.Ticks != 0 {
		t.Fatalf("elapsed ticks applied twice: %d", report.Ticks)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s, _ := newLoadedSession(t)
	updates, cancel := s.Subscribe()

	s.Close()
	for range updates {
	}
	cancel()

	late, lateCancel := s.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("expected subscribe after close to return a closed channel")
	}
	lateCancel()

	if _, _, err := s.Tick(1); err != nil {
		t.Fatalf("Tick after close: %v", err)
	}
	if _, err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot after close: %v", err)
	}
}
