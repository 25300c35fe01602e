package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

// Stats describes the progress of a reconstruction run.
type Stats struct {
	RunID               string    `json:"run_id"`
	EventsProcessed     int64     `json:"events_processed"`
	SnapshotsEmitted    int64     `json:"snapshots_emitted"`
	SnapshotsSuppressed int64     `json:"snapshots_suppressed"`
	ResidentOrders      int       `json:"resident_orders"`
	BidLevels           int       `json:"bid_levels"`
	AskLevels           int       `json:"ask_levels"`
	StartedAt           time.Time `json:"started_at"`
}

// Engine drives one reconstruction: it applies each event to the book,
// builds the resulting snapshot, runs it through the change filter and
// fans emitted snapshots out to the configured repository, cache and
// publisher. Any of those collaborators may be nil; their failures are
// logged and never affect reconstruction, since the book state is the
// source of truth and the sinks are observers.
//
// Events must be handed to ProcessEvent one at a time in arrival order.
// The mutex only lets the read API observe state mid-run; it is not a
// license to apply events concurrently.
type Engine struct {
	repo  port.SnapshotRepository
	cache port.SnapshotCache
	pub   port.SnapshotPublisher
	log   *zap.Logger

	mu     sync.Mutex
	recon  *Reconstructor
	filter *ChangeFilter
	runID  string
	stats  Stats
}

func NewEngine(repo port.SnapshotRepository, cache port.SnapshotCache, pub port.SnapshotPublisher, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Engine{
		repo:   repo,
		cache:  cache,
		pub:    pub,
		log:    log,
		recon:  NewReconstructor(opts...),
		filter: NewChangeFilter(),
		runID:  runID,
		stats:  Stats{RunID: runID, StartedAt: time.Now()},
	}
}

// ProcessEvent fully applies one event, builds its snapshot and decides
// emission. It returns the snapshot and whether it was emitted; a
// suppressed snapshot is returned too so callers can inspect it.
func (e *Engine) ProcessEvent(ctx context.Context, ev *domain.Event) (*domain.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.EventsProcessed++

	// A Reset arriving before anything was emitted is the session
	// baseline: its empty-book snapshot is written unconditionally and
	// the book, already empty, is left untouched.
	if ev.Action == domain.ActionReset && e.filter.Emitted() == 0 {
		snap := e.recon.BuildSnapshot(ev)
		e.filter.Decide(snap)
		e.emit(ctx, snap)
		return snap, true
	}

	e.recon.Apply(ev)
	snap := e.recon.BuildSnapshot(ev)
	if !e.filter.Decide(snap) {
		return snap, false
	}
	e.emit(ctx, snap)
	return snap, true
}

// emit fans a freshly emitted snapshot out to the sinks. Must be called
// with the mutex held.
func (e *Engine) emit(ctx context.Context, snap *domain.Snapshot) {
	if e.repo != nil {
		if err := e.repo.SaveSnapshot(ctx, e.runID, snap); err != nil {
			e.log.Warn("snapshot persist failed",
				zap.Int64("index", snap.Index),
				zap.Error(err),
			)
		}
	}
	if e.cache != nil {
		if err := e.cache.SetLatest(ctx, snap.Symbol, snap); err != nil {
			e.log.Warn("snapshot cache update failed",
				zap.String("symbol", snap.Symbol),
				zap.Error(err),
			)
		}
	}
	if e.pub != nil {
		if err := e.pub.Publish(ctx, snap); err != nil {
			e.log.Warn("snapshot publish failed",
				zap.Int64("index", snap.Index),
				zap.Error(err),
			)
		}
	}
}

// LatestSnapshot returns the most recently emitted snapshot, or nil
// before the first emission.
func (e *Engine) LatestSnapshot() *domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Last()
}

// Stats returns a copy of the current run statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.SnapshotsEmitted = e.filter.Emitted()
	s.SnapshotsSuppressed = e.filter.Suppressed()
	s.ResidentOrders = e.recon.ResidentOrders()
	s.BidLevels = e.recon.BidLevels()
	s.AskLevels = e.recon.AskLevels()
	return s
}

// RunID identifies this reconstruction run in persisted output.
func (e *Engine) RunID() string {
	return e.runID
}
