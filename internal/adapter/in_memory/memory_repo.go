package in_memory

import (
	"context"
	"errors"
	"sync"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

var _ port.SnapshotRepository = (*MemoryRepo)(nil)

// MemoryRepo keeps emitted snapshots in process memory. Tests use it
// where a real repository would sit; it holds every saved snapshot, so
// it is not meant for unbounded production runs.
type MemoryRepo struct {
	mu       sync.Mutex
	byRun    map[string][]*domain.Snapshot
	bySymbol map[string]*domain.Snapshot
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byRun:    make(map[string][]*domain.Snapshot),
		bySymbol: make(map[string]*domain.Snapshot),
	}
}

func (r *MemoryRepo) SaveSnapshot(ctx context.Context, runID string, snap *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copySnap := snap.DeepCopy()
	r.byRun[runID] = append(r.byRun[runID], copySnap)
	r.bySymbol[snap.Symbol] = copySnap
	return nil
}

func (r *MemoryRepo) LoadLatest(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.bySymbol[symbol]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return snap.DeepCopy(), nil
}

// RunSnapshots returns the snapshots saved for a run, in emission order.
func (r *MemoryRepo) RunSnapshots(runID string) []*domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byRun[runID]
}
