package port

import (
	"context"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// SnapshotRepository persists emitted snapshots. Implementations must
// tolerate being called once per emitted snapshot in stream order.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, runID string, snap *domain.Snapshot) error
	LoadLatest(ctx context.Context, symbol string) (*domain.Snapshot, error)
}
