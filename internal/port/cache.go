package port

import (
	"context"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// SnapshotCache keeps the latest emitted snapshot per symbol.
type SnapshotCache interface {
	SetLatest(ctx context.Context, symbol string, snap *domain.Snapshot) error
	GetLatest(ctx context.Context, symbol string) (*domain.Snapshot, error)
}
