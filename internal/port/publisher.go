package port

import (
	"context"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// SnapshotPublisher streams emitted snapshots to an external consumer.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *domain.Snapshot) error
	Close() error
}
