package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

var _ port.SnapshotRepository = (*PgRepo)(nil)

// PgRepo persists emitted snapshots to Postgres. Scalar columns are
// stored directly; the per-side level arrays go into JSONB, where an
// absent level serializes as null and stays distinguishable from a
// zero-priced one.
type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgRepo) SaveSnapshot(ctx context.Context, runID string, snap *domain.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	bids, err := json.Marshal(snap.Bids)
	if err != nil {
		return err
	}
	asks, err := json.Marshal(snap.Asks)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO mbp_snapshots(run_id, emission_index, ts_recv, ts_event, rtype, publisher_id, instrument_id,
  action, side, depth, price, size, channel_id, flags, ts_in_delta, sequence, symbol, order_id, bids, asks)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (run_id, emission_index) DO NOTHING
`, runID, snap.Index, snap.TsRecv, snap.TsEvent, snap.RType, snap.PublisherID, snap.InstrumentID,
		string(snap.Action), string(snap.Side), snap.Depth, snap.Price, snap.Size,
		snap.ChannelID, snap.Flags, snap.TsInDelta, snap.Sequence, snap.Symbol, snap.OrderID, string(bids), string(asks))
	return err
}

// LoadLatest returns the highest-index snapshot stored for a symbol.
func (p *PgRepo) LoadLatest(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	var (
		snap         domain.Snapshot
		action, side string
		bids, asks   string
	)
	err := p.pool.QueryRow(ctx, `
SELECT emission_index, ts_recv, ts_event, rtype, publisher_id, instrument_id,
  action, side, depth, price, size, channel_id, flags, ts_in_delta, sequence, symbol, order_id, bids, asks
FROM mbp_snapshots
WHERE symbol = $1
ORDER BY emission_index DESC
LIMIT 1
`, symbol).Scan(&snap.Index, &snap.TsRecv, &snap.TsEvent, &snap.RType, &snap.PublisherID, &snap.InstrumentID,
		&action, &side, &snap.Depth, &snap.Price, &snap.Size,
		&snap.ChannelID, &snap.Flags, &snap.TsInDelta, &snap.Sequence, &snap.Symbol, &snap.OrderID, &bids, &asks)
	if err != nil {
		return nil, err
	}
	snap.Action = domain.Action(action)
	snap.Side = domain.Side(side)
	if err := json.Unmarshal([]byte(bids), &snap.Bids); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(asks), &snap.Asks); err != nil {
		return nil, err
	}
	return &snap, nil
}
