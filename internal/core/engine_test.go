package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olyamironova/mbp-reconstructor/internal/adapter/in_memory"
	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

func resetEvent() *domain.Event {
	return &domain.Event{
		TsEvent: "2024-01-02T09:00:00.000000000Z",
		Action:  domain.ActionReset,
		Side:    domain.NoSide,
		Symbol:  "ARL",
	}
}

func TestEngine_FirstResetEmitsEmptyBaseline(t *testing.T) {
	e := NewEngine(nil, nil, nil, zap.NewNop())

	snap, emitted := e.ProcessEvent(context.Background(), resetEvent())

	require.True(t, emitted, "the session baseline is written unconditionally")
	assert.Equal(t, int64(0), snap.Index)
	assert.Equal(t, domain.ActionReset, snap.Action)
	for i := 0; i < domain.BookDepth; i++ {
		assert.Nil(t, snap.Bids[i])
		assert.Nil(t, snap.Asks[i])
	}
}

// Full pipeline walk over the canonical four-event session.
func TestEngine_SessionScenario(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil, nil, nil, zap.NewNop())

	snap, emitted := e.ProcessEvent(ctx, resetEvent())
	require.True(t, emitted)
	assert.Equal(t, int64(0), snap.Index)
	assert.Nil(t, snap.Bids[0])
	assert.Nil(t, snap.Asks[0])

	snap, emitted = e.ProcessEvent(ctx, addEvent("O1", "100.00", 5, domain.Bid))
	require.True(t, emitted)
	assert.Equal(t, int64(1), snap.Index)
	assert.Equal(t, domain.ActionAdd, snap.Action)
	assert.Equal(t, 0, snap.Depth)
	require.NotNil(t, snap.Bids[0])
	assert.True(t, snap.Bids[0].Price.Equal(d("100.00")))
	assert.Equal(t, int64(5), snap.Bids[0].Size)
	assert.Equal(t, int64(1), snap.Bids[0].Count)

	snap, emitted = e.ProcessEvent(ctx, addEvent("O2", "101.00", 3, domain.Ask))
	require.True(t, emitted)
	assert.Equal(t, int64(2), snap.Index)
	assert.Equal(t, 0, snap.Depth)
	require.NotNil(t, snap.Bids[0], "bid side unchanged by the ask add")
	assert.Equal(t, int64(5), snap.Bids[0].Size)
	require.NotNil(t, snap.Asks[0])
	assert.True(t, snap.Asks[0].Price.Equal(d("101.00")))
	assert.Equal(t, int64(3), snap.Asks[0].Size)

	snap, emitted = e.ProcessEvent(ctx, cancelEvent("O1"))
	require.True(t, emitted)
	assert.Equal(t, int64(3), snap.Index)
	assert.Equal(t, domain.ActionCancel, snap.Action)
	assert.Equal(t, 0, snap.Depth)
	assert.Nil(t, snap.Bids[0], "bid side empty again")
	require.NotNil(t, snap.Asks[0])

	stats := e.Stats()
	assert.Equal(t, int64(4), stats.EventsProcessed)
	assert.Equal(t, int64(4), stats.SnapshotsEmitted)
	assert.Equal(t, int64(0), stats.SnapshotsSuppressed)
}

func TestEngine_SuppressesChurnBelowVisibleDepth(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil, nil, nil, zap.NewNop())

	// Eleven bid levels: the eleventh-best never shows in the window, so
	// its own add is already suppressed during setup.
	for i := 0; i < 11; i++ {
		e.ProcessEvent(ctx, addEvent(fmt.Sprintf("o%d", i), fmt.Sprintf("%d.00", 110-i), 1, domain.Bid))
	}
	before := e.Stats()
	assert.Equal(t, int64(10), before.SnapshotsEmitted)
	assert.Equal(t, int64(1), before.SnapshotsSuppressed)

	_, emitted := e.ProcessEvent(ctx, cancelEvent("o10"))
	assert.False(t, emitted, "cancel below the visible window is suppressed")

	_, emitted = e.ProcessEvent(ctx, addEvent("o11", "100.00", 1, domain.Bid))
	assert.False(t, emitted, "re-add below the visible window is suppressed")

	stats := e.Stats()
	assert.Equal(t, before.SnapshotsEmitted, stats.SnapshotsEmitted)
	assert.Equal(t, before.SnapshotsSuppressed+2, stats.SnapshotsSuppressed)
}

func TestEngine_LatestSnapshotTracksEmissions(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil, nil, nil, zap.NewNop())

	assert.Nil(t, e.LatestSnapshot())

	e.ProcessEvent(ctx, addEvent("o1", "100.00", 5, domain.Bid))
	last := e.LatestSnapshot()
	require.NotNil(t, last)
	assert.Equal(t, int64(0), last.Index)

	// Suppressed event leaves the latest snapshot in place.
	e.ProcessEvent(ctx, cancelEvent("nope"))
	assert.Equal(t, last, e.LatestSnapshot())
}

func TestEngine_FanOutToRepositoryAndCache(t *testing.T) {
	ctx := context.Background()
	repo := in_memory.NewMemoryRepo()
	cache := in_memory.NewCache()
	e := NewEngine(repo, cache, nil, zap.NewNop())

	e.ProcessEvent(ctx, resetEvent())
	e.ProcessEvent(ctx, addEvent("O1", "100.00", 5, domain.Bid))
	e.ProcessEvent(ctx, cancelEvent("missing")) // suppressed, must not reach the sinks

	saved := repo.RunSnapshots(e.RunID())
	require.Len(t, saved, 2, "only emitted snapshots are persisted")
	assert.Equal(t, int64(0), saved[0].Index)
	assert.Equal(t, int64(1), saved[1].Index)

	latest, err := cache.GetLatest(ctx, "ARL")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(1), latest.Index)
	require.NotNil(t, latest.Bids[0])
	assert.Equal(t, int64(5), latest.Bids[0].Size)
}
