package mbocsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

func TestEncoder_Header(t *testing.T) {
	var buf strings.Builder
	enc := NewEncoder(&buf)

	require.NoError(t, enc.WriteHeader())
	require.NoError(t, enc.Flush())

	header := buf.String()
	assert.True(t, strings.HasPrefix(header,
		",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence,bid_px_00,bid_sz_00,bid_ct_00,ask_px_00,ask_sz_00,ask_ct_00,"))
	assert.True(t, strings.HasSuffix(header, ",ask_ct_09,symbol,order_id\n"))
	assert.Contains(t, header, ",bid_px_07,bid_sz_07,bid_ct_07,")
	// 1 index column + 13 header fields + 60 level columns + 2 trailers.
	assert.Equal(t, 76, len(strings.Split(strings.TrimSuffix(header, "\n"), ",")))
}

func TestEncoder_SnapshotRow(t *testing.T) {
	snap := &domain.Snapshot{
		Index:        1,
		TsRecv:       "2024-01-02T09:30:00.000000002Z",
		TsEvent:      "2024-01-02T09:30:00.000000002Z",
		RType:        10,
		PublisherID:  2,
		InstrumentID: 1108,
		Action:       domain.ActionAdd,
		Side:         domain.Bid,
		Depth:        0,
		Price:        d("5.51"),
		Size:         100,
		Flags:        130,
		TsInDelta:    165,
		Sequence:     851012,
		Symbol:       "ARL",
		OrderID:      "817593",
	}
	snap.Bids[0] = &domain.Level{Price: d("5.51"), Size: 100, Count: 1}

	var buf strings.Builder
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteSnapshot(snap))
	require.NoError(t, enc.Flush())

	want := "1,2024-01-02T09:30:00.000000002Z,2024-01-02T09:30:00.000000002Z,10,2,1108,A,B,0,5.51,100,130,165,851012" +
		",5.51,100,1,,0,0" + strings.Repeat(",,0,0,,0,0", 9) +
		",ARL,817593\n"
	assert.Equal(t, want, buf.String())
}

// An absent level and a zero-priced event are rendered differently: the
// event price column goes empty only when the price is not positive,
// and a level price column goes empty only when the slot has no level.
func TestEncoder_AbsentLevelVersusEmptyPrice(t *testing.T) {
	snap := &domain.Snapshot{
		Index:   0,
		TsRecv:  "t",
		TsEvent: "t",
		RType:   10,
		Action:  domain.ActionReset,
		Side:    domain.NoSide,
		Symbol:  "ARL",
		OrderID: "0",
	}

	var buf strings.Builder
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteSnapshot(snap))
	require.NoError(t, enc.Flush())

	want := "0,t,t,10,0,0,R,N,0,,0,0,0,0" + strings.Repeat(",,0,0,,0,0", 10) + ",ARL,0\n"
	assert.Equal(t, want, buf.String())
}

func TestEncoder_PriceRendersTwoDecimals(t *testing.T) {
	snap := &domain.Snapshot{RType: 10, Action: domain.ActionAdd, Side: domain.Ask, Price: d("101"), Size: 3, Symbol: "ARL", OrderID: "x"}
	snap.Asks[0] = &domain.Level{Price: d("101"), Size: 3, Count: 1}

	var buf strings.Builder
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteSnapshot(snap))
	require.NoError(t, enc.Flush())

	row := buf.String()
	assert.Contains(t, row, ",101.00,3,", "event price fixed to two decimals")
	assert.Contains(t, row, ",,0,0,101.00,3,1", "level price fixed to two decimals")
}
