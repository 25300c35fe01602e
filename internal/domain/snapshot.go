package domain

import (
	"github.com/shopspring/decimal"
)

// BookDepth is the number of price levels exposed per side in MBP output.
const BookDepth = 10

// Level is one aggregated price level: the price, the summed size of the
// orders resident there and how many of them there are.
type Level struct {
	Price decimal.Decimal `json:"price"`
	Size  int64           `json:"size"`
	Count int64           `json:"count"`
}

// Snapshot is one MBP-10 output record: the triggering event's metadata,
// the normalized action, the depth of the affected level and the top ten
// levels of each side. A nil slot in Bids/Asks means the side has fewer
// levels than that rank; it is distinct from a level whose price is zero.
// Snapshots are built once per processed event and never mutated after
// construction.
type Snapshot struct {
	Index        int64           `json:"index"`
	TsRecv       string          `json:"ts_recv"`
	TsEvent      string          `json:"ts_event"`
	RType        int             `json:"rtype"`
	PublisherID  int             `json:"publisher_id"`
	InstrumentID int             `json:"instrument_id"`
	Action       Action          `json:"action"`
	Side         Side            `json:"side"`
	Depth        int             `json:"depth"`
	Price        decimal.Decimal `json:"price"`
	Size         int64           `json:"size"`
	ChannelID    int             `json:"channel_id"`
	Flags        int             `json:"flags"`
	TsInDelta    int             `json:"ts_in_delta"`
	Sequence     int64           `json:"sequence"`

	Bids [BookDepth]*Level `json:"bids"`
	Asks [BookDepth]*Level `json:"asks"`

	Symbol  string `json:"symbol"`
	OrderID string `json:"order_id"`
}

// LevelsEqual reports whether two snapshots expose the same sixty
// per-level fields: price, size and count for ten levels on each side.
// Prices compare by exact decimal equality, never by tolerance.
func (s *Snapshot) LevelsEqual(other *Snapshot) bool {
	if other == nil {
		return false
	}
	for i := 0; i < BookDepth; i++ {
		if !levelEqual(s.Bids[i], other.Bids[i]) || !levelEqual(s.Asks[i], other.Asks[i]) {
			return false
		}
	}
	return true
}

func levelEqual(a, b *Level) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Price.Equal(b.Price) && a.Size == b.Size && a.Count == b.Count
}

// DeepCopy returns a copy that shares no level pointers with the receiver.
func (s *Snapshot) DeepCopy() *Snapshot {
	out := *s
	for i := 0; i < BookDepth; i++ {
		if s.Bids[i] != nil {
			lvl := *s.Bids[i]
			out.Bids[i] = &lvl
		}
		if s.Asks[i] != nil {
			lvl := *s.Asks[i]
			out.Asks[i] = &lvl
		}
	}
	return &out
}
