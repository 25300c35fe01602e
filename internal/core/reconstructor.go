package core

import (
	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// mbpRType marks output records as market-by-price rows.
const mbpRType = 10

// Reconstructor rebuilds book state from a market-by-order event stream
// and renders MBP-10 snapshots of it. One instance handles one
// instrument stream; events must be applied strictly in arrival order.
type Reconstructor struct {
	book *book
}

// Option configures a Reconstructor.
type Option func(*options)

type options struct {
	migrateReadds bool
}

// WithReaddMigration makes Apply detach an already-resident order id from
// its old price level before re-adding it, instead of replicating the
// upstream converter's overwrite-in-place behavior. See the re-add notes
// in DESIGN.md before enabling this on feeds that must diff cleanly
// against reference output.
func WithReaddMigration() Option {
	return func(o *options) {
		o.migrateReadds = true
	}
}

func NewReconstructor(opts ...Option) *Reconstructor {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconstructor{book: newBook(o.migrateReadds)}
}

// Apply mutates book state according to the event's action. Abnormal
// conditions (unknown ids, malformed sides) are defined no-ops, so Apply
// cannot fail; see the per-branch notes in book.go.
func (r *Reconstructor) Apply(ev *domain.Event) {
	switch ev.Action {
	case domain.ActionAdd:
		r.book.add(&domain.Order{
			ID:    ev.OrderID,
			Price: ev.Price,
			Size:  ev.Size,
			Side:  ev.Side,
		})
	case domain.ActionCancel:
		r.book.cancel(ev.OrderID)
	case domain.ActionTrade, domain.ActionFill:
		r.book.tradeOrFill(ev.OrderID, ev.Size, ev.Side)
	case domain.ActionReset:
		r.book.reset()
	}
}

// BuildSnapshot renders the current state plus the triggering event into
// an MBP-10 record. It must be called after Apply for the same event:
// the depth of an Add is ranked against the book with the order already
// inserted, and the depth of a Cancel is resolved against an index the
// cancel has already been erased from. That lookup therefore always
// misses and cancel depth is reported as 0 — intentional replication of
// the upstream converter's field, not a lookup bug.
func (r *Reconstructor) BuildSnapshot(ev *domain.Event) *domain.Snapshot {
	snap := &domain.Snapshot{
		// The upstream format stamps both timestamp columns with the
		// event time.
		TsRecv:       ev.TsEvent,
		TsEvent:      ev.TsEvent,
		RType:        mbpRType,
		PublisherID:  ev.PublisherID,
		InstrumentID: ev.InstrumentID,
		Action:       ev.Action.Normalized(),
		Side:         ev.Side,
		Price:        ev.Price,
		Size:         ev.Size,
		ChannelID:    ev.ChannelID,
		Flags:        ev.Flags,
		TsInDelta:    ev.TsInDelta,
		Sequence:     ev.Sequence,
		Symbol:       ev.Symbol,
		OrderID:      ev.OrderID,
	}

	fillLevels(&snap.Bids, r.book.bids)
	fillLevels(&snap.Asks, r.book.asks)

	switch ev.Action {
	case domain.ActionAdd:
		if ev.Side == domain.Bid || ev.Side == domain.Ask {
			snap.Depth = r.book.depthOf(ev.Side, ev.Price)
		}
	case domain.ActionCancel:
		// Always 0: the order left the index in Apply.
		if o, ok := r.book.lookup[ev.OrderID]; ok {
			snap.Depth = r.book.depthOf(o.Side, o.Price)
		}
	}

	return snap
}

// Empty reports whether the book currently has any resident orders.
func (r *Reconstructor) Empty() bool {
	return len(r.book.lookup) == 0
}

// ResidentOrders returns the number of orders currently tracked.
func (r *Reconstructor) ResidentOrders() int {
	return len(r.book.lookup)
}

// BidLevels returns the number of occupied bid price levels.
func (r *Reconstructor) BidLevels() int {
	return len(r.book.bids)
}

// AskLevels returns the number of occupied ask price levels.
func (r *Reconstructor) AskLevels() int {
	return len(r.book.asks)
}

func fillLevels(out *[domain.BookDepth]*domain.Level, levels []*bookLevel) {
	for i, lvl := range levels {
		if i >= domain.BookDepth {
			break
		}
		out[i] = &domain.Level{
			Price: lvl.price,
			Size:  lvl.totalSize(),
			Count: lvl.orderCount(),
		}
	}
}
