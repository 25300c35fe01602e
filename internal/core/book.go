package core

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// bookLevel is one price level: the price plus the orders resident at it.
// Residency is keyed by order id; only the summed size and the resident
// count are ever observable downstream, so no arrival ordering is kept.
type bookLevel struct {
	price  decimal.Decimal
	orders map[string]*domain.Order
}

func newBookLevel(price decimal.Decimal) *bookLevel {
	return &bookLevel{price: price, orders: make(map[string]*domain.Order)}
}

func (l *bookLevel) totalSize() int64 {
	var total int64
	for _, o := range l.orders {
		total += o.Size
	}
	return total
}

func (l *bookLevel) orderCount() int64 {
	return int64(len(l.orders))
}

// book holds the reconstruction state: an order index plus both sides.
// Bids are kept sorted by descending price, asks ascending, so index 0 is
// always the best level of its side. Every order in the index is resident
// in exactly one level whose price and side match the order's fields, and
// a level is dropped the moment its last resident leaves.
type book struct {
	bids   []*bookLevel
	asks   []*bookLevel
	lookup map[string]*domain.Order

	// migrateReadds detaches an already-resident order id from its old
	// level before re-adding it. Off by default: the upstream feed never
	// reuses live ids, and the historical converter this replaces
	// overwrote the index entry while leaving the old residency in
	// place, so parity requires the same.
	migrateReadds bool
}

func newBook(migrateReadds bool) *book {
	return &book{
		lookup:        make(map[string]*domain.Order),
		migrateReadds: migrateReadds,
	}
}

// add places a new order into its side. Any side other than bid or ask is
// dropped without touching the book: malformed side codes are expected in
// the feed and are not errors.
func (b *book) add(o *domain.Order) {
	if o.Side != domain.Bid && o.Side != domain.Ask {
		return
	}
	if prev, ok := b.lookup[o.ID]; ok && b.migrateReadds {
		b.detach(prev)
	}
	lvl := b.levelFor(o.Side, o.Price)
	if _, resident := lvl.orders[o.ID]; !resident {
		lvl.orders[o.ID] = o
	}
	b.lookup[o.ID] = o
}

// cancel removes the order from its level and from the index. An unknown
// id is a no-op: the feed may cancel orders that were already resolved.
func (b *book) cancel(id string) {
	o, ok := b.lookup[id]
	if !ok {
		return
	}
	b.detach(o)
	delete(b.lookup, id)
}

// tradeOrFill reduces the resident order by the traded size, capped at
// what is actually resident. Two no-op branches: side None means the
// execution does not alter the book, and an unknown id means the order
// was already resolved upstream. An order whose size reaches zero is
// removed exactly as a cancel would remove it.
func (b *book) tradeOrFill(id string, tradedSize int64, side domain.Side) {
	if side == domain.NoSide {
		return
	}
	o, ok := b.lookup[id]
	if !ok {
		return
	}
	fill := min(tradedSize, o.Size)
	o.Size -= fill
	if o.Size <= 0 {
		b.detach(o)
		delete(b.lookup, id)
	}
}

// reset drops the entire state. Calling it on an empty book leaves an
// empty book.
func (b *book) reset() {
	b.bids = nil
	b.asks = nil
	b.lookup = make(map[string]*domain.Order)
}

// depthOf returns the zero-based rank of the level at price on the given
// side, 0 being the best. A price that is not resident reports 0.
func (b *book) depthOf(side domain.Side, price decimal.Decimal) int {
	for i, lvl := range b.sideLevels(side) {
		if lvl.price.Equal(price) {
			return i
		}
	}
	return 0
}

func (b *book) sideLevels(side domain.Side) []*bookLevel {
	switch side {
	case domain.Bid:
		return b.bids
	case domain.Ask:
		return b.asks
	default:
		return nil
	}
}

// levelFor finds the level at price on side, creating it in sorted
// position if it does not exist yet.
func (b *book) levelFor(side domain.Side, price decimal.Decimal) *bookLevel {
	levels := b.sideLevels(side)
	for _, lvl := range levels {
		if lvl.price.Equal(price) {
			return lvl
		}
	}
	lvl := newBookLevel(price)
	levels = append(levels, lvl)
	if side == domain.Bid {
		sort.Slice(levels, func(i, j int) bool {
			return levels[i].price.GreaterThan(levels[j].price)
		})
		b.bids = levels
	} else {
		sort.Slice(levels, func(i, j int) bool {
			return levels[i].price.LessThan(levels[j].price)
		})
		b.asks = levels
	}
	return lvl
}

// detach removes the order from its level and prunes the level if it is
// now empty.
func (b *book) detach(o *domain.Order) {
	levels := b.sideLevels(o.Side)
	for i, lvl := range levels {
		if !lvl.price.Equal(o.Price) {
			continue
		}
		delete(lvl.orders, o.ID)
		if len(lvl.orders) == 0 {
			levels = append(levels[:i], levels[i+1:]...)
			if o.Side == domain.Bid {
				b.bids = levels
			} else {
				b.asks = levels
			}
		}
		return
	}
}
