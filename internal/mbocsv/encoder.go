package mbocsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// Encoder writes MBP-10 snapshots as CSV rows. The format matches the
// historical converter column for column: the leading unnamed column is
// the emission index, price columns render with two decimals, and an
// absent level renders its price as an empty field while its size and
// count render as 0. An empty price field is therefore the absent-level
// sentinel and is never produced for an occupied level.
type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes the MBP-10 column header.
func (e *Encoder) WriteHeader() error {
	var b strings.Builder
	b.WriteString(",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence")
	for i := 0; i < domain.BookDepth; i++ {
		fmt.Fprintf(&b, ",bid_px_%02d,bid_sz_%02d,bid_ct_%02d,ask_px_%02d,ask_sz_%02d,ask_ct_%02d", i, i, i, i, i, i)
	}
	b.WriteString(",symbol,order_id\n")
	_, err := e.w.WriteString(b.String())
	return err
}

// WriteSnapshot writes one emitted snapshot as a row.
func (e *Encoder) WriteSnapshot(s *domain.Snapshot) error {
	var b strings.Builder

	b.WriteString(strconv.FormatInt(s.Index, 10))
	b.WriteByte(',')
	b.WriteString(s.TsRecv)
	b.WriteByte(',')
	b.WriteString(s.TsEvent)
	fmt.Fprintf(&b, ",%d,%d,%d,%s,%s,%d,", s.RType, s.PublisherID, s.InstrumentID, s.Action, s.Side, s.Depth)
	if s.Price.IsPositive() {
		b.WriteString(s.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, ",%d,%d,%d,%d", s.Size, s.Flags, s.TsInDelta, s.Sequence)

	for i := 0; i < domain.BookDepth; i++ {
		writeLevel(&b, s.Bids[i])
		writeLevel(&b, s.Asks[i])
	}

	b.WriteByte(',')
	b.WriteString(s.Symbol)
	b.WriteByte(',')
	b.WriteString(s.OrderID)
	b.WriteByte('\n')

	_, err := e.w.WriteString(b.String())
	return err
}

// Flush writes any buffered rows to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func writeLevel(b *strings.Builder, lvl *domain.Level) {
	b.WriteByte(',')
	if lvl == nil {
		b.WriteString(",0,0")
		return
	}
	b.WriteString(lvl.Price.StringFixed(2))
	fmt.Fprintf(b, ",%d,%d", lvl.Size, lvl.Count)
}
