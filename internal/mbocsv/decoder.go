// Package mbocsv reads databento-style MBO CSV files and writes MBP-10
// CSV files. It is the text boundary around the reconstruction core: the
// core itself never sees delimited text.
package mbocsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

// mboFieldCount is the column count of the MBO input format:
// ts_recv, ts_event, rtype, publisher_id, instrument_id, action, side,
// price, size, channel_id, order_id, flags, ts_in_delta, sequence, symbol.
const mboFieldCount = 15

// Decoder turns MBO CSV records into typed events. The first line is a
// header and is skipped.
type Decoder struct {
	r      *csv.Reader
	line   int
	header bool
}

func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = mboFieldCount
	cr.ReuseRecord = true
	return &Decoder{r: cr}
}

// Next returns the next event in the file, or io.EOF when the input is
// exhausted. Malformed records are reported as errors and never reach
// the engine.
func (d *Decoder) Next() (*domain.Event, error) {
	if !d.header {
		d.header = true
		d.line++
		if _, err := d.r.Read(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("mbo header: %w", err)
		}
	}

	rec, err := d.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("mbo record: %w", err)
	}
	d.line++

	ev := &domain.Event{
		TsRecv:  rec[0],
		TsEvent: rec[1],
		Action:  domain.Action(rec[5]),
		Side:    domain.Side(rec[6]),
		OrderID: rec[10],
		Symbol:  rec[14],
	}

	fields := []struct {
		name string
		col  int
		dst  *int
	}{
		{"rtype", 2, &ev.RType},
		{"publisher_id", 3, &ev.PublisherID},
		{"instrument_id", 4, &ev.InstrumentID},
		{"channel_id", 9, &ev.ChannelID},
		{"flags", 11, &ev.Flags},
		{"ts_in_delta", 12, &ev.TsInDelta},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(rec[f.col])
		if err != nil {
			return nil, d.fieldErr(f.name, rec[f.col], err)
		}
		*f.dst = v
	}

	if ev.Size, err = strconv.ParseInt(rec[8], 10, 64); err != nil {
		return nil, d.fieldErr("size", rec[8], err)
	}
	if ev.Sequence, err = strconv.ParseInt(rec[13], 10, 64); err != nil {
		return nil, d.fieldErr("sequence", rec[13], err)
	}

	// An empty price column is legitimate (resets, sideless trades) and
	// decodes to zero.
	if rec[7] != "" {
		if ev.Price, err = decimal.NewFromString(rec[7]); err != nil {
			return nil, d.fieldErr("price", rec[7], err)
		}
	}

	return ev, nil
}

func (d *Decoder) fieldErr(name, value string, err error) error {
	return fmt.Errorf("mbo line %d: %s %q: %w", d.line, name, value, err)
}
