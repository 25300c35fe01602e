package domain

import (
	"github.com/shopspring/decimal"
)

type Action string
type Side string

const (
	ActionAdd    Action = "A"
	ActionCancel Action = "C"
	ActionTrade  Action = "T"
	ActionFill   Action = "F"
	ActionReset  Action = "R"

	Bid    Side = "B"
	Ask    Side = "A"
	NoSide Side = "N"
)

// Event is a single market-by-order record: one order's add, cancel,
// trade, fill or a full book reset. Metadata fields past Side are carried
// through to the output untouched; the engine never interprets them.
type Event struct {
	TsRecv       string
	TsEvent      string
	RType        int
	PublisherID  int
	InstrumentID int
	Action       Action
	Side         Side
	Price        decimal.Decimal
	Size         int64
	ChannelID    int
	OrderID      string
	Flags        int
	TsInDelta    int
	Sequence     int64
	Symbol       string
}

// Normalized returns the action as it appears in MBP output: fills are
// reported as trades, everything else passes through.
func (a Action) Normalized() Action {
	if a == ActionFill {
		return ActionTrade
	}
	return a
}
