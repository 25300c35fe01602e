package domain

import (
	"github.com/shopspring/decimal"
)

// Order is an order resident in the book. It exists from the Add event
// that created it until a Cancel, a fully-consuming Trade/Fill, or a
// book Reset removes it.
type Order struct {
	ID    string
	Price decimal.Decimal
	Size  int64
	Side  Side
}
