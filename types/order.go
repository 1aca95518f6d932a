package types

import (
	"fmt"
	"time"

	"github.com/tendermint/orderbook/libs/num"
)

// Order is the full record of a submitted order. Orders are never deleted;
// filled and discarded orders remain in the store for queries.
type Order struct {
	ID          uint64      `json:"id"`
	Owner       string      `json:"owner"`
	CreatedAt   time.Time   `json:"created_at"`
	Side        Side        `json:"side"`
	Kind        Kind        `json:"kind"`
	TimeInForce TimeInForce `json:"tif"`
	Status      Status      `json:"status"`

	// Balance is the unspent part of Funds. Both are only used by market
	// buy orders, which are bounded by a budget rather than a quantity.
	Balance num.Uint `json:"balance"`
	Funds   num.Uint `json:"funds"`

	QtyMatched   num.Uint `json:"qty_matched"`
	QtyRequested num.Uint `json:"qty_requested"`

	// LimitPrice is the quote token amount per base token unit. It is zero
	// for market orders.
	LimitPrice num.Uint `json:"limit_price"`
}

// QtyUnmatched returns the quantity still open.
func (o *Order) QtyUnmatched() (num.Uint, error) {
	qty, err := o.QtyRequested.Sub(o.QtyMatched)
	if err != nil {
		return num.Uint{}, fmt.Errorf("order %d matched more than requested: %w", o.ID, ErrInvalidOrder)
	}
	return qty, nil
}

// BalanceSpent returns the part of Funds already spent.
func (o *Order) BalanceSpent() (num.Uint, error) {
	spent, err := o.Funds.Sub(o.Balance)
	if err != nil {
		return num.Uint{}, fmt.Errorf("order %d balance exceeds funds: %w", o.ID, ErrInvalidOrder)
	}
	return spent, nil
}

func (o *Order) IsQtyFilled() bool {
	return o.QtyMatched.EQ(o.QtyRequested)
}

func (o *Order) IsBuy() bool    { return o.Side == SideBuy }
func (o *Order) IsSell() bool   { return o.Side == SideSell }
func (o *Order) IsMarket() bool { return o.Kind == KindMarket }
func (o *Order) IsLimit() bool  { return o.Kind == KindLimit }

// IsResting reports whether the order belongs in the book index.
func (o *Order) IsResting() bool {
	return o.IsLimit() && (o.Status == StatusCreated || o.Status == StatusPartial)
}

// ValidateBasic checks the record invariants.
func (o *Order) ValidateBasic() error {
	if !o.Side.IsValid() || !o.Kind.IsValid() || !o.TimeInForce.IsValid() || !o.Status.IsValid() {
		return fmt.Errorf("order %d has an out of range enum: %w", o.ID, ErrInvalidOrder)
	}
	if o.QtyMatched.GT(o.QtyRequested) {
		return fmt.Errorf("order %d matched %s of %s: %w", o.ID, o.QtyMatched, o.QtyRequested, ErrInvalidOrder)
	}
	if o.Status == StatusFilled && !o.IsQtyFilled() {
		return fmt.Errorf("order %d is filled with %s of %s matched: %w",
			o.ID, o.QtyMatched, o.QtyRequested, ErrInvalidOrder)
	}
	if o.IsMarket() && !o.LimitPrice.IsZero() {
		return fmt.Errorf("market order %d has limit price %s: %w", o.ID, o.LimitPrice, ErrInvalidOrder)
	}
	if o.Balance.GT(o.Funds) {
		return fmt.Errorf("order %d balance %s exceeds funds %s: %w", o.ID, o.Balance, o.Funds, ErrInvalidOrder)
	}
	return nil
}
