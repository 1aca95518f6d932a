package matching

import (
	"fmt"

	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

// marketBuy spends the buyer's balance on the best asks. Each step buys as
// many units as the remaining balance affords at the ask's price; the scan
// ends at the first price level the balance cannot afford a single unit of.
func (m *matcher) marketBuy(r types.MarketBuy) error {
	taker := m.taker
	taker.Side = types.SideBuy
	taker.Kind = types.KindMarket
	taker.TimeInForce = r.TimeInForce
	taker.Funds = r.Balance
	taker.Balance = r.Balance
	if r.TimeInForce == types.GTC {
		return fmt.Errorf("%w: market orders cannot be good-till-canceled", types.ErrTimeInForceNotAllowed)
	}

	err := m.st.ScanBook(types.SideSell, m.tokenID, nil, func(e store.BookEntry) (bool, error) {
		affordable, err := taker.Balance.Div(e.Price)
		if err != nil {
			return false, err
		}
		if affordable.IsZero() {
			return false, nil
		}
		maker, unmatched, err := m.loadMaker(e)
		if err != nil {
			return false, err
		}

		qty := num.Min(affordable, unmatched)
		cost, err := qty.Mul(e.Price)
		if err != nil {
			return false, err
		}
		if taker.Balance, err = taker.Balance.Sub(cost); err != nil {
			return false, err
		}
		if err := m.take(e, maker, qty); err != nil {
			return false, err
		}
		return !taker.Balance.IsZero(), nil
	})
	if err != nil {
		return err
	}

	// A market buy is bounded by its budget, so what it requested is what it
	// got.
	taker.QtyRequested = taker.QtyMatched
	return resolveTimeInForce(taker, taker.Balance.IsZero())
}

// marketSell sells the requested quantity into the best bids.
func (m *matcher) marketSell(r types.MarketSell) error {
	taker := m.taker
	taker.Side = types.SideSell
	taker.Kind = types.KindMarket
	taker.TimeInForce = r.TimeInForce
	taker.QtyRequested = r.Qty
	if r.TimeInForce == types.GTC {
		return fmt.Errorf("%w: market orders cannot be good-till-canceled", types.ErrTimeInForceNotAllowed)
	}

	err := m.st.ScanBook(types.SideBuy, m.tokenID, nil, m.fillUpTo)
	if err != nil {
		return err
	}
	return resolveTimeInForce(taker, taker.IsQtyFilled())
}

// fillUpTo matches the next resting order against the taker's unmatched
// quantity and reports whether the taker wants more.
func (m *matcher) fillUpTo(e store.BookEntry) (bool, error) {
	want, err := m.taker.QtyUnmatched()
	if err != nil {
		return false, err
	}
	if want.IsZero() {
		return false, nil
	}
	maker, unmatched, err := m.loadMaker(e)
	if err != nil {
		return false, err
	}
	if err := m.take(e, maker, num.Min(want, unmatched)); err != nil {
		return false, err
	}
	return !m.taker.IsQtyFilled(), nil
}
