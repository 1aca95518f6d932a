package matching

import (
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

// limit matches a limit order against the opposite side at exactly its
// limit price, oldest resting order first. Whatever remains rests in the
// book when the time-in-force allows it.
func (m *matcher) limit(side types.Side, qty, price num.Uint, tif types.TimeInForce) error {
	taker := m.taker
	taker.Side = side
	taker.Kind = types.KindLimit
	taker.TimeInForce = tif
	taker.QtyRequested = qty
	taker.LimitPrice = price

	if err := m.st.ScanBook(side.Opposite(), m.tokenID, &price, m.fillUpTo); err != nil {
		return err
	}
	return resolveTimeInForce(taker, taker.IsQtyFilled())
}
