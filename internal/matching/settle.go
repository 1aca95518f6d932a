package matching

import (
	"fmt"

	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

// fill is one step of a match: qty traded with the resting maker at the
// price of its book entry.
type fill struct {
	entry store.BookEntry
	maker *types.Order
	qty   num.Uint
}

// matcher carries one submission through matching and settlement.
type matcher struct {
	st      *store.Store
	logger  log.Logger
	tokenID uint32

	taker *types.Order
	fills []fill
	// quote token amount owed to a selling taker
	proceeds num.Uint
}

// loadMaker loads the order behind a book entry and checks that it is
// actually resting there.
func (m *matcher) loadMaker(e store.BookEntry) (*types.Order, num.Uint, error) {
	maker, err := m.st.LoadOrder(e.OrderID)
	if err != nil {
		return nil, num.Uint{}, err
	}
	if !maker.IsResting() || maker.Side != e.Side || !maker.LimitPrice.EQ(e.Price) {
		return nil, num.Uint{}, fmt.Errorf("%w: book entry %d does not match a resting order", types.ErrInvalidOrder, e.OrderID)
	}
	unmatched, err := maker.QtyUnmatched()
	if err != nil {
		return nil, num.Uint{}, err
	}
	if unmatched.IsZero() {
		return nil, num.Uint{}, fmt.Errorf("%w: resting order %d has nothing left", types.ErrInvalidOrder, e.OrderID)
	}
	return maker, unmatched, nil
}

// take records a fill of qty against maker and updates both matched
// quantities and the maker's status.
func (m *matcher) take(e store.BookEntry, maker *types.Order, qty num.Uint) error {
	makerMatched, err := maker.QtyMatched.Add(qty)
	if err != nil {
		return err
	}
	takerMatched, err := m.taker.QtyMatched.Add(qty)
	if err != nil {
		return err
	}
	maker.QtyMatched = makerMatched
	m.taker.QtyMatched = takerMatched
	if maker.IsQtyFilled() {
		maker.Status = types.StatusFilled
	} else {
		maker.Status = types.StatusPartial
	}

	if m.taker.IsSell() {
		amount, err := qty.Mul(e.Price)
		if err != nil {
			return err
		}
		if m.proceeds, err = m.proceeds.Add(amount); err != nil {
			return err
		}
	}

	m.fills = append(m.fills, fill{entry: e, maker: maker, qty: qty})
	m.logger.Debug("order matched",
		"taker_id", m.taker.ID,
		"maker_id", maker.ID,
		"qty", qty,
		"price", e.Price,
		"maker_status", maker.Status,
	)
	return nil
}

// settle writes the outcome of a successful match: resting orders are
// updated and dropped from the book once filled, every party is credited,
// and the taker is saved and rests in the book if its status allows it.
func (m *matcher) settle() error {
	for _, f := range m.fills {
		if f.maker.Status == types.StatusFilled {
			if err := m.st.RemoveBookEntry(f.entry); err != nil {
				return err
			}
		}
		if err := m.st.SaveOrder(f.maker); err != nil {
			return err
		}

		// A resting ask was bought into and is paid in the quote token; a
		// resting bid was sold into and receives the base token.
		if f.maker.IsSell() {
			amount, err := f.qty.Mul(f.entry.Price)
			if err != nil {
				return err
			}
			if _, err := m.st.CreditBalance(f.maker.Owner, m.tokenID, amount); err != nil {
				return err
			}
		} else {
			if _, err := m.st.CreditBalance(f.maker.Owner, types.BaseTokenID, f.qty); err != nil {
				return err
			}
		}
	}

	taker := m.taker
	if err := m.st.SaveOrder(taker); err != nil {
		return err
	}
	if err := m.st.AddAccountOrder(taker.Owner, taker.ID); err != nil {
		return err
	}

	if taker.IsBuy() {
		if _, err := m.st.CreditBalance(taker.Owner, types.BaseTokenID, taker.QtyMatched); err != nil {
			return err
		}
	} else {
		if _, err := m.st.CreditBalance(taker.Owner, m.tokenID, m.proceeds); err != nil {
			return err
		}
	}

	if taker.IsResting() {
		return m.st.InsertBookEntry(store.BookEntry{
			Side:    taker.Side,
			TokenID: m.tokenID,
			Price:   taker.LimitPrice,
			OrderID: taker.ID,
		})
	}
	return nil
}
