// Package query serves the read-only views of the order book state.
package query

import (
	"fmt"

	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/math"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

const (
	// DefaultPageLimit is the page size used when none is requested.
	DefaultPageLimit = 50
	// MaxPageLimit caps the page size.
	MaxPageLimit = 50
)

// Orders returns a page of the orders of account, most recent first. The
// page starts strictly below cursor; a nil cursor starts at the most recent
// order. A zero limit selects DefaultPageLimit; others are clamped to
// [1, MaxPageLimit].
func Orders(st *store.Store, account string, cursor *uint64, limit int) (*types.OrdersResponse, error) {
	if account == "" {
		return nil, fmt.Errorf("%w: empty account", types.ErrInvalidRequest)
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	limit = math.ClampInt(limit, 1, MaxPageLimit)

	var start uint64
	if cursor != nil {
		if *cursor <= 1 {
			return &types.OrdersResponse{Orders: []types.Order{}}, nil
		}
		start = *cursor
	}

	ids, err := st.AccountOrderIDs(account, start, limit)
	if err != nil {
		return nil, err
	}

	res := &types.OrdersResponse{Orders: make([]types.Order, 0, len(ids))}
	for _, id := range ids {
		order, err := st.LoadOrder(id)
		if err != nil {
			return nil, err
		}
		res.Orders = append(res.Orders, *order)
	}
	if n := len(res.Orders); n > 0 {
		last := res.Orders[n-1].ID
		res.Cursor = &last
	}
	return res, nil
}

// Account returns the internal balances of address: its base token balance
// and every nonzero quote token balance in token id order.
func Account(st *store.Store, address string) (*types.AccountView, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", types.ErrInvalidRequest)
	}
	balances, err := st.Balances(address)
	if err != nil {
		return nil, err
	}

	view := &types.AccountView{
		Address:       address,
		BaseBalance:   num.Zero(),
		QuoteBalances: []types.TokenAmount{},
	}
	for _, b := range balances {
		if b.TokenID == types.BaseTokenID {
			view.BaseBalance = b.Amount
			continue
		}
		if b.Amount.IsZero() {
			continue
		}
		token, err := st.TokenByID(b.TokenID)
		if err != nil {
			return nil, err
		}
		view.QuoteBalances = append(view.QuoteBalances, types.TokenAmount{Token: token, Amount: b.Amount})
	}
	return view, nil
}
