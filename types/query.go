package types

import "github.com/tendermint/orderbook/libs/num"

// OrdersResponse is one page of an account's order history, most recent
// first. Cursor is set when more orders may follow and is passed back as
// the exclusive start of the next page.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
	Cursor *uint64 `json:"cursor,omitempty"`
}

// AccountView is the internal balance sheet of an account.
type AccountView struct {
	Address       string        `json:"address"`
	BaseBalance   num.Uint      `json:"base_balance"`
	QuoteBalances []TokenAmount `json:"quote_balances"`
}

// QueryOrdersRequest selects a page of an account's orders.
type QueryOrdersRequest struct {
	Account string  `json:"account"`
	Cursor  *uint64 `json:"cursor,omitempty"`
	Limit   int     `json:"limit,omitempty"`
}

// QueryAccountRequest selects an account view.
type QueryAccountRequest struct {
	Address string `json:"address"`
}

// QueryOrderRequest selects a single order.
type QueryOrderRequest struct {
	ID uint64 `json:"id"`
}
