// Package client defines the interface of an order book RPC client. The
// http subpackage talks to a node over HTTP; the local subpackage calls an
// in-process core.Environment.
package client

import (
	"context"

	"github.com/tendermint/orderbook/rpc/coretypes"
	"github.com/tendermint/orderbook/types"
)

// Client wraps the order book RPC endpoints.
type Client interface {
	// Submit applies tx in a block of its own and returns the outcome.
	Submit(ctx context.Context, tx types.Tx) (*coretypes.ResultSubmit, error)

	Orders(ctx context.Context, account string, cursor *uint64, limit int) (*types.OrdersResponse, error)
	Order(ctx context.Context, id uint64) (*types.Order, error)
	Account(ctx context.Context, address string) (*types.AccountView, error)
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
}
