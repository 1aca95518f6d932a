package local

import (
	"context"

	"github.com/tendermint/orderbook/rpc/client"
	"github.com/tendermint/orderbook/rpc/core"
	"github.com/tendermint/orderbook/rpc/coretypes"
	"github.com/tendermint/orderbook/types"
)

// Local is a Client that calls the RPC environment directly, skipping the
// HTTP layer. It is meant for tests and for tools embedding a node.
type Local struct {
	env *core.Environment
}

var _ client.Client = (*Local)(nil)

// New returns a client bound to env.
func New(env *core.Environment) *Local {
	return &Local{env: env}
}

func (c *Local) Submit(_ context.Context, tx types.Tx) (*coretypes.ResultSubmit, error) {
	raw, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	return c.env.Submit(raw)
}

func (c *Local) Orders(_ context.Context, account string, cursor *uint64, limit int) (*types.OrdersResponse, error) {
	return c.env.Orders(account, cursor, limit)
}

func (c *Local) Order(_ context.Context, id uint64) (*types.Order, error) {
	return c.env.Order(id)
}

func (c *Local) Account(_ context.Context, address string) (*types.AccountView, error) {
	return c.env.Account(address)
}

func (c *Local) Status(context.Context) (*coretypes.ResultStatus, error) {
	return c.env.Status()
}
