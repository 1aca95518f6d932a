// Package core implements the order book RPC endpoints on top of the
// application.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/rpc/coretypes"
	"github.com/tendermint/orderbook/types"
	"github.com/tendermint/orderbook/version"
)

// Environment contains the objects and interfaces used by the RPC endpoints.
type Environment struct {
	App     *app.Application
	Moniker string
	Logger  log.Logger

	// Clock returns the time of the next block. Defaults to time.Now.
	Clock func() time.Time

	// submissions are applied one block at a time
	mtx sync.Mutex
}

// QueryError is a query the application rejected.
type QueryError struct {
	Code uint32
	Log  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s (code %d): %s", app.HumanCode(e.Code), e.Code, e.Log)
}

func (env *Environment) now() time.Time {
	if env.Clock != nil {
		return env.Clock()
	}
	return time.Now()
}

// Submit applies a transaction in a block of its own: CheckTx, then
// BeginBlock, DeliverTx and Commit. A transaction rejected by CheckTx
// does not produce a block. A transaction rejected by DeliverTx still
// commits an empty block.
//
// ```shell
// curl -X POST localhost:26657/submit -d '{"sender":"alice","msg":{"submit_order":{"limit_sell":{"quote":{"native":"uusd"},"qty":"10","price":"3","tif":"gtc"}}}}'
// ```
func (env *Environment) Submit(raw []byte) (*coretypes.ResultSubmit, error) {
	env.mtx.Lock()
	defer env.mtx.Unlock()

	res := &coretypes.ResultSubmit{
		Hash:    types.HashTx(raw).String(),
		CheckTx: env.App.CheckTx(app.RequestCheckTx{Tx: raw}),
	}
	if !res.CheckTx.IsOK() {
		return res, nil
	}

	height := env.App.Info().LastBlockHeight + 1
	if _, err := env.App.BeginBlock(app.RequestBeginBlock{Height: height, Time: env.now()}); err != nil {
		return nil, err
	}
	res.DeliverTx = env.App.DeliverTx(app.RequestDeliverTx{Tx: raw})
	commit, err := env.App.Commit()
	if err != nil {
		return nil, err
	}
	res.Height = commit.Height
	res.AppHash = commit.Data

	if res.DeliverTx.IsOK() {
		var order types.Order
		if err := json.Unmarshal(res.DeliverTx.Data, &order); err != nil {
			return nil, fmt.Errorf("decoding delivered order: %w", err)
		}
		res.Order = &order
	}
	env.Logger.Info("submitted tx",
		"hash", res.Hash,
		"height", res.Height,
		"code", res.DeliverTx.Code,
	)
	return res, nil
}

// Orders lists the orders of an account, most recent first. cursor is an
// exclusive upper bound on the order id; limit defaults to 50 and is
// clamped to [1, 50].
//
// ```shell
// curl 'localhost:26657/orders?account=alice&limit=10'
// ```
func (env *Environment) Orders(account string, cursor *uint64, limit int) (*types.OrdersResponse, error) {
	if account == "" {
		return nil, fmt.Errorf("%w: missing account", coretypes.ErrInvalidRequest)
	}
	var res types.OrdersResponse
	err := env.query(app.QueryPathOrders, types.QueryOrdersRequest{
		Account: account,
		Cursor:  cursor,
		Limit:   limit,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Order returns a single order by id.
func (env *Environment) Order(id uint64) (*types.Order, error) {
	var res types.Order
	if err := env.query(app.QueryPathOrder, types.QueryOrderRequest{ID: id}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Account returns the base token balance and the nonzero quote token
// balances of an address.
//
// ```shell
// curl 'localhost:26657/account?address=alice'
// ```
func (env *Environment) Account(address string) (*types.AccountView, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: missing address", coretypes.ErrInvalidRequest)
	}
	var res types.AccountView
	if err := env.query(app.QueryPathAccount, types.QueryAccountRequest{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Status returns the node's moniker, version and latest committed block.
func (env *Environment) Status() (*coretypes.ResultStatus, error) {
	info := env.App.Info()
	return &coretypes.ResultStatus{
		NodeInfo: coretypes.NodeInfo{
			Moniker:    env.Moniker,
			Version:    version.Version,
			AppVersion: info.AppVersion,
		},
		SyncInfo: coretypes.SyncInfo{
			LatestBlockHeight: info.LastBlockHeight,
			LatestAppHash:     info.LastBlockAppHash,
		},
	}, nil
}

// Health gets node health. Returns empty result (200 OK) on success, no
// response in case of an error.
func (env *Environment) Health() (*coretypes.ResultHealth, error) {
	return &coretypes.ResultHealth{}, nil
}

func (env *Environment) query(path string, req, res interface{}) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	qres := env.App.Query(app.RequestQuery{Path: path, Data: data})
	if !qres.IsOK() {
		return &QueryError{Code: qres.Code, Log: qres.Log}
	}
	return json.Unmarshal(qres.Value, res)
}

func isNotFound(err error) bool {
	var qerr *QueryError
	return errors.As(err, &qerr) && qerr.Code == app.CodeTypeOrderNotFound
}
