// Package matching executes order submissions against the book.
//
// A submission allocates an order id, walks the opposite side of the book in
// price-time priority, applies the time-in-force policy and only then writes
// the outcome: updated resting orders, book index changes, the new order and
// balance credits. All writes are staged in a store.Tx, so a rejected
// submission leaves the underlying store untouched.
package matching

import (
	"fmt"
	"time"

	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/types"
)

// Engine matches incoming orders. It holds no state of its own; every
// submission reads and writes the store it is given. Callers must serialize
// submissions against the same store.
type Engine struct {
	logger  log.Logger
	metrics *Metrics
}

// NewEngine returns a matching engine.
func NewEngine(logger log.Logger, metrics *Metrics) *Engine {
	return &Engine{
		logger:  logger,
		metrics: metrics,
	}
}

// Submit executes req on behalf of owner against kv and returns the
// finalized order. createdAt is recorded on the order and must come from
// the host so that re-executions are deterministic.
//
// Submit either applies every write of the submission to kv or none.
func (e *Engine) Submit(
	kv store.KV,
	owner string,
	createdAt time.Time,
	req types.OrderRequest,
) (order *types.Order, err error) {
	defer func() {
		if err != nil {
			e.metrics.Rejected.With("reason", rejectReason(err)).Add(1)
			e.logger.Debug("order rejected", "owner", owner, "err", err)
		}
	}()

	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", types.ErrInvalidRequest)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: no order request", types.ErrInvalidRequest)
	}
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}

	tx := store.NewTx(kv)
	m, err := e.match(store.New(tx), owner, createdAt, req)
	if err == nil {
		err = m.settle()
	}
	if err != nil {
		tx.Discard()
		return nil, err
	}
	if err := tx.Flush(); err != nil {
		return nil, fmt.Errorf("committing order %d: %w", m.taker.ID, err)
	}

	order = m.taker
	e.metrics.Submitted.With("side", order.Side.String(), "kind", order.Kind.String()).Add(1)
	e.metrics.Fills.Add(float64(len(m.fills)))
	e.metrics.FillsPerOrder.Observe(float64(len(m.fills)))
	if order.IsResting() {
		e.metrics.Rested.Add(1)
	}
	e.logger.Info("order submitted",
		"order_id", order.ID,
		"owner", order.Owner,
		"side", order.Side,
		"kind", order.Kind,
		"tif", order.TimeInForce,
		"status", order.Status,
		"qty_matched", order.QtyMatched,
		"fills", len(m.fills),
	)
	return order, nil
}

// match resolves the quote token, allocates the order id and runs the
// matching pass for req. Nothing but the order id counter is written.
func (e *Engine) match(st *store.Store, owner string, createdAt time.Time, req types.OrderRequest) (*matcher, error) {
	tokenID, err := st.TokenID(req.QuoteToken())
	if err != nil {
		return nil, err
	}
	if tokenID == types.BaseTokenID {
		return nil, fmt.Errorf("%w: %s is the base token", types.ErrTokenNotAllowed, req.QuoteToken())
	}

	id, err := st.NextOrderID()
	if err != nil {
		return nil, err
	}
	m := &matcher{
		st:      st,
		logger:  e.logger,
		tokenID: tokenID,
		taker: &types.Order{
			ID:        id,
			Owner:     owner,
			CreatedAt: createdAt,
			Status:    types.StatusCreated,
		},
	}

	switch r := req.(type) {
	case types.MarketBuy:
		err = m.marketBuy(r)
	case types.MarketSell:
		err = m.marketSell(r)
	case types.LimitBuy:
		err = m.limit(types.SideBuy, r.Qty, r.Price, r.TimeInForce)
	case types.LimitSell:
		err = m.limit(types.SideSell, r.Qty, r.Price, r.TimeInForce)
	default:
		err = fmt.Errorf("%w: unknown order request %T", types.ErrInvalidRequest, req)
	}
	if err != nil {
		return nil, err
	}
	if err := m.taker.ValidateBasic(); err != nil {
		return nil, err
	}
	return m, nil
}

// resolveTimeInForce sets the final status of the taker once matching is
// done. complete reports whether the taker was fully satisfied.
func resolveTimeInForce(o *types.Order, complete bool) error {
	switch o.TimeInForce {
	case types.FOK:
		if !complete {
			return fmt.Errorf("%w: fill-or-kill order %d matched %s of %s",
				types.ErrInsufficientLiquidity, o.ID, o.QtyMatched, o.QtyRequested)
		}
		o.Status = types.StatusFilled

	case types.IOC:
		if o.QtyMatched.IsZero() {
			return fmt.Errorf("%w: immediate-or-cancel order %d found no match",
				types.ErrInsufficientLiquidity, o.ID)
		}
		if complete {
			o.Status = types.StatusFilled
		} else {
			o.Status = types.StatusMatched
		}

	case types.GTC:
		if o.IsMarket() {
			return fmt.Errorf("%w: market orders cannot be good-till-canceled", types.ErrTimeInForceNotAllowed)
		}
		switch {
		case complete:
			o.Status = types.StatusFilled
		case o.QtyMatched.IsZero():
			o.Status = types.StatusCreated
		default:
			o.Status = types.StatusPartial
		}

	default:
		return fmt.Errorf("%w: %s", types.ErrInvalidRequest, o.TimeInForce)
	}
	return nil
}
