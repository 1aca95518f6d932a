// Package app is the transactional host of the order book. It follows the
// shape of an ABCI application: InitChain, BeginBlock, CheckTx, DeliverTx,
// Commit, Query and Info.
//
// Writes of a block are staged in a store.Tx over the database. Each
// delivered transaction runs in its own nested store.Tx and only reaches the
// block when it succeeds, so a rejected transaction leaves no trace. Commit
// writes the block in one synced batch and chains the app hash.
package app

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/orderbook/internal/matching"
	"github.com/tendermint/orderbook/internal/query"
	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/types"
	"github.com/tendermint/orderbook/version"
)

// Query paths served by Query.
const (
	QueryPathOrders  = "/orders"
	QueryPathOrder   = "/order"
	QueryPathAccount = "/account"
)

// State is the committed application state kept outside the domain tables.
type State struct {
	Height  int64  `json:"height"`
	AppHash []byte `json:"app_hash"`
}

func loadState(db dbm.DB) (State, error) {
	var state State
	bz, err := db.Get(store.AppStateKey())
	if err != nil {
		return state, err
	}
	if len(bz) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(bz, &state); err != nil {
		return state, fmt.Errorf("unable to unmarshal app state: %w", err)
	}
	return state, nil
}

// Application executes order book transactions against a database.
type Application struct {
	mtx sync.Mutex

	db     dbm.DB
	block  *store.Tx
	state  State
	engine *matching.Engine

	inBlock   bool
	blockTime time.Time

	logger  log.Logger
	metrics *Metrics
}

// New returns an application resuming from the state committed to db.
func New(db dbm.DB, logger log.Logger, metrics *Metrics, engineMetrics *matching.Metrics) (*Application, error) {
	state, err := loadState(db)
	if err != nil {
		return nil, err
	}
	return &Application{
		db:      db,
		block:   store.NewTx(db),
		state:   state,
		engine:  matching.NewEngine(logger.With("module", "matching"), engineMetrics),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Info returns the last committed height and app hash.
func (app *Application) Info() ResponseInfo {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	v := version.Current()
	return ResponseInfo{
		Data:             "orderbook",
		Version:          v.Software,
		AppVersion:       v.Protocol.Uint64(),
		LastBlockHeight:  app.state.Height,
		LastBlockAppHash: app.state.AppHash,
	}
}

// InitChain registers the genesis quote tokens and, when the genesis names
// a base token contract, the base token. Otherwise the base token has to be
// provisioned and the response says so. The writes are committed with the
// first block.
func (app *Application) InitChain(req RequestInitChain) (ResponseInitChain, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	if app.state.Height != 0 {
		return ResponseInitChain{}, fmt.Errorf("chain already initialized at height %d", app.state.Height)
	}
	genDoc := req.Genesis
	if genDoc == nil {
		return ResponseInitChain{}, errors.New("missing genesis doc")
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return ResponseInitChain{}, err
	}

	tx := store.NewTx(app.block)
	st := store.New(tx)
	res := ResponseInitChain{}
	for _, token := range genDoc.QuoteTokens {
		id, err := st.RegisterToken(token)
		if err != nil {
			tx.Discard()
			return ResponseInitChain{}, fmt.Errorf("registering quote token %s: %w", token, err)
		}
		res.Events = append(res.Events, newEvent("register_token",
			"token", token.Key(),
			"token_id", strconv.FormatUint(uint64(id), 10),
		))
	}

	if genDoc.BaseToken.Contract != "" {
		if err := st.SetBaseToken(types.ContractToken(genDoc.BaseToken.Contract)); err != nil {
			tx.Discard()
			return ResponseInitChain{}, err
		}
		res.Events = append(res.Events, newEvent("base_token", "address", genDoc.BaseToken.Contract))
	} else {
		res.BaseTokenPending = true
		bt := genDoc.BaseToken
		capStr := ""
		if bt.Cap != nil {
			capStr = bt.Cap.String()
		}
		res.Events = append(res.Events, newEvent("provision_base_token",
			"name", bt.Name,
			"symbol", bt.Symbol,
			"decimals", strconv.Itoa(int(bt.Decimals)),
			"cap", capStr,
		))
	}
	if err := tx.Flush(); err != nil {
		return ResponseInitChain{}, err
	}

	app.logger.Info("initialized chain",
		"chain_id", genDoc.ChainID,
		"quote_tokens", len(genDoc.QuoteTokens),
		"base_token_pending", res.BaseTokenPending,
	)
	return res, nil
}

// ProvisionBaseToken completes base token provisioning by recording token as
// the base token. It is staged with the current block.
func (app *Application) ProvisionBaseToken(token types.Token) error {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	tx := store.NewTx(app.block)
	if err := store.New(tx).SetBaseToken(token); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Flush(); err != nil {
		return err
	}
	app.logger.Info("provisioned base token", "token", token)
	return nil
}

// BaseTokenProvisionFailed reports that the base token could not be
// provisioned. Submissions stay rejected until a later ProvisionBaseToken.
func (app *Application) BaseTokenProvisionFailed(reason string) error {
	app.logger.Error("base token provisioning failed", "reason", reason)
	return fmt.Errorf("%w: %s", types.ErrBaseTokenProvisioning, reason)
}

// BeginBlock opens a block. Its time is the creation time of every order
// submitted in the block.
func (app *Application) BeginBlock(req RequestBeginBlock) (ResponseBeginBlock, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	if app.inBlock {
		return ResponseBeginBlock{}, errors.New("block already in progress")
	}
	if want := app.state.Height + 1; req.Height != want {
		return ResponseBeginBlock{}, fmt.Errorf("unexpected block height %d, want %d", req.Height, want)
	}
	app.inBlock = true
	app.blockTime = req.Time.UTC()
	return ResponseBeginBlock{}, nil
}

// CheckTx performs the stateless validation of a transaction.
func (app *Application) CheckTx(req RequestCheckTx) ResponseCheckTx {
	tx, err := types.DecodeTx(req.Tx)
	if err != nil {
		app.metrics.FailedCheckTxs.Add(1)
		return ResponseCheckTx{Code: CodeTypeEncodingError, Log: err.Error()}
	}
	if err := tx.ValidateBasic(); err != nil {
		app.metrics.FailedCheckTxs.Add(1)
		return ResponseCheckTx{Code: codeFromError(err), Log: err.Error()}
	}
	return ResponseCheckTx{Code: CodeTypeOK}
}

// DeliverTx executes a transaction within the current block.
func (app *Application) DeliverTx(req RequestDeliverTx) ResponseDeliverTx {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	res := app.deliverTx(req.Tx)
	app.metrics.DeliveredTxs.With("code", strconv.FormatUint(uint64(res.Code), 10)).Add(1)
	return res
}

func (app *Application) deliverTx(raw []byte) ResponseDeliverTx {
	if !app.inBlock {
		return errorResponse(CodeTypeInternalError, errors.New("no block in progress"))
	}
	tx, err := types.DecodeTx(raw)
	if err != nil {
		return errorResponse(CodeTypeEncodingError, err)
	}
	if err := tx.ValidateBasic(); err != nil {
		return errorResponse(codeFromError(err), err)
	}
	req, err := tx.Msg.Submit.Request()
	if err != nil {
		return errorResponse(codeFromError(err), err)
	}
	if _, err := store.New(app.block).BaseToken(); err != nil {
		return errorResponse(codeFromError(err), err)
	}

	order, err := app.engine.Submit(app.block, tx.Sender, app.blockTime, req)
	if err != nil {
		return errorResponse(codeFromError(err), err)
	}

	data, err := json.Marshal(order)
	if err != nil {
		return errorResponse(CodeTypeInternalError, err)
	}
	return ResponseDeliverTx{
		Code: CodeTypeOK,
		Data: data,
		Events: []Event{newEvent("order",
			"action", "submit_order",
			"order_id", strconv.FormatUint(order.ID, 10),
			"order_status", order.Status.String(),
		)},
	}
}

func errorResponse(code uint32, err error) ResponseDeliverTx {
	return ResponseDeliverTx{Code: code, Log: err.Error()}
}

// Commit writes the block to the database and returns the new app hash:
// sha256 of the previous app hash, the height and the hash of the block's
// writes in key order.
func (app *Application) Commit() (ResponseCommit, error) {
	app.mtx.Lock()
	defer app.mtx.Unlock()

	height := app.state.Height + 1
	writes := app.block.Len()

	h := sha256.New()
	h.Write(app.state.AppHash)
	var heightBz [8]byte
	binary.BigEndian.PutUint64(heightBz[:], uint64(height))
	h.Write(heightBz[:])
	h.Write(app.block.Hash())

	state := State{Height: height, AppHash: h.Sum(nil)}
	stateBz, err := json.Marshal(state)
	if err != nil {
		return ResponseCommit{}, err
	}
	if err := app.block.Set(store.AppStateKey(), stateBz); err != nil {
		return ResponseCommit{}, err
	}
	if err := app.block.Flush(); err != nil {
		return ResponseCommit{}, fmt.Errorf("committing block %d: %w", height, err)
	}

	app.state = state
	app.inBlock = false
	app.metrics.Height.Set(float64(height))
	app.metrics.BlockWrites.Observe(float64(writes))
	app.logger.Info("committed state",
		"height", height,
		"writes", writes,
		"app_hash", log.Hex(state.AppHash),
	)
	return ResponseCommit{Height: height, Data: state.AppHash}, nil
}

// Query serves read-only views of the committed state.
func (app *Application) Query(req RequestQuery) ResponseQuery {
	app.mtx.Lock()
	height := app.state.Height
	app.mtx.Unlock()

	value, err := app.query(req)
	if err != nil {
		return ResponseQuery{Code: codeFromError(err), Log: err.Error(), Height: height}
	}
	bz, err := json.Marshal(value)
	if err != nil {
		return ResponseQuery{Code: CodeTypeInternalError, Log: err.Error(), Height: height}
	}
	return ResponseQuery{Code: CodeTypeOK, Value: bz, Height: height}
}

func (app *Application) query(req RequestQuery) (interface{}, error) {
	st := store.New(app.db)
	switch req.Path {
	case QueryPathOrders:
		var q types.QueryOrdersRequest
		if err := decodeQuery(req.Data, &q); err != nil {
			return nil, err
		}
		return query.Orders(st, q.Account, q.Cursor, q.Limit)

	case QueryPathOrder:
		var q types.QueryOrderRequest
		if err := decodeQuery(req.Data, &q); err != nil {
			return nil, err
		}
		return st.LoadOrder(q.ID)

	case QueryPathAccount:
		var q types.QueryAccountRequest
		if err := decodeQuery(req.Data, &q); err != nil {
			return nil, err
		}
		return query.Account(st, q.Address)

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPath, req.Path)
	}
}

func decodeQuery(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding query: %v", types.ErrInvalidRequest, err)
	}
	return nil
}

// Close closes the database.
func (app *Application) Close() error {
	return app.db.Close()
}
