package coretypes

import (
	"errors"

	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/types"
)

// List of standardized errors used across RPC
var (
	// ErrInvalidRequest is used as a wrapper to cover more specific cases where the user has
	// made an invalid request
	ErrInvalidRequest = errors.New("invalid request")
)

// ResultSubmit is the outcome of a transaction applied in its own block.
type ResultSubmit struct {
	CheckTx   app.ResponseCheckTx   `json:"check_tx"`
	DeliverTx app.ResponseDeliverTx `json:"deliver_tx"`
	Hash      string                `json:"hash"`
	Height    int64                 `json:"height"`
	AppHash   []byte                `json:"app_hash,omitempty"`

	// Order is the finalized order when the transaction succeeded.
	Order *types.Order `json:"order,omitempty"`
}

// IsOK reports whether the transaction passed both checks.
func (r ResultSubmit) IsOK() bool {
	return r.CheckTx.IsOK() && r.DeliverTx.IsOK()
}

// NodeInfo describes the node serving the request.
type NodeInfo struct {
	Moniker    string `json:"moniker"`
	Version    string `json:"version"`
	AppVersion uint64 `json:"app_version"`
}

// SyncInfo is the latest committed block.
type SyncInfo struct {
	LatestBlockHeight int64  `json:"latest_block_height"`
	LatestAppHash     []byte `json:"latest_app_hash"`
}

// ResultStatus is the response of /status.
type ResultStatus struct {
	NodeInfo NodeInfo `json:"node_info"`
	SyncInfo SyncInfo `json:"sync_info"`
}

// ResultHealth is the response of /health.
type ResultHealth struct{}
