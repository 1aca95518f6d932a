package app

import (
	"encoding/json"
	"time"

	"github.com/tendermint/orderbook/types"
)

// EventAttribute is a key-value pair attached to an event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is emitted by the application for indexing and clients.
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes,omitempty"`
}

func newEvent(typ string, kvs ...string) Event {
	ev := Event{Type: typ}
	for i := 0; i+1 < len(kvs); i += 2 {
		ev.Attributes = append(ev.Attributes, EventAttribute{Key: kvs[i], Value: kvs[i+1]})
	}
	return ev
}

// Attribute returns the value of the first attribute named key.
func (ev Event) Attribute(key string) (string, bool) {
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

type RequestInitChain struct {
	Genesis *types.GenesisDoc
}

type ResponseInitChain struct {
	// BaseTokenPending is set when the genesis does not name a base token
	// contract and one has to be provisioned. The host completes it with
	// ProvisionBaseToken or BaseTokenProvisionFailed.
	BaseTokenPending bool    `json:"base_token_pending"`
	Events           []Event `json:"events,omitempty"`
}

type RequestBeginBlock struct {
	Height int64
	Time   time.Time
}

type ResponseBeginBlock struct{}

type RequestCheckTx struct {
	Tx []byte
}

type ResponseCheckTx struct {
	Code uint32 `json:"code"`
	Log  string `json:"log,omitempty"`
}

func (r ResponseCheckTx) IsOK() bool { return r.Code == CodeTypeOK }

type RequestDeliverTx struct {
	Tx []byte
}

type ResponseDeliverTx struct {
	Code   uint32          `json:"code"`
	Log    string          `json:"log,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Events []Event         `json:"events,omitempty"`
}

func (r ResponseDeliverTx) IsOK() bool { return r.Code == CodeTypeOK }

type ResponseCommit struct {
	Height int64  `json:"height"`
	Data   []byte `json:"data"`
}

type RequestQuery struct {
	Path string
	Data []byte
}

type ResponseQuery struct {
	Code   uint32          `json:"code"`
	Log    string          `json:"log,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Height int64           `json:"height"`
}

func (r ResponseQuery) IsOK() bool { return r.Code == CodeTypeOK }

type ResponseInfo struct {
	Data             string `json:"data"`
	Version          string `json:"version"`
	AppVersion       uint64 `json:"app_version"`
	LastBlockHeight  int64  `json:"last_block_height"`
	LastBlockAppHash []byte `json:"last_block_app_hash"`
}
