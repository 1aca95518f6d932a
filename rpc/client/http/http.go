package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tendermint/orderbook/rpc/client"
	"github.com/tendermint/orderbook/rpc/coretypes"
	rpctypes "github.com/tendermint/orderbook/rpc/jsonrpc/types"
	"github.com/tendermint/orderbook/types"
)

// HTTP is a Client talking to a node over HTTP.
//
// HTTP is safe for concurrent use by multiple goroutines.
type HTTP struct {
	address string
	client  *http.Client
}

var _ client.Client = (*HTTP)(nil)

// New returns a client for the node at remote. remote may use the tcp://
// scheme of listen addresses, which is mapped to http://.
func New(remote string) (*HTTP, error) {
	return NewWithClient(remote, &http.Client{Timeout: 30 * time.Second})
}

// NewWithClient is New with a custom http.Client.
func NewWithClient(remote string, c *http.Client) (*HTTP, error) {
	if c == nil {
		return nil, errors.New("nil http.Client provided")
	}
	u, err := url.Parse(remote)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid remote %q", remote)
	}
	switch u.Scheme {
	case "tcp", "":
		u.Scheme = "http"
	case "http", "https":
	default:
		return nil, errors.Errorf("unsupported scheme %q in remote %q", u.Scheme, remote)
	}
	if u.Host == "" {
		return nil, errors.Errorf("invalid remote %q: missing host", remote)
	}
	return &HTTP{
		address: strings.TrimSuffix(u.String(), "/"),
		client:  c,
	}, nil
}

func (c *HTTP) Submit(ctx context.Context, tx types.Tx) (*coretypes.ResultSubmit, error) {
	raw, err := tx.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "Submit")
	}
	result := new(coretypes.ResultSubmit)
	if err := c.call(ctx, http.MethodPost, "submit", nil, raw, result); err != nil {
		return nil, errors.Wrap(err, "Submit")
	}
	return result, nil
}

func (c *HTTP) Orders(ctx context.Context, account string, cursor *uint64, limit int) (*types.OrdersResponse, error) {
	params := url.Values{}
	params.Set("account", account)
	if cursor != nil {
		params.Set("cursor", strconv.FormatUint(*cursor, 10))
	}
	if limit != 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	result := new(types.OrdersResponse)
	if err := c.call(ctx, http.MethodGet, "orders", params, nil, result); err != nil {
		return nil, errors.Wrap(err, "Orders")
	}
	return result, nil
}

func (c *HTTP) Order(ctx context.Context, id uint64) (*types.Order, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatUint(id, 10))
	result := new(types.Order)
	if err := c.call(ctx, http.MethodGet, "order", params, nil, result); err != nil {
		return nil, errors.Wrap(err, "Order")
	}
	return result, nil
}

func (c *HTTP) Account(ctx context.Context, address string) (*types.AccountView, error) {
	params := url.Values{}
	params.Set("address", address)
	result := new(types.AccountView)
	if err := c.call(ctx, http.MethodGet, "account", params, nil, result); err != nil {
		return nil, errors.Wrap(err, "Account")
	}
	return result, nil
}

func (c *HTTP) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	result := new(coretypes.ResultStatus)
	if err := c.call(ctx, http.MethodGet, "status", nil, nil, result); err != nil {
		return nil, errors.Wrap(err, "Status")
	}
	return result, nil
}

func (c *HTTP) call(ctx context.Context, method, path string, params url.Values, body []byte, result interface{}) error {
	u := c.address + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close() // nolint: errcheck

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	var rpcResp rpctypes.RPCResponse
	if err := json.Unmarshal(responseBytes, &rpcResp); err != nil {
		return errors.Wrapf(err, "unexpected response (status %d)", resp.StatusCode)
	}
	return rpcResp.Decode(result)
}
