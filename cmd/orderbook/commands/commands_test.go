package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/internal/matching"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/libs/num"
	tmos "github.com/tendermint/orderbook/libs/os"
	"github.com/tendermint/orderbook/rpc/core"
	"github.com/tendermint/orderbook/rpc/coretypes"
	"github.com/tendermint/orderbook/types"
)

func TestInitFiles(t *testing.T) {
	home := t.TempDir()
	conf := clearConfig(t)
	_, err := runCmd(t, conf, "init", "--home", home,
		"--chain-id", "ob-test",
		"--base-symbol", "BOOK",
		"--base-cap", "1000000",
		"--quote", "native:uusd",
		"--quote", "contract:wasm1quote",
	)
	require.NoError(t, err)

	assert.True(t, tmos.FileExists(filepath.Join(home, "config", "config.toml")))
	genDoc, err := types.GenesisDocFromFile(conf.GenesisFile())
	require.NoError(t, err)
	assert.Equal(t, "ob-test", genDoc.ChainID)
	assert.Equal(t, "BOOK", genDoc.BaseToken.Symbol)
	require.NotNil(t, genDoc.BaseToken.Cap)
	assert.Equal(t, num.NewUint(1000000), *genDoc.BaseToken.Cap)
	assert.Equal(t, []types.Token{types.NativeToken("uusd"), types.ContractToken("wasm1quote")}, genDoc.QuoteTokens)

	// a second init keeps the existing genesis
	conf = clearConfig(t)
	_, err = runCmd(t, conf, "init", "--home", home, "--chain-id", "other")
	require.NoError(t, err)
	genDoc, err = types.GenesisDocFromFile(conf.GenesisFile())
	require.NoError(t, err)
	assert.Equal(t, "ob-test", genDoc.ChainID)
}

func TestInitRejectsBadQuote(t *testing.T) {
	conf := clearConfig(t)
	_, err := runCmd(t, conf, "init", "--home", t.TempDir(), "--quote", "uusd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--quote")
}

func TestBuildRequest(t *testing.T) {
	uusd := types.NativeToken("uusd")
	testCases := []struct {
		kind    string
		args    submitArgs
		want    types.OrderRequest
		wantErr string
	}{
		{
			"market-buy", submitArgs{quote: "native:uusd", balance: "100"},
			types.MarketBuy{Quote: uusd, Balance: num.NewUint(100), TimeInForce: types.IOC}, "",
		},
		{
			"market-sell", submitArgs{quote: "native:uusd", qty: "5", tif: "fok"},
			types.MarketSell{Quote: uusd, Qty: num.NewUint(5), TimeInForce: types.FOK}, "",
		},
		{
			"limit-buy", submitArgs{quote: "native:uusd", qty: "5", price: "3"},
			types.LimitBuy{Quote: uusd, Qty: num.NewUint(5), Price: num.NewUint(3), TimeInForce: types.GTC}, "",
		},
		{
			"limit-sell", submitArgs{quote: "contract:wasm1q", qty: "1", price: "9", tif: "ioc"},
			types.LimitSell{
				Quote: types.ContractToken("wasm1q"), Qty: num.NewUint(1), Price: num.NewUint(9), TimeInForce: types.IOC,
			}, "",
		},
		{"limit-buy", submitArgs{quote: "native:uusd", qty: "5"}, nil, "--price is required"},
		{"market-buy", submitArgs{quote: "native:uusd", balance: "-1"}, nil, "invalid --balance"},
		{"market-buy", submitArgs{quote: "native:uusd", balance: "0"}, nil, "balance"},
		{"stop-loss", submitArgs{quote: "native:uusd"}, nil, "unknown order kind"},
		{"market-buy", submitArgs{quote: "uusd", balance: "1"}, nil, "invalid token"},
		{"market-buy", submitArgs{quote: "native:uusd", balance: "1", tif: "day"}, nil, "day"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.kind, func(t *testing.T) {
			req, err := buildRequest(tc.kind, tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, req)
		})
	}
}

func newTestServer(t *testing.T) string {
	t.Helper()
	application, err := app.New(dbm.NewMemDB(), log.TestingLogger(), app.NopMetrics(), matching.NopMetrics())
	require.NoError(t, err)
	_, err = application.InitChain(app.RequestInitChain{Genesis: &types.GenesisDoc{
		ChainID:     "cli-test",
		GenesisTime: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
		BaseToken:   types.BaseTokenParams{Name: "Base", Symbol: "BASE", Contract: "wasm1base"},
		QuoteTokens: []types.Token{types.NativeToken("uusd")},
	}})
	require.NoError(t, err)
	_, err = application.Commit()
	require.NoError(t, err)

	env := &core.Environment{App: application, Moniker: "cli-node", Logger: log.TestingLogger(), Clock: time.Now}
	mux := http.NewServeMux()
	env.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSubmitAndQueryCommands(t *testing.T) {
	node := newTestServer(t)
	home := t.TempDir()
	run := func(args ...string) (string, error) {
		return runCmd(t, clearConfig(t), append(args, "--home", home, "--node", node)...)
	}

	out, err := run("submit", "limit-sell", "--sender", "bob", "--quote", "native:uusd", "--qty", "4", "--price", "2")
	require.NoError(t, err)
	var res coretypes.ResultSubmit
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Order)
	assert.EqualValues(t, 1, res.Order.ID)
	assert.Equal(t, types.StatusCreated, res.Order.Status)

	out, err = run("submit", "market-buy", "--sender", "alice", "--quote", "native:uusd", "--balance", "6")
	require.NoError(t, err)
	res = coretypes.ResultSubmit{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, num.NewUint(3), res.Order.QtyMatched)

	// rejected requests print the result and fail
	out, err = run("submit", "market-buy", "--sender", "alice", "--quote", "native:uusd", "--balance", "100",
		"--tif", "fok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by deliver")
	assert.Contains(t, out, `"deliver_tx"`)

	out, err = run("orders", "bob", "--limit", "10")
	require.NoError(t, err)
	var orders types.OrdersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, types.StatusPartial, orders.Orders[0].Status)

	out, err = run("order", "--id", "2")
	require.NoError(t, err)
	var order types.Order
	require.NoError(t, json.Unmarshal([]byte(out), &order))
	assert.Equal(t, "alice", order.Owner)

	out, err = run("account", "alice")
	require.NoError(t, err)
	var view types.AccountView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, num.NewUint(3), view.BaseBalance)

	out, err = run("status")
	require.NoError(t, err)
	var status coretypes.ResultStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "cli-node", status.NodeInfo.Moniker)
	assert.EqualValues(t, 4, status.SyncInfo.LatestBlockHeight)
}
