package node

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/internal/matching"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/libs/num"
	rpchttp "github.com/tendermint/orderbook/rpc/client/http"
	"github.com/tendermint/orderbook/types"
)

var blockTime = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

func testGenesis() *types.GenesisDoc {
	return &types.GenesisDoc{
		ChainID:     "node-test",
		GenesisTime: blockTime,
		BaseToken:   types.BaseTokenParams{Name: "Base", Symbol: "BASE", Decimals: 6},
		QuoteTokens: []types.Token{types.NativeToken("uusd")},
	}
}

func nopMetrics() (*app.Metrics, *matching.Metrics) {
	return app.NopMetrics(), matching.NopMetrics()
}

func fixedClock() func() time.Time {
	return func() time.Time { return blockTime }
}

// runNode starts n and returns a client for it and a stop function that
// waits for Run to return.
func runNode(t *testing.T, n *Node) (*rpchttp.HTTP, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	require.Eventually(t, func() bool { return n.RPCAddr() != nil }, 5*time.Second, 10*time.Millisecond)
	c, err := rpchttp.New("tcp://" + n.RPCAddr().String())
	require.NoError(t, err)

	return c, func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("node did not stop")
		}
		http.DefaultClient.CloseIdleConnections()
	}
}

func TestNodeProvisionsBaseTokenAtGenesis(t *testing.T) {
	cfg := config.TestConfig()
	n, err := New(cfg, log.TestingLogger(), dbm.NewMemDB(), testGenesis(), nopMetrics)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n.app.Info().LastBlockHeight)

	// the base token is in place, so orders are accepted right away
	res, err := n.Environment().Submit(mustEncode(t, "alice", types.LimitSell{
		Quote: types.NativeToken("uusd"), Qty: num.NewUint(1), Price: num.NewUint(1), TimeInForce: types.GTC,
	}))
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.DeliverTx.Log)
}

func TestNodeRunServesRPC(t *testing.T) {
	defer leaktest.CheckTimeout(t, 10*time.Second)()

	cfg := config.TestConfig()
	cfg.RPC.CORSAllowedOrigins = []string{"*"}
	n, err := New(cfg, log.TestingLogger(), dbm.NewMemDB(), testGenesis(), nopMetrics, WithClock(fixedClock()))
	require.NoError(t, err)

	c, stop := runNode(t, n)
	defer stop()

	ctx := context.Background()
	res, err := c.Submit(ctx, types.NewSubmitTx("bob", types.LimitSell{
		Quote: types.NativeToken("uusd"), Qty: num.NewUint(5), Price: num.NewUint(2), TimeInForce: types.GTC,
	}))
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.DeliverTx.Log)
	assert.True(t, res.Order.CreatedAt.Equal(blockTime))

	res, err = c.Submit(ctx, types.NewSubmitTx("alice", types.MarketBuy{
		Quote: types.NativeToken("uusd"), Balance: num.NewUint(7), TimeInForce: types.IOC,
	}))
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.DeliverTx.Log)
	assert.Equal(t, num.NewUint(3), res.Order.QtyMatched)

	view, err := c.Account(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, num.NewUint(3), view.BaseBalance)
	assert.Equal(t, num.NewUint(1), res.Order.Balance)
	assert.Empty(t, view.QuoteBalances)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, status.SyncInfo.LatestBlockHeight)

	// CORS preflight
	req, err := http.NewRequest(http.MethodOptions, "http://"+n.RPCAddr().String()+"/submit", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNodeServesMetrics(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Instrumentation.Prometheus = true
	cfg.Instrumentation.PrometheusListenAddr = "127.0.0.1:0"
	n, err := New(cfg, log.TestingLogger(), dbm.NewMemDB(), testGenesis(), nopMetrics)
	require.NoError(t, err)

	// the handler is mounted regardless of the listener
	mux := n.Handler()
	require.NotNil(t, mux)

	_, stop := runNode(t, n)
	stop()
}

func TestNodeRestartKeepsState(t *testing.T) {
	cfg := config.TestConfig()
	cfg.SetRoot(t.TempDir())
	cfg.DBBackend = string(dbm.GoLevelDBBackend)

	genDoc := testGenesis()
	db, err := config.DefaultDBProvider(&config.DBContext{ID: "orderbook", Config: cfg})
	require.NoError(t, err)
	n, err := New(cfg, log.TestingLogger(), db, genDoc, nopMetrics)
	require.NoError(t, err)
	res, err := n.Environment().Submit(mustEncode(t, "alice", types.LimitBuy{
		Quote: types.NativeToken("uusd"), Qty: num.NewUint(2), Price: num.NewUint(9), TimeInForce: types.GTC,
	}))
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.DeliverTx.Log)
	require.NoError(t, n.app.Close())

	db, err = config.DefaultDBProvider(&config.DBContext{ID: "orderbook", Config: cfg})
	require.NoError(t, err)
	n, err = New(cfg, log.TestingLogger(), db, genDoc, nopMetrics)
	require.NoError(t, err)
	defer n.app.Close()

	info := n.app.Info()
	assert.EqualValues(t, 2, info.LastBlockHeight)
	order, err := n.Environment().Order(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", order.Owner)
}

func TestDefaultMetricsProvider(t *testing.T) {
	cfg := config.TestInstrumentationConfig()
	appMetrics, engineMetrics := DefaultMetricsProvider(cfg)()
	assert.NotNil(t, appMetrics)
	assert.NotNil(t, engineMetrics)
}

func mustEncode(t *testing.T, sender string, req types.OrderRequest) []byte {
	t.Helper()
	bz, err := types.NewSubmitTx(sender, req).Encode()
	require.NoError(t, err)
	return bz
}
