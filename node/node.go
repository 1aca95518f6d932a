// Package node assembles an order book node: the database, the
// application, the RPC server and the metrics server.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	dbm "github.com/tendermint/tm-db"
	"golang.org/x/sync/errgroup"

	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/internal/matching"
	"github.com/tendermint/orderbook/libs/log"
	rpccore "github.com/tendermint/orderbook/rpc/core"
	rpcserver "github.com/tendermint/orderbook/rpc/jsonrpc/server"
	"github.com/tendermint/orderbook/types"
)

// MetricsProvider returns the application and matching engine Metrics.
type MetricsProvider func() (*app.Metrics, *matching.Metrics)

// DefaultMetricsProvider returns Metrics build using Prometheus client library
// if Prometheus is enabled. Otherwise, it returns no-op Metrics.
func DefaultMetricsProvider(cfg *config.InstrumentationConfig) MetricsProvider {
	return func() (*app.Metrics, *matching.Metrics) {
		if cfg.Prometheus {
			return app.PrometheusMetrics(cfg.Namespace), matching.PrometheusMetrics(cfg.Namespace)
		}
		return app.NopMetrics(), matching.NopMetrics()
	}
}

// Option sets a parameter for the node.
type Option func(*Node)

// WithClock sets the source of block times. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(n *Node) { n.env.Clock = clock }
}

// Node is an order book node serving one application over RPC.
type Node struct {
	config     *config.Config
	genesisDoc *types.GenesisDoc
	logger     log.Logger

	app *app.Application
	env *rpccore.Environment

	mtx         sync.Mutex
	rpcListener net.Listener
}

// NewDefault constructs a node from the config: the database named by the
// config, the genesis file and the default metrics provider.
func NewDefault(cfg *config.Config, logger log.Logger, options ...Option) (*Node, error) {
	db, err := config.DefaultDBProvider(&config.DBContext{ID: "orderbook", Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	genDoc, err := types.GenesisDocFromFile(cfg.GenesisFile())
	if err != nil {
		db.Close()
		return nil, err
	}
	n, err := New(cfg, logger, db, genDoc, DefaultMetricsProvider(cfg.Instrumentation), options...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return n, nil
}

// New returns a node over db. A fresh database is initialized from genDoc
// and the genesis block is committed before New returns.
func New(
	cfg *config.Config,
	logger log.Logger,
	db dbm.DB,
	genDoc *types.GenesisDoc,
	metricsProvider MetricsProvider,
	options ...Option,
) (*Node, error) {
	appMetrics, engineMetrics := metricsProvider()
	application, err := app.New(db, logger.With("module", "app"), appMetrics, engineMetrics)
	if err != nil {
		return nil, err
	}

	n := &Node{
		config:     cfg,
		genesisDoc: genDoc,
		logger:     logger,
		app:        application,
		env: &rpccore.Environment{
			App:     application,
			Moniker: cfg.Moniker,
			Logger:  logger.With("module", "rpc"),
		},
	}
	for _, option := range options {
		option(n)
	}

	if err := n.initChain(); err != nil {
		return nil, err
	}
	return n, nil
}

// initChain runs InitChain on a fresh application and commits the genesis
// block. A base token without a contract address is provisioned at the
// address derived from the chain id.
func (n *Node) initChain() error {
	if n.app.Info().LastBlockHeight > 0 {
		return nil
	}
	res, err := n.app.InitChain(app.RequestInitChain{Genesis: n.genesisDoc})
	if err != nil {
		return fmt.Errorf("init chain: %w", err)
	}
	if res.BaseTokenPending {
		addr := app.BaseTokenAddress(n.genesisDoc.ChainID, n.genesisDoc.BaseToken)
		if err := n.app.ProvisionBaseToken(types.ContractToken(addr)); err != nil {
			return n.app.BaseTokenProvisionFailed(err.Error())
		}
	}
	if _, err := n.app.Commit(); err != nil {
		return fmt.Errorf("committing genesis: %w", err)
	}
	return nil
}

// Environment returns the RPC environment of the node.
func (n *Node) Environment() *rpccore.Environment {
	return n.env
}

// RPCAddr returns the address the RPC server listens on, once Run has
// started it.
func (n *Node) RPCAddr() net.Addr {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.rpcListener == nil {
		return nil
	}
	return n.rpcListener.Addr()
}

// Handler returns the RPC routes wrapped in the CORS middleware when CORS
// is enabled.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	n.env.Routes(mux)

	var rootHandler http.Handler = mux
	if n.config.RPC.IsCorsEnabled() {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: n.config.RPC.CORSAllowedOrigins,
			AllowedMethods: n.config.RPC.CORSAllowedMethods,
			AllowedHeaders: n.config.RPC.CORSAllowedHeaders,
		})
		rootHandler = corsMiddleware.Handler(mux)
	}
	return rootHandler
}

// Run serves RPC, and metrics when Prometheus is enabled, until ctx ends.
// The database is closed on return.
func (n *Node) Run(ctx context.Context) error {
	defer func() {
		if err := n.app.Close(); err != nil {
			n.logger.Error("closing application", "err", err)
		}
	}()

	listener, err := rpcserver.Listen(n.config.RPC.ListenAddress)
	if err != nil {
		return err
	}
	n.mtx.Lock()
	n.rpcListener = listener
	n.mtx.Unlock()

	cfg := rpcserver.DefaultConfig()
	cfg.MaxBodyBytes = n.config.RPC.MaxBodyBytes
	cfg.MaxHeaderBytes = n.config.RPC.MaxHeaderBytes

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rpcserver.Serve(ctx, listener, n.Handler(), n.logger.With("module", "rpc-server"), cfg)
	})
	if n.config.Instrumentation.Prometheus {
		g.Go(func() error { return n.servePrometheus(ctx) })
	}

	n.logger.Info("started node",
		"moniker", n.config.Moniker,
		"chain_id", n.genesisDoc.ChainID,
		"height", n.app.Info().LastBlockHeight,
	)
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (n *Node) servePrometheus(ctx context.Context) error {
	addr := n.config.Instrumentation.PrometheusListenAddr
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return rpcserver.Serve(ctx, listener, mux, n.logger.With("module", "prometheus"), rpcserver.DefaultConfig())
}
