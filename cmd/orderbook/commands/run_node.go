package commands

import (
	"github.com/spf13/cobra"

	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/node"
)

// AddNodeFlags exposes the node settings as flags, each overriding the
// config file key of the same name.
func AddNodeFlags(cmd *cobra.Command, conf *config.Config) {
	cmd.Flags().String("moniker", conf.Moniker, "node name")
	cmd.Flags().String("rpc.laddr", conf.RPC.ListenAddress, "RPC listen address. Port required")
	cmd.Flags().Bool("instrumentation.prometheus", conf.Instrumentation.Prometheus,
		"serve Prometheus metrics")
	cmd.Flags().String("instrumentation.prometheus_listen_addr", conf.Instrumentation.PrometheusListenAddr,
		"Prometheus metrics listen address")
	addDBFlags(cmd, conf)
}

func addDBFlags(cmd *cobra.Command, conf *config.Config) {
	cmd.Flags().String(
		"db_backend",
		conf.DBBackend,
		"database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb")
	cmd.Flags().String(
		"db_dir",
		conf.DBPath,
		"database directory")
}

// NewRunNodeCmd returns the command that runs the node until it is
// interrupted.
func NewRunNodeCmd(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"node", "run"},
		Short:   "Run the order book node",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
			if err != nil {
				return err
			}

			n, err := node.NewDefault(conf, logger)
			if err != nil {
				return err
			}
			return n.Run(cmd.Context())
		},
	}

	AddNodeFlags(cmd, conf)
	return cmd
}
