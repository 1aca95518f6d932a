package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/libs/cli"
)

// EnvPrefix is the prefix of environment variables read into the config,
// e.g. OB_HOME or OB_RPC_LADDR.
const EnvPrefix = "OB"

// ParseConfig retrieves the default environment configuration,
// sets up the root and ensures that the root exists
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point of the node.
func RootCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orderbook",
		Short:         "Deterministic limit order book node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			config.EnsureRoot(conf.RootDir)
			return nil
		},
	}
	cmd.PersistentFlags().String("log_level", conf.LogLevel, "log level: debug | info | warn | error")
	cmd.PersistentFlags().String("log_format", conf.LogFormat, "log format: plain | json")
	return cli.PrepareBaseCmd(cmd, EnvPrefix, os.ExpandEnv(filepath.Join("$HOME", config.DefaultOrderbookDir)))
}
