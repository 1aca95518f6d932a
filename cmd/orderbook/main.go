package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/tendermint/orderbook/cmd/orderbook/commands"
	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/libs/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf := config.DefaultConfig()

	rootCmd := commands.RootCommand(conf)
	rootCmd.AddCommand(
		commands.MakeInitFilesCommand(conf),
		commands.NewRunNodeCmd(conf),
		commands.MakeSubmitCommand(),
		commands.MakeOrdersCommand(),
		commands.MakeOrderCommand(),
		commands.MakeAccountCommand(),
		commands.MakeStatusCommand(),
		commands.VersionCmd,
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		cli.Exit(err)
	}
}
