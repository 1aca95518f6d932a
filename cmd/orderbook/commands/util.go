package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rpchttp "github.com/tendermint/orderbook/rpc/client/http"
)

const flagNode = "node"

func addNodeFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagNode, "tcp://127.0.0.1:26657", "RPC address of the node")
}

func nodeClient(cmd *cobra.Command) (*rpchttp.HTTP, error) {
	remote, err := cmd.Flags().GetString(flagNode)
	if err != nil {
		return nil, err
	}
	return rpchttp.New(remote)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
