package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendermint/orderbook/config"
	"github.com/tendermint/orderbook/libs/num"
	tmos "github.com/tendermint/orderbook/libs/os"
	tmrand "github.com/tendermint/orderbook/libs/rand"
	"github.com/tendermint/orderbook/types"
)

const (
	flagChainID      = "chain-id"
	flagBaseName     = "base-name"
	flagBaseSymbol   = "base-symbol"
	flagBaseDecimals = "base-decimals"
	flagBaseCap      = "base-cap"
	flagBaseContract = "base-contract"
	flagQuote        = "quote"
)

// MakeInitFilesCommand returns the command that writes the config file and
// the genesis file into the home directory. Existing files are kept.
func MakeInitFilesCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initializes an order book node: config and genesis files",
		RunE: func(cmd *cobra.Command, args []string) error {
			genDoc, err := genesisFromFlags(cmd)
			if err != nil {
				return err
			}
			return initFilesWithConfig(cmd, conf, genDoc)
		},
	}

	cmd.Flags().String(flagChainID, "", "chain id (random when empty)")
	cmd.Flags().String(flagBaseName, "Orderbook Base Token", "name of the base token")
	cmd.Flags().String(flagBaseSymbol, "BASE", "symbol of the base token")
	cmd.Flags().Uint8(flagBaseDecimals, 6, "decimals of the base token")
	cmd.Flags().String(flagBaseCap, "", "supply cap of the base token (none when empty)")
	cmd.Flags().String(flagBaseContract, "", "address of an already deployed base token")
	cmd.Flags().StringSlice(flagQuote, nil,
		"quote token registered at genesis, as native:<denom> or contract:<address> (repeatable)")
	return cmd
}

func genesisFromFlags(cmd *cobra.Command) (*types.GenesisDoc, error) {
	flags := cmd.Flags()
	chainID, _ := flags.GetString(flagChainID)
	if chainID == "" {
		chainID = fmt.Sprintf("orderbook-%v", tmrand.Str(6))
	}
	name, _ := flags.GetString(flagBaseName)
	symbol, _ := flags.GetString(flagBaseSymbol)
	decimals, _ := flags.GetUint8(flagBaseDecimals)
	contract, _ := flags.GetString(flagBaseContract)

	genDoc := &types.GenesisDoc{
		GenesisTime: time.Now().UTC(),
		ChainID:     chainID,
		BaseToken: types.BaseTokenParams{
			Name:     name,
			Symbol:   symbol,
			Decimals: decimals,
			Contract: contract,
		},
	}

	if s, _ := flags.GetString(flagBaseCap); s != "" {
		c, err := num.UintFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", flagBaseCap, err)
		}
		genDoc.BaseToken.Cap = &c
	}

	quotes, _ := flags.GetStringSlice(flagQuote)
	for _, q := range quotes {
		token, err := types.ParseToken(q)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", flagQuote, err)
		}
		genDoc.QuoteTokens = append(genDoc.QuoteTokens, token)
	}

	if err := genDoc.ValidateAndComplete(); err != nil {
		return nil, err
	}
	return genDoc, nil
}

func initFilesWithConfig(cmd *cobra.Command, conf *config.Config, genDoc *types.GenesisDoc) error {
	configFile := filepath.Join(conf.RootDir, "config", "config.toml")
	if tmos.FileExists(configFile) {
		cmd.Printf("Found config file %s\n", configFile)
	} else {
		if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
			return err
		}
		cmd.Printf("Generated config file %s\n", configFile)
	}

	genFile := conf.GenesisFile()
	if tmos.FileExists(genFile) {
		cmd.Printf("Found genesis file %s\n", genFile)
		return nil
	}
	if err := genDoc.SaveAs(genFile); err != nil {
		return err
	}
	cmd.Printf("Generated genesis file %s (chain id %s)\n", genFile, genDoc.ChainID)
	return nil
}
