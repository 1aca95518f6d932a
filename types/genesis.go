package types

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tendermint/orderbook/libs/num"
	tmos "github.com/tendermint/orderbook/libs/os"
)

const (
	// MaxChainIDLen is a maximum length of the chain ID.
	MaxChainIDLen = 50

	// MaxTokenDecimals bounds the base token's decimals.
	MaxTokenDecimals = 18
)

// BaseTokenParams describes the base token provisioned at genesis.
type BaseTokenParams struct {
	Name     string    `json:"name"`
	Symbol   string    `json:"symbol"`
	Decimals uint8     `json:"decimals"`
	Cap      *num.Uint `json:"cap,omitempty"`

	// Contract is the address of an already deployed token. When empty the
	// application provisions one and reports back its address.
	Contract string `json:"contract,omitempty"`
}

// GenesisDoc defines the initial conditions of an order book chain.
type GenesisDoc struct {
	GenesisTime time.Time       `json:"genesis_time"`
	ChainID     string          `json:"chain_id"`
	BaseToken   BaseTokenParams `json:"base_token"`

	// QuoteTokens are registered in order, before any order is submitted.
	QuoteTokens []Token `json:"quote_tokens,omitempty"`
}

// SaveAs is a utility method for saving GenesisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := json.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return tmos.WriteFile(file, genDocBytes, 0644)
}

// ValidateAndComplete checks that all necessary fields are present
// and fills in defaults for optional fields left empty
func (genDoc *GenesisDoc) ValidateAndComplete() error {
	if genDoc.ChainID == "" {
		return fmt.Errorf("genesis doc must include non-empty chain_id")
	}
	if len(genDoc.ChainID) > MaxChainIDLen {
		return fmt.Errorf("chain_id in genesis doc is too long (max: %d)", MaxChainIDLen)
	}

	bt := genDoc.BaseToken
	if bt.Name == "" || bt.Symbol == "" {
		return fmt.Errorf("base token must have a name and a symbol")
	}
	if bt.Decimals > MaxTokenDecimals {
		return fmt.Errorf("base token decimals %d exceed %d", bt.Decimals, MaxTokenDecimals)
	}
	if bt.Cap != nil && bt.Cap.IsZero() {
		return fmt.Errorf("base token cap must be positive")
	}

	seen := make(map[string]struct{}, len(genDoc.QuoteTokens))
	for i, t := range genDoc.QuoteTokens {
		if err := t.ValidateBasic(); err != nil {
			return fmt.Errorf("quote token #%d: %w", i, err)
		}
		if bt.Contract != "" && t.Contract == bt.Contract {
			return fmt.Errorf("quote token #%d is the base token", i)
		}
		if _, ok := seen[t.Key()]; ok {
			return fmt.Errorf("quote token #%d (%s) is listed twice", i, t)
		}
		seen[t.Key()] = struct{}{}
	}

	if genDoc.GenesisTime.IsZero() {
		genDoc.GenesisTime = time.Now().UTC()
	}
	return nil
}

//------------------------------------------------------------
// Make genesis state from file

// GenesisDocFromJSON unmarshalls JSON data into a GenesisDoc.
func GenesisDocFromJSON(jsonBlob []byte) (*GenesisDoc, error) {
	genDoc := GenesisDoc{}
	if err := json.Unmarshal(jsonBlob, &genDoc); err != nil {
		return nil, err
	}

	if err := genDoc.ValidateAndComplete(); err != nil {
		return nil, err
	}

	return &genDoc, nil
}

// GenesisDocFromFile reads JSON data from a file and unmarshalls it into a GenesisDoc.
func GenesisDocFromFile(genDocFile string) (*GenesisDoc, error) {
	jsonBlob, err := os.ReadFile(genDocFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read GenesisDoc file: %w", err)
	}
	genDoc, err := GenesisDocFromJSON(jsonBlob)
	if err != nil {
		return nil, fmt.Errorf("error reading GenesisDoc at %s: %w", genDocFile, err)
	}
	return genDoc, nil
}
