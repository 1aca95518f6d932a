package app

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tendermint/orderbook/types"
)

// BaseTokenAddress derives the contract address a standalone node assigns
// to the base token it provisions itself. The address only depends on the
// chain id and the token symbol, so every node derives the same one.
func BaseTokenAddress(chainID string, params types.BaseTokenParams) string {
	h := sha256.Sum256([]byte(chainID + "/" + params.Symbol))
	return "ob1" + hex.EncodeToString(h[:20])
}
