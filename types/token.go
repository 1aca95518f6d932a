package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/orderbook/libs/num"
)

// BaseTokenID is the token id reserved for the book's base token. Quote
// tokens are numbered from BaseTokenID+1 in registration order.
const BaseTokenID uint32 = 1

// Token references a fungible asset: either a native denomination or a token
// contract address. Exactly one of the fields is set.
type Token struct {
	Native   string `json:"native,omitempty"`
	Contract string `json:"contract,omitempty"`
}

func NativeToken(denom string) Token {
	return Token{Native: denom}
}

func ContractToken(address string) Token {
	return Token{Contract: address}
}

// Key returns the registry key of the token.
func (t Token) Key() string {
	if t.Native != "" {
		return "native:" + t.Native
	}
	return "contract:" + t.Contract
}

func (t Token) String() string {
	return t.Key()
}

// ParseToken parses the "native:<denom>" or "contract:<address>" form
// returned by Key.
func ParseToken(s string) (Token, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return Token{}, fmt.Errorf("invalid token %q (want native:<denom> or contract:<address>)", s)
	}
	switch kind {
	case "native":
		return NativeToken(value), nil
	case "contract":
		return ContractToken(value), nil
	default:
		return Token{}, fmt.Errorf("invalid token kind %q", kind)
	}
}

// ValidateBasic performs stateless validation of the token reference.
func (t Token) ValidateBasic() error {
	switch {
	case t.Native == "" && t.Contract == "":
		return errors.New("token must set either native or contract")
	case t.Native != "" && t.Contract != "":
		return fmt.Errorf("token %s sets both native and contract", t.Native)
	}
	return nil
}

// TokenAmount is an amount of a given token.
type TokenAmount struct {
	Token  Token    `json:"token"`
	Amount num.Uint `json:"amount"`
}
