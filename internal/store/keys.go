package store

import (
	"fmt"

	"github.com/google/orderedcode"

	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

//---------------------------------- KEY ENCODING -----------------------------------------

// key prefixes
// NB: prefixes are unique across the whole application database. The
// app-level keys written by internal/app use prefixAppState.
const (
	prefixOrderIDSeq   = int64(0)
	prefixTokenIDSeq   = int64(1)
	prefixTokenID      = int64(2)
	prefixToken        = int64(3)
	prefixBaseToken    = int64(4)
	prefixOrder        = int64(5)
	prefixAccountOrder = int64(6)
	prefixBalance      = int64(7)
	prefixAsk          = int64(8)
	prefixBid          = int64(9)
	prefixAppState     = int64(10)
)

func mustAppend(items ...interface{}) []byte {
	key, err := orderedcode.Append(nil, items...)
	if err != nil {
		panic(err)
	}
	return key
}

func orderIDSeqKey() []byte { return mustAppend(prefixOrderIDSeq) }
func tokenIDSeqKey() []byte { return mustAppend(prefixTokenIDSeq) }
func baseTokenKey() []byte  { return mustAppend(prefixBaseToken) }

// AppStateKey is the key under which the host records its last committed
// height and app hash.
func AppStateKey() []byte { return mustAppend(prefixAppState) }

func tokenIDKey(token types.Token) []byte {
	return mustAppend(prefixTokenID, token.Key())
}

func tokenKey(tokenID uint32) []byte {
	return mustAppend(prefixToken, uint64(tokenID))
}

func orderKey(orderID uint64) []byte {
	return mustAppend(prefixOrder, orderID)
}

func accountOrderKey(account string, orderID uint64) []byte {
	return mustAppend(prefixAccountOrder, account, orderID)
}

func decodeAccountOrderKey(key []byte) (account string, orderID uint64, err error) {
	var prefix int64
	remaining, err := orderedcode.Parse(string(key), &prefix, &account, &orderID)
	if err != nil {
		return "", 0, err
	}
	if len(remaining) != 0 {
		return "", 0, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixAccountOrder {
		return "", 0, fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixAccountOrder, prefix)
	}
	return account, orderID, nil
}

func balanceKey(account string, tokenID uint32) []byte {
	return mustAppend(prefixBalance, account, uint64(tokenID))
}

func decodeBalanceKey(key []byte) (account string, tokenID uint32, err error) {
	var (
		prefix int64
		id     uint64
	)
	remaining, err := orderedcode.Parse(string(key), &prefix, &account, &id)
	if err != nil {
		return "", 0, err
	}
	if len(remaining) != 0 {
		return "", 0, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixBalance {
		return "", 0, fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixBalance, prefix)
	}
	return account, uint32(id), nil
}

// Book keys order asks by ascending price and bids by descending price. Within
// a price level both sides order by ascending order id.
func bookPrefix(side types.Side) int64 {
	if side == types.SideBuy {
		return prefixBid
	}
	return prefixAsk
}

func encodePrice(side types.Side, price num.Uint) interface{} {
	bz := price.Bytes32()
	if side == types.SideBuy {
		return orderedcode.Decr(string(bz[:]))
	}
	return string(bz[:])
}

func bookKey(side types.Side, tokenID uint32, price num.Uint, orderID uint64) []byte {
	return mustAppend(bookPrefix(side), uint64(tokenID), encodePrice(side, price), orderID)
}

// bookTokenRange returns the bounds covering every entry of side for tokenID.
func bookTokenRange(side types.Side, tokenID uint32) (start, end []byte) {
	return mustAppend(bookPrefix(side), uint64(tokenID)),
		mustAppend(bookPrefix(side), uint64(tokenID)+1)
}

// bookLevelRange returns the bounds covering the single price level of side
// for tokenID.
func bookLevelRange(side types.Side, tokenID uint32, price num.Uint) (start, end []byte) {
	return mustAppend(bookPrefix(side), uint64(tokenID), encodePrice(side, price)),
		mustAppend(bookPrefix(side), uint64(tokenID), encodePrice(side, price), orderedcode.Infinity)
}

func decodeBookKey(key []byte) (side types.Side, tokenID uint32, price num.Uint, orderID uint64, err error) {
	var (
		prefix   int64
		id       uint64
		priceStr string
	)
	remaining, err := orderedcode.Parse(string(key), &prefix)
	if err != nil {
		return 0, 0, num.Uint{}, 0, err
	}
	switch prefix {
	case prefixBid:
		side = types.SideBuy
		remaining, err = orderedcode.Parse(remaining, &id, orderedcode.Decr(&priceStr), &orderID)
	case prefixAsk:
		side = types.SideSell
		remaining, err = orderedcode.Parse(remaining, &id, &priceStr, &orderID)
	default:
		return 0, 0, num.Uint{}, 0, fmt.Errorf("incorrect prefix. Expected a book prefix, got %v", prefix)
	}
	if err != nil {
		return 0, 0, num.Uint{}, 0, err
	}
	if len(remaining) != 0 {
		return 0, 0, num.Uint{}, 0, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	price, err = num.UintFromBytes32([]byte(priceStr))
	if err != nil {
		return 0, 0, num.Uint{}, 0, err
	}
	return side, uint32(id), price, orderID, nil
}
