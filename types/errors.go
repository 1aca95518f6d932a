package types

import (
	"errors"

	"github.com/tendermint/orderbook/libs/num"
)

var (
	// ErrNotAuthorized is reserved for authorization checks on the sender.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInsufficientLiquidity is returned when a fill-or-kill order cannot be
	// fully satisfied or an immediate-or-cancel order cannot be matched at all.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrTimeInForceNotAllowed is returned for a good-till-canceled market order.
	ErrTimeInForceNotAllowed = errors.New("time in force not allowed")

	// ErrTokenNotAllowed is returned when the quote token is not registered.
	ErrTokenNotAllowed = errors.New("token not allowed")

	// ErrTokenNotFound is returned when a registered token id has no token
	// record. It indicates inconsistent state.
	ErrTokenNotFound = errors.New("token not found")

	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrBaseTokenNotProvisioned = errors.New("base token not provisioned")
	ErrBaseTokenProvisioning   = errors.New("base token provisioning failed")

	// ErrOverflow aliases num.ErrOverflow so callers can match arithmetic
	// failures without importing libs/num.
	ErrOverflow = num.ErrOverflow
)
