package app

import (
	"errors"

	"github.com/tendermint/orderbook/types"
)

// Return codes for the application. A zero code means success; every other
// code means the transaction or query was rejected without changing state.
const (
	CodeTypeOK                      uint32 = 0
	CodeTypeEncodingError           uint32 = 1
	CodeTypeInvalidRequest          uint32 = 2
	CodeTypeNotAuthorized           uint32 = 3
	CodeTypeInsufficientLiquidity   uint32 = 4
	CodeTypeTimeInForceNotAllowed   uint32 = 5
	CodeTypeTokenNotAllowed         uint32 = 6
	CodeTypeTokenNotFound           uint32 = 7
	CodeTypeOrderNotFound           uint32 = 8
	CodeTypeBaseTokenNotProvisioned uint32 = 9
	CodeTypeOverflow                uint32 = 10
	CodeTypeUnknownPath             uint32 = 11
	CodeTypeInternalError           uint32 = 12
)

var code2string = map[uint32]string{
	CodeTypeOK:                      "OK",
	CodeTypeEncodingError:           "Encoding error",
	CodeTypeInvalidRequest:          "Invalid request",
	CodeTypeNotAuthorized:           "Not authorized",
	CodeTypeInsufficientLiquidity:   "Insufficient liquidity",
	CodeTypeTimeInForceNotAllowed:   "Time in force not allowed",
	CodeTypeTokenNotAllowed:         "Token not allowed",
	CodeTypeTokenNotFound:           "Token not found",
	CodeTypeOrderNotFound:           "Order not found",
	CodeTypeBaseTokenNotProvisioned: "Base token not provisioned",
	CodeTypeOverflow:                "Integer overflow",
	CodeTypeUnknownPath:             "Unknown query path",
	CodeTypeInternalError:           "Internal error",
}

// HumanCode transforms code into a more humane format, such as "Internal error" instead of 12.
func HumanCode(code uint32) string {
	s, ok := code2string[code]
	if !ok {
		return "Unknown code"
	}
	return s
}

var errUnknownPath = errors.New("unknown query path")

// codeFromError maps an error to its return code. Errors outside the
// application's taxonomy are internal errors.
func codeFromError(err error) uint32 {
	switch {
	case err == nil:
		return CodeTypeOK
	case errors.Is(err, errUnknownPath):
		return CodeTypeUnknownPath
	case errors.Is(err, types.ErrInsufficientLiquidity):
		return CodeTypeInsufficientLiquidity
	case errors.Is(err, types.ErrTimeInForceNotAllowed):
		return CodeTypeTimeInForceNotAllowed
	case errors.Is(err, types.ErrTokenNotAllowed):
		return CodeTypeTokenNotAllowed
	case errors.Is(err, types.ErrTokenNotFound):
		return CodeTypeTokenNotFound
	case errors.Is(err, types.ErrOrderNotFound):
		return CodeTypeOrderNotFound
	case errors.Is(err, types.ErrBaseTokenNotProvisioned):
		return CodeTypeBaseTokenNotProvisioned
	case errors.Is(err, types.ErrNotAuthorized):
		return CodeTypeNotAuthorized
	case errors.Is(err, types.ErrOverflow):
		return CodeTypeOverflow
	case errors.Is(err, types.ErrInvalidRequest):
		return CodeTypeInvalidRequest
	default:
		return CodeTypeInternalError
	}
}
