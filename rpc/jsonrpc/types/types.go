package types

import (
	"encoding/json"
	"fmt"
)

// URIRequestID is the id carried by responses to plain HTTP requests, which
// do not receive a JSON-RPC request ID from the caller.
const URIRequestID = -1

//----------------------------------------
// RESPONSE

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (err RPCError) Error() string {
	const baseFormat = "RPC error %v - %s"
	if err.Data != "" {
		return fmt.Sprintf(baseFormat+": %s", err.Code, err.Message, err.Data)
	}
	return fmt.Sprintf(baseFormat, err.Code, err.Message)
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func NewRPCSuccessResponse(res interface{}) RPCResponse {
	result, err := json.Marshal(res)
	if err != nil {
		return RPCInternalError(fmt.Errorf("error marshaling response: %w", err))
	}
	return RPCResponse{JSONRPC: "2.0", ID: URIRequestID, Result: result}
}

func NewRPCErrorResponse(code int, msg string, data string) RPCResponse {
	return RPCResponse{
		JSONRPC: "2.0",
		ID:      URIRequestID,
		Error:   &RPCError{Code: code, Message: msg, Data: data},
	}
}

func (resp RPCResponse) String() string {
	if resp.Error == nil {
		return fmt.Sprintf("RPCResponse{%d %X}", resp.ID, resp.Result)
	}
	return fmt.Sprintf("RPCResponse{%d %v}", resp.ID, resp.Error)
}

// Decode unmarshals the result into v, or returns the carried error.
func (resp RPCResponse) Decode(v interface{}) error {
	if resp.Error != nil {
		return resp.Error
	}
	if err := json.Unmarshal(resp.Result, v); err != nil {
		return fmt.Errorf("error unmarshaling result: %w", err)
	}
	return nil
}

func RPCParseError(err error) RPCResponse {
	return NewRPCErrorResponse(-32700, "Parse error", err.Error())
}

func RPCInvalidRequestError(err error) RPCResponse {
	return NewRPCErrorResponse(-32600, "Invalid Request", err.Error())
}

func RPCMethodNotFoundError(path string) RPCResponse {
	return NewRPCErrorResponse(-32601, "Method not found", path)
}

func RPCInvalidParamsError(err error) RPCResponse {
	return NewRPCErrorResponse(-32602, "Invalid params", err.Error())
}

func RPCInternalError(err error) RPCResponse {
	return NewRPCErrorResponse(-32603, "Internal error", err.Error())
}

func RPCServerError(err error) RPCResponse {
	return NewRPCErrorResponse(-32000, "Server error", err.Error())
}
