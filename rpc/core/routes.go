package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/rpc/coretypes"
	"github.com/tendermint/orderbook/rpc/jsonrpc/server"
	rpctypes "github.com/tendermint/orderbook/rpc/jsonrpc/types"
)

// Routes registers the RPC endpoints on mux.
func (env *Environment) Routes(mux *http.ServeMux) {
	logger := env.Logger
	mux.HandleFunc("/submit", method(http.MethodPost, logger, env.handleSubmit))
	mux.HandleFunc("/orders", method(http.MethodGet, logger, env.handleOrders))
	mux.HandleFunc("/order", method(http.MethodGet, logger, env.handleOrder))
	mux.HandleFunc("/account", method(http.MethodGet, logger, env.handleAccount))
	mux.HandleFunc("/status", method(http.MethodGet, logger, env.handleStatus))
	mux.HandleFunc("/health", method(http.MethodGet, logger, env.handleHealth))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		server.WriteRPCResponse(w, logger, http.StatusNotFound, rpctypes.RPCMethodNotFoundError(r.URL.Path))
	})
}

type handlerFunc func(r *http.Request) (interface{}, error)

func method(m string, logger log.Logger, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.Header().Set("Allow", m)
			server.WriteRPCResponse(w, logger, http.StatusMethodNotAllowed,
				rpctypes.RPCInvalidRequestError(fmt.Errorf("method %s not allowed", r.Method)))
			return
		}
		result, err := h(r)
		if err != nil {
			code, res := errorResponse(err)
			server.WriteRPCResponse(w, logger, code, res)
			return
		}
		server.WriteRPCResponse(w, logger, http.StatusOK, rpctypes.NewRPCSuccessResponse(result))
	}
}

func errorResponse(err error) (int, rpctypes.RPCResponse) {
	var qerr *QueryError
	switch {
	case errors.Is(err, coretypes.ErrInvalidRequest):
		return http.StatusBadRequest, rpctypes.RPCInvalidParamsError(err)
	case isNotFound(err):
		return http.StatusNotFound, rpctypes.RPCServerError(err)
	case errors.As(err, &qerr):
		return http.StatusBadRequest, rpctypes.RPCServerError(err)
	default:
		return http.StatusInternalServerError, rpctypes.RPCInternalError(err)
	}
}

func (env *Environment) handleSubmit(r *http.Request) (interface{}, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading request body: %v", coretypes.ErrInvalidRequest, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty tx", coretypes.ErrInvalidRequest)
	}
	return env.Submit(raw)
}

func (env *Environment) handleOrders(r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	var cursor *uint64
	if s := q.Get("cursor"); s != "" {
		c, err := parseUint(s, "cursor")
		if err != nil {
			return nil, err
		}
		cursor = &c
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: limit: %v", coretypes.ErrInvalidRequest, err)
		}
		limit = l
	}
	return env.Orders(q.Get("account"), cursor, limit)
}

func (env *Environment) handleOrder(r *http.Request) (interface{}, error) {
	id, err := parseUint(r.URL.Query().Get("id"), "id")
	if err != nil {
		return nil, err
	}
	return env.Order(id)
}

func (env *Environment) handleAccount(r *http.Request) (interface{}, error) {
	return env.Account(r.URL.Query().Get("address"))
}

func (env *Environment) handleStatus(*http.Request) (interface{}, error) {
	return env.Status()
}

func (env *Environment) handleHealth(*http.Request) (interface{}, error) {
	return env.Health()
}

func parseUint(s, name string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", coretypes.ErrInvalidRequest, name, err)
	}
	return v, nil
}
