package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/orderbook/libs/log"
	rpctypes "github.com/tendermint/orderbook/rpc/jsonrpc/types"
)

func TestListenInvalidAddress(t *testing.T) {
	_, err := Listen("127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fully formed")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	defer leaktest.CheckTimeout(t, 10*time.Second)()

	ln, err := Listen("tcp://127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		WriteRPCResponse(w, log.NewNopLogger(), http.StatusOK, rpctypes.NewRPCSuccessResponse("pong"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, mux, log.TestingLogger(), DefaultConfig()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"result":"pong"`)
	assert.NotEmpty(t, resp.Header.Get("X-Server-Time"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestRecoverHandlerFromPanic(t *testing.T) {
	h := recoverAndLogHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), log.TestingLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic in handler: boom")
}

func TestMaxBytesHandler(t *testing.T) {
	var readErr error
	h := maxBytesHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}), 4)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	require.Error(t, readErr)

	h = maxBytesHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}), 0)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	require.NoError(t, readErr)
}

func TestRPCResponseDecode(t *testing.T) {
	var s string
	require.NoError(t, rpctypes.NewRPCSuccessResponse("ok").Decode(&s))
	assert.Equal(t, "ok", s)

	res := rpctypes.RPCInvalidParamsError(errors.New("bad limit"))
	err := res.Decode(&s)
	require.Error(t, err)
	var rpcErr *rpctypes.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Equal(t, "RPC error -32602 - Invalid params: bad limit", err.Error())
}
