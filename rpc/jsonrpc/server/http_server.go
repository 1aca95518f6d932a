// Package server holds the HTTP plumbing shared by the RPC endpoints:
// listening on tcp:// or unix:// addresses, response writing, panic
// recovery and request logging.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/tendermint/orderbook/libs/log"
	rpctypes "github.com/tendermint/orderbook/rpc/jsonrpc/types"
)

// Config is a RPC server configuration.
type Config struct {
	// The time to wait for a request body and headers
	ReadTimeout time.Duration
	// The time to wait for the handler to write the response
	WriteTimeout time.Duration
	// MaxBodyBytes controls the maximum number of bytes the
	// server will read parsing the request body.
	MaxBodyBytes int64
	// MaxHeaderBytes controls the maximum number of bytes the
	// server will read parsing the request header's keys and values.
	MaxHeaderBytes int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxBodyBytes:   int64(1000000), // 1MB
		MaxHeaderBytes: 1 << 20,        // same as the net/http default
	}
}

// Listen starts a new net.Listener on the given address. The address
// should be fully formed including the tcp:// or unix:// prefix.
func Listen(addr string) (net.Listener, error) {
	parts := strings.SplitN(addr, "://", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf(
			"invalid listening address %s (use fully formed addresses, including the tcp:// or unix:// prefix)",
			addr,
		)
	}
	proto, addr := parts[0], parts[1]
	listener, err := net.Listen(proto, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %v: %w", addr, err)
	}
	return listener, nil
}

// Serve creates a http.Server and calls Serve with the given listener. It
// blocks until ctx ends or the server fails. When ctx ends the server is
// shut down gracefully.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger log.Logger, config *Config) error {
	logger.Info("Starting RPC HTTP server", "listen_addr", listener.Addr().String())
	h := recoverAndLogHandler(maxBytesHandler(handler, config.MaxBodyBytes), logger)
	s := &http.Server{
		Handler:           h,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
	}

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		logger.Info("RPC HTTP server stopped")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("RPC HTTP server stopped", "err", err)
		return err
	}
}

// WriteRPCResponse marshals res as JSON and writes it with the given status.
func WriteRPCResponse(w http.ResponseWriter, logger log.Logger, httpCode int, res rpctypes.RPCResponse) {
	jsonBytes, err := json.Marshal(res)
	if err != nil {
		logger.Error("Failed to marshal RPC response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	if _, err := w.Write(jsonBytes); err != nil {
		logger.Error("Failed to write response", "err", err)
	}
}

//-----------------------------------------------------------------------------

// recoverAndLogHandler wraps an HTTP handler, adding error logging. If the
// inner handler panics, the wrapper recovers, logs, and sends an HTTP 500
// error response to the client.
func recoverAndLogHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wrap the ResponseWriter to remember the status
		rww := &responseWriterWrapper{-1, w}
		begin := time.Now()

		rww.Header().Set("X-Server-Time", fmt.Sprintf("%v", begin.Unix()))

		defer func() {
			if e := recover(); e != nil {
				logger.Error("Panic in RPC HTTP handler",
					"err", e, "stack", string(debug.Stack()))
				WriteRPCResponse(rww, logger, http.StatusInternalServerError,
					rpctypes.RPCInternalError(fmt.Errorf("panic in handler: %v", e)))
			}

			// Finally, log.
			if rww.Status == -1 {
				rww.Status = http.StatusOK
			}
			logger.Debug("served RPC HTTP response",
				"method", r.Method,
				"url", r.URL.String(),
				"status", rww.Status,
				"duration", time.Since(begin).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		}()

		handler.ServeHTTP(rww, r)
	})
}

// Remember the status for logging
type responseWriterWrapper struct {
	Status int
	http.ResponseWriter
}

func (w *responseWriterWrapper) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

func maxBytesHandler(h http.Handler, n int64) http.Handler {
	if n <= 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h.ServeHTTP(w, r)
	})
}
