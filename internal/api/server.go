package api

import (
	"context"
	"net"
	"net/http"

	"github.com/editorial-lifecycle-api/internal/config"
)

// NewServer wraps handler in an http.Server configured from cfg. Request
// contexts derive from a base context that is cancelled when Shutdown
// starts, so long-lived event streams return instead of holding it open.
func NewServer(handler http.Handler, cfg *config.ServerConfig) *http.Server {
	base, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.ReadTimeout,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
