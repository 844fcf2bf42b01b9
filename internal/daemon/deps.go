// SPDX-License-Identifier: MIT

package daemon

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// DefaultServerConfig listens on all interfaces at port with production timeouts.
func DefaultServerConfig(port int) ServerConfig {
	return ServerConfig{
		ListenAddr:      net.JoinHostPort("", strconv.Itoa(port)),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// APIHandler is the HTTP handler for the API server
	APIHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
