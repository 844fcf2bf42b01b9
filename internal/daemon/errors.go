// SPDX-License-Identifier: MIT

package daemon

import "errors"

var (
	// ErrMissingAPIHandler is returned when API handler is not provided
	ErrMissingAPIHandler = errors.New("API handler is required")

	// ErrMissingListenAddr is returned when the server has no address to bind.
	ErrMissingListenAddr = errors.New("listen address is required")

	// ErrMissingManager is returned when a daemon app is created without a manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrManagerAlreadyStarted is returned when Start is called twice.
	ErrManagerAlreadyStarted = errors.New("manager already started")
)
