// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldTraceID       = "trace_id"
	FieldComponent     = "component"
	FieldEvent         = "event"

	FieldMethod   = "method"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldBytes    = "bytes"
	FieldRemote   = "remote_addr"
)
