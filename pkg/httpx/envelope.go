// Package httpx provides the uniform HTTP response envelope and the single
// error-translation boundary for services built on the kit, plus common
// HTTP middleware (request ids, rate limiting, panic recovery, Prometheus
// instrumentation).
//
// Every response, success or failure, is the same envelope shape so that
// clients parse one structure. Handlers never format their own error
// responses: they return typed failures and the boundary translates them
// to a wire status and stable machine code.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

// Envelope is the uniform response wrapper. Data is always present as a
// field (possibly null) to keep client-side parsing uniform; ErrorCode is
// a stable machine code for client branching logic.
type Envelope struct {
	// Status is the HTTP status code, duplicated in the body for clients
	// that log or forward envelopes without transport context.
	Status int `json:"status"`

	// ErrorCode is the stable machine-readable failure code. Empty on
	// success.
	ErrorCode string `json:"error_code,omitempty"`

	// Message is the human-readable summary. On production internal
	// errors this is a generic string, never implementation detail.
	Message string `json:"message,omitempty"`

	// Data is the payload. Always serialized, possibly null.
	Data any `json:"data"`

	// Errors carries field-level validation messages keyed by field name.
	Errors map[string][]string `json:"errors,omitempty"`

	// Meta carries pagination and other response metadata.
	Meta *Meta `json:"meta,omitempty"`
}

// Meta is the response metadata block: standard pagination fields plus an
// open extension map.
type Meta struct {
	Page       int            `json:"page,omitempty"`
	PageSize   int            `json:"page_size,omitempty"`
	TotalCount int64          `json:"total_count,omitempty"`
	TotalPages int            `json:"total_pages,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewPageMeta builds pagination metadata, deriving TotalPages from the
// total count and page size.
func NewPageMeta(page, pageSize int, totalCount int64) *Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Meta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

// Writer renders envelopes and translates failures at the response
// boundary. Production mode masks internal error messages; non-production
// passes them through for debuggability.
//
// Writer is stateless after construction and safe for concurrent use.
type Writer struct {
	logger     *slog.Logger
	production bool
}

// NewWriter creates a response writer. If logger is nil, slog.Default()
// is used.
func NewWriter(logger *slog.Logger, production bool) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		logger:     logger,
		production: production,
	}
}

// WriteJSON writes a success envelope with the given payload.
func (w *Writer) WriteJSON(rw http.ResponseWriter, status int, data any) {
	w.write(rw, Envelope{Status: status, Data: data})
}

// WriteJSONMeta writes a success envelope with payload and metadata.
func (w *Writer) WriteJSONMeta(rw http.ResponseWriter, status int, data any, meta *Meta) {
	w.write(rw, Envelope{Status: status, Data: data, Meta: meta})
}

// write serializes and sends an envelope. Serialization failure falls back
// to a bare 500: at that point the envelope itself cannot be produced.
func (w *Writer) write(rw http.ResponseWriter, env Envelope) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(env.Status)

	if err := json.NewEncoder(rw).Encode(env); err != nil {
		w.logger.Error("httpx: failed to encode response envelope", "error", err)
	}
}
