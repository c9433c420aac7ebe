package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// Error translation
// ---------------------------------------------------------------------------

// maskedInternalMessage replaces internal error detail in production
// responses.
const maskedInternalMessage = "An internal error occurred. Please try again later."

// WriteError translates a failure into an error envelope and writes it.
//
// Translation rules, in order:
//   - context cancellation and deadline expiry map to 499 with code
//     REQUEST_CANCELLED, whether they arrive raw or as an
//     already-classified structured error;
//   - structured errors map through their code's HTTP status and carry
//     their field-level detail;
//   - malformed request bodies (JSON syntax and type errors) map to 400
//     BAD_REQUEST;
//   - anything else is a 500 INTERNAL_ERROR.
//
// Server-side failures (5xx) are logged; in production their messages are
// masked so implementation detail never reaches clients.
func (w *Writer) WriteError(rw http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	env := w.translate(err)

	if env.Status >= http.StatusInternalServerError {
		w.logger.Error("httpx: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", env.Status,
			"code", env.ErrorCode,
			"error", err,
		)
	}
	if w.production && env.Status >= http.StatusInternalServerError {
		env.Message = maskedInternalMessage
		env.Errors = nil
	}

	w.write(rw, env)
}

func (w *Writer) translate(err error) Envelope {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Envelope{
			Status:    kiterr.StatusClientClosedRequest,
			ErrorCode: string(kiterr.CodeRequestCancelled),
			Message:   "Request was cancelled by the client.",
		}
	}

	if structured, ok := kiterr.AsError(err); ok {
		return Envelope{
			Status:    structured.HTTPStatus(),
			ErrorCode: string(structured.Code),
			Message:   structured.Message,
			Errors:    structured.Fields,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return Envelope{
			Status:    http.StatusBadRequest,
			ErrorCode: string(kiterr.CodeBadRequest),
			Message:   "Request body is not valid JSON.",
		}
	}

	return Envelope{
		Status:    http.StatusInternalServerError,
		ErrorCode: string(kiterr.CodeInternal),
		Message:   err.Error(),
	}
}

// ---------------------------------------------------------------------------
// Fallback handlers
// ---------------------------------------------------------------------------

// NotFoundHandler returns a handler that renders an envelope for unmatched
// routes, suitable for mux fallback registration.
func (w *Writer) NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.write(rw, Envelope{
			Status:    http.StatusNotFound,
			ErrorCode: string(kiterr.CodeNotFound),
			Message:   "The requested resource was not found.",
		})
	})
}

// MethodNotAllowedHandler returns a handler that renders an envelope for
// requests whose path matched but whose method did not.
func (w *Writer) MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.write(rw, Envelope{
			Status:    http.StatusMethodNotAllowed,
			ErrorCode: string(kiterr.CodeMethodNotAllowed),
			Message:   "The request method is not allowed for this resource.",
		})
	})
}
