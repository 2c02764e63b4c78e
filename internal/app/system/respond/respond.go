// Package respond shapes every API response: a status code, the fixed CORS
// and JSON content-type headers, and a JSON body. Errors are rendered as
// {"message": "..."}.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"go.uber.org/zap"
)

// MaxJSONBody bounds plain JSON request bodies.
const MaxJSONBody = 1 << 20

type messageBody struct {
	Message string `json:"message"`
}

// Headers sets the fixed response headers.
func Headers(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Expose-Headers", IncompleteHeader)
	h.Set("Content-Type", "application/json")
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	Headers(w)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes 204 with the fixed headers.
func NoContent(w http.ResponseWriter) {
	Headers(w)
	w.WriteHeader(http.StatusNoContent)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, messageBody{Message: msg})
}

// Error translates err into a response. 5xx failures are logged with the
// underlying cause; the cause is never shown to the caller.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := apierr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	Message(w, status, apierr.Message(err))
}

// Decode reads a JSON body into v. An empty or malformed body is an
// Invalid error.
func Decode(r *http.Request, v any) error {
	return DecodeLimit(r, v, MaxJSONBody)
}

// DecodeLimit is Decode with an explicit size limit.
func DecodeLimit(r *http.Request, v any, limit int64) error {
	if r.Body == nil {
		return apierr.Invalid("Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, limit+1))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Invalid("Request body is required")
		}
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syn), errors.As(err, &typ):
			return apierr.Invalid("Malformed JSON body")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apierr.Invalid("Request body too large or truncated")
		}
		return apierr.Invalid("Malformed JSON body")
	}
	return nil
}

// Preflight answers CORS preflight requests.
func Preflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Principal-Id, X-Scope")
	NoContent(w)
}

// AnswerPreflight answers every OPTIONS request with Preflight before it
// reaches authentication or a mounted router. Browsers send preflights
// without credentials.
func AnswerPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			Preflight(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IncompleteHeader names the best-effort steps of a workflow that failed.
const IncompleteHeader = "X-Incomplete-Steps"

// Incomplete sets IncompleteHeader when steps is non-empty. Call it before
// writing the status.
func Incomplete(w http.ResponseWriter, steps []string) {
	if len(steps) == 0 {
		return
	}
	w.Header().Set(IncompleteHeader, strings.Join(steps, ","))
}
