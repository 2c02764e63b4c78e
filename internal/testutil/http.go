package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/authscope"
)

// Principal builds a "<provider>|<userId>" principal for userID.
func Principal(userID string) string {
	return "test|" + userID
}

// WithIdentity attaches an authenticated identity for userID with the given
// scopes, bypassing the authentication middleware.
func WithIdentity(r *http.Request, userID string, scopes ...string) *http.Request {
	id, ok := authscope.NewIdentity(Principal(userID), strings.Join(scopes, " "))
	if !ok {
		panic("testutil: invalid user id " + userID)
	}
	return r.WithContext(authscope.WithIdentity(r.Context(), id))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
// A string v is sent verbatim.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()

	var body []byte
	switch b := v.(type) {
	case string:
		body = []byte(b)
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertMessage checks the {"message": ...} error body.
func (r *ResponseRecorder) AssertMessage(t interface{ Errorf(string, ...any) }, expected string) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("decode message body: %v", err)
		return
	}
	if body.Message != expected {
		t.Errorf("message: got %q, want %q", body.Message, expected)
	}
}

// AssertCORS checks the fixed response headers.
func (r *ResponseRecorder) AssertCORS(t interface{ Errorf(string, ...any) }) {
	if got := r.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
	}
	if got := r.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", got)
	}
}

// Decode unmarshals the response body into v.
func (r *ResponseRecorder) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response body: %v (body %s)", err, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
