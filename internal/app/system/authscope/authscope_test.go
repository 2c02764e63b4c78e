package authscope_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParsePrincipal(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"auth0|5f1c", "5f1c", true},
		{"google-oauth2|1234567890", "1234567890", true},
		{"", "", false},
		{"auth0", "", false},
		{"auth0|", "", false},
		{"a|b|c", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, ok := authscope.ParsePrincipal(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseScopes(t *testing.T) {
	assert.Equal(t, []string{}, authscope.ParseScopes(""))
	assert.Equal(t, []string{}, authscope.ParseScopes("   "))
	assert.Equal(t, []string{"manage:project", "openid"}, authscope.ParseScopes("manage:project  openid"))
}

func TestIdentity_Has(t *testing.T) {
	id, ok := authscope.NewIdentity("auth0|u1", "openid manage:entry")
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.True(t, id.Has(authscope.DefaultManageEntry))
	assert.False(t, id.Has(authscope.DefaultManageProject))
	assert.False(t, id.Has(""))
}

func TestOwns(t *testing.T) {
	assert.True(t, authscope.Owns("u1", "u1"))
	assert.False(t, authscope.Owns("u1", "u2"))
	assert.False(t, authscope.Owns("", ""))
}

func TestAuthenticator_JWT(t *testing.T) {
	a, err := authscope.NewAuthenticator(authscope.Config{Mode: "jwt", Secret: "s3cret"})
	require.NoError(t, err)

	token, err := authscope.SignToken("s3cret", "auth0|u1", "manage:project")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	id, err := a.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.True(t, id.Has("manage:project"))

	t.Run("wrong secret", func(t *testing.T) {
		bad, err := authscope.SignToken("other", "auth0|u1")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+bad)
		_, err = a.Authenticate(req)
		assert.True(t, errors.Is(err, authscope.ErrBadCredentials))
	})

	t.Run("malformed principal", func(t *testing.T) {
		bad, err := authscope.SignToken("s3cret", "no-provider")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+bad)
		_, err = a.Authenticate(req)
		assert.True(t, errors.Is(err, authscope.ErrBadCredentials))
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := a.Authenticate(req)
		assert.True(t, errors.Is(err, authscope.ErrNoCredentials))
	})

	t.Run("not bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		_, err := a.Authenticate(req)
		assert.True(t, errors.Is(err, authscope.ErrBadCredentials))
	})
}

func TestAuthenticator_Gateway(t *testing.T) {
	a, err := authscope.NewAuthenticator(authscope.Config{Mode: "gateway"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(authscope.HeaderPrincipal, "auth0|u9")
	req.Header.Set(authscope.HeaderScope, "manage:entry")
	id, err := a.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "u9", id.UserID)
	assert.Equal(t, []string{"manage:entry"}, id.Scopes)
}

func TestNewAuthenticator_Validation(t *testing.T) {
	_, err := authscope.NewAuthenticator(authscope.Config{Mode: "jwt"})
	assert.Error(t, err)
	_, err = authscope.NewAuthenticator(authscope.Config{Mode: "magic"})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	a, err := authscope.NewAuthenticator(authscope.Config{Mode: "gateway"})
	require.NoError(t, err)

	var reached bool
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	h := authscope.Middleware(a, zap.NewNop())(authscope.RequireScope("manage:project")(final))

	tests := []struct {
		name      string
		principal string
		scope     string
		status    int
		reached   bool
	}{
		{"anonymous", "", "", http.StatusUnauthorized, false},
		{"malformed principal", "justanid", "manage:project", http.StatusUnauthorized, false},
		{"missing scope", "auth0|u1", "manage:entry", http.StatusForbidden, false},
		{"allowed", "auth0|u1", "manage:project", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPost, "/projects", nil)
			if tt.principal != "" {
				req.Header.Set(authscope.HeaderPrincipal, tt.principal)
				req.Header.Set(authscope.HeaderScope, tt.scope)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.reached, reached)
		})
	}
}

func TestRequireSelf(t *testing.T) {
	a, err := authscope.NewAuthenticator(authscope.Config{Mode: "gateway"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(authscope.Middleware(a, zap.NewNop()))
	r.With(authscope.RequireSelf("user_id")).Put("/users/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		principal string
		status    int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"someone else", "auth0|u2", http.StatusForbidden},
		{"self", "auth0|u1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/users/u1", nil)
			if tt.principal != "" {
				req.Header.Set(authscope.HeaderPrincipal, tt.principal)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
