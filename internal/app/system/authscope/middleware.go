package authscope

import (
	"errors"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Middleware attaches the caller's Identity to the request context when the
// request carries usable credentials. Requests without credentials, or with
// credentials that fail verification, continue anonymously; RequireIdentity
// turns that into a 401.
func Middleware(a *Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			if err != nil {
				if !errors.Is(err, ErrNoCredentials) {
					log.Debug("credentials rejected",
						zap.String("path", r.URL.Path),
						zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity answers 401 unless an Identity is present.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromRequest(r); !ok {
			respond.Error(w, r, nil, apierr.Unauthorized(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireScope answers 401 without an identity and 403 when the identity
// lacks scope.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromRequest(r)
			if !ok {
				respond.Error(w, r, nil, apierr.Unauthorized(""))
				return
			}
			if !id.Has(scope) {
				respond.Error(w, r, nil, apierr.Forbidden("Missing required scope"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelf answers 403 unless the caller's user id equals the chi URL
// parameter param.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromRequest(r)
			if !ok {
				respond.Error(w, r, nil, apierr.Unauthorized(""))
				return
			}
			if !Owns(id.UserID, chi.URLParam(r, param)) {
				respond.Error(w, r, nil, apierr.Forbidden("You can only change your own records"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Caller returns the request's Identity, answering 401 when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id, ok := FromRequest(r)
	if !ok {
		respond.Error(w, r, nil, apierr.Unauthorized(""))
	}
	return id, ok
}
