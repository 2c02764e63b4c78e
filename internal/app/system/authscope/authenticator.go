package authscope

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authentication modes.
const (
	ModeJWT     = "jwt"
	ModeGateway = "gateway"
)

// Headers forwarded by an upstream authorizer in gateway mode.
const (
	HeaderPrincipal = "X-Principal-Id"
	HeaderScope     = "X-Scope"
)

var (
	// ErrNoCredentials means the request carried no principal at all.
	ErrNoCredentials = errors.New("no credentials")
	// ErrBadCredentials means a credential was present but unusable.
	ErrBadCredentials = errors.New("invalid credentials")
)

// Claims are the bearer-token claims this service reads. The principal is
// the standard subject; scopes follow the OAuth "scope" claim convention.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Authenticator resolves the caller's Identity from a request.
type Authenticator struct {
	mode     string
	secret   []byte
	issuer   string
	audience string
}

// Config configures an Authenticator.
type Config struct {
	Mode     string // jwt | gateway
	Secret   string // HS256 key (jwt mode)
	Issuer   string // optional
	Audience string // optional
}

// NewAuthenticator validates cfg and returns an Authenticator.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeJWT
	}
	switch mode {
	case ModeJWT:
		if cfg.Secret == "" {
			return nil, fmt.Errorf("auth mode %q requires a signing secret", mode)
		}
	case ModeGateway:
	default:
		return nil, fmt.Errorf("unknown auth mode %q (want %q or %q)", cfg.Mode, ModeJWT, ModeGateway)
	}
	return &Authenticator{
		mode:     mode,
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Mode returns the configured mode.
func (a *Authenticator) Mode() string { return a.mode }

// Authenticate returns the caller's identity. ErrNoCredentials means the
// request was anonymous; ErrBadCredentials wraps any parse or verify failure.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	var principal, scope string
	switch a.mode {
	case ModeGateway:
		principal = r.Header.Get(HeaderPrincipal)
		scope = r.Header.Get(HeaderScope)
		if principal == "" {
			return Identity{}, ErrNoCredentials
		}
	default:
		raw, err := bearerToken(r)
		if err != nil {
			return Identity{}, err
		}
		claims, err := a.parse(raw)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrBadCredentials, err)
		}
		principal, scope = claims.Subject, claims.Scope
	}

	id, ok := NewIdentity(principal, scope)
	if !ok {
		return Identity{}, fmt.Errorf("%w: malformed principal", ErrBadCredentials)
	}
	return id, nil
}

func (a *Authenticator) parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrNoCredentials
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: authorization header must be \"Bearer <token>\"", ErrBadCredentials)
	}
	return strings.TrimSpace(parts[1]), nil
}

// SignToken issues an HS256 token for principal with the given scopes.
// Used by tests and local tooling.
func SignToken(secret, principal string, scopes ...string) (string, error) {
	claims := Claims{
		Scope:            strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{Subject: principal},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
