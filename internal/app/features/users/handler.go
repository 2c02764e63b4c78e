// internal/app/features/users/handler.go
package users

import (
	usersvc "github.com/dalemusser/projecthub/internal/app/services/users"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"go.uber.org/zap"
)

// Handler serves user profiles and portfolios.
type Handler struct {
	Users  *usersvc.Service
	Scopes authscope.Scopes
	Log    *zap.Logger
}

func NewHandler(svc *usersvc.Service, scopes authscope.Scopes, logger *zap.Logger) *Handler {
	return &Handler{Users: svc, Scopes: scopes, Log: logger}
}
