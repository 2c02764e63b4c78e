package inputval

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
		return models.IsValidUserType(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("entrystatus", func(fl validator.FieldLevel) bool {
		return models.IsEntryStatus(fl.Field().String())
	})
}

// IsValidEmail accepts a bare RFC 5322 addr-spec (no display name) with a
// well-formed dot-atom local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
		if strings.ContainsAny(part, " \t") {
			return false
		}
	}
	return true
}

// IsValidHTTPURL accepts absolute http and https URLs with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID accepts a 24-character hex Mongo ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
