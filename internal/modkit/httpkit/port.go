package httpkit

import (
	"net/http"

	"kydu/internal/platform/auth"
	perrs "kydu/internal/platform/errors"
)

// TokenFunc resolves a bearer credential to a user id
type TokenFunc func(token string) (userID string, err error)

// Port implements middleware.AuthPort on top of a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse reads the credential from the Authorization header or the token
// query parameter; every failure is unauthorized
func (p *Port) Parse(r *http.Request) (string, error) {
	raw := auth.Credential(r)
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p == nil || p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	uid, err := p.parse(raw)
	if err != nil || uid == "" {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, nil
}
