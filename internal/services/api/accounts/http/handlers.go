// Package http provides http transport for accounts
package http

import (
	stdhttp "net/http"
	"strconv"

	"kydu/internal/modkit/httpkit"
	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/accounts/domain"
	"kydu/internal/services/api/accounts/service"
)

// RegisterPublic mounts signup and login
func RegisterPublic(r httpkit.Router, s *service.Svc) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.SignupInput](r, "/signup", h.signup)
	httpkit.PostJSON[domain.LoginInput](r, "/login", h.login)
}

// RegisterProtected mounts the routes that need a bearer token
func RegisterProtected(r httpkit.Router, s *service.Svc) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/profile", h.profile)
	httpkit.PutJSON[domain.PushTokenInput](r, "/push-token", h.pushToken)
}

type handlers struct{ svc *service.Svc }

// swagger:route POST /auth/signup Auth signup
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.SignupInput true "Signup"
// @Success 201 {object} domain.User "created"
// @Failure 409 {object} httpkit.Envelope "email taken"
// @Router /auth/signup [post]
func (h *handlers) signup(r *stdhttp.Request, in domain.SignupInput) (any, error) {
	u, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(u), nil
}

// swagger:route POST /auth/login Auth login
// @Summary Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "Login"
// @Success 200 {object} domain.LoginOutput "ok"
// @Failure 401 {object} httpkit.Envelope "bad credentials"
// @Router /auth/login [post]
func (h *handlers) login(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	return h.svc.Login(r.Context(), in)
}

// swagger:route GET /auth/profile Auth profile
// @Summary The caller's profile, or only their alert inbox
// @Tags auth
// @Produce json
// @Param alerts_only query bool false "return the inbox instead"
// @Success 200 {object} domain.User "ok"
// @Router /auth/profile [get]
func (h *handlers) profile(r *stdhttp.Request) (any, error) {
	uid := httpkit.MustUser(r)
	alertsOnly := false
	if v := r.URL.Query().Get("alerts_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("alerts_only must be a boolean"), "alerts_only")
		}
		alertsOnly = b
	}
	if alertsOnly {
		return h.svc.Alerts(r.Context(), uid)
	}
	return h.svc.Profile(r.Context(), uid)
}

// swagger:route PUT /auth/push-token Auth pushToken
// @Summary Replace or clear the caller's device token
// @Tags auth
// @Accept json
// @Param payload body domain.PushTokenInput true "Token"
// @Success 204 "updated"
// @Router /auth/push-token [put]
func (h *handlers) pushToken(r *stdhttp.Request, in domain.PushTokenInput) (any, error) {
	if err := h.svc.SetPushToken(r.Context(), httpkit.MustUser(r), in.PushToken); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
