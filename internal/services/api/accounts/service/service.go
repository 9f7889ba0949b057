// Package service implements signup, login, profile and the alert inbox
package service

import (
	"context"
	"errors"

	"kydu/internal/core/normalize"
	"kydu/internal/core/notify"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
	"kydu/internal/services/api/accounts/domain"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the hashes the mobile clients were issued against
const DefaultCost = 10

// DefaultAlertLimit bounds the inbox read
const DefaultAlertLimit = 100

// minPushToken is the shortest token login will store
const minPushToken = 3

func errBadLogin() error { return perr.Unauthorizedf("email or password is invalid") }

// Options tune the service
type Options struct {
	Cost       int
	AlertLimit int
}

// Svc implements the accounts workflows
type Svc struct {
	repo   domain.Repo
	issuer domain.Issuer
	cost   int
	limit  int

	// dummy is compared when the email is unknown so both paths cost the same
	dummy []byte
}

// New constructs the service
func New(repo domain.Repo, issuer domain.Issuer, opt Options) *Svc {
	if repo == nil {
		panic("accounts.Service requires a non nil Repo")
	}
	if issuer == nil {
		panic("accounts.Service requires a non nil Issuer")
	}
	if opt.Cost < bcrypt.MinCost || opt.Cost > bcrypt.MaxCost {
		opt.Cost = DefaultCost
	}
	if opt.AlertLimit <= 0 {
		opt.AlertLimit = DefaultAlertLimit
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("kydu-dummy-password"), opt.Cost)
	return &Svc{repo: repo, issuer: issuer, cost: opt.Cost, limit: opt.AlertLimit, dummy: dummy}
}

// Signup registers a user; a taken email is a conflict
func (s *Svc) Signup(ctx context.Context, in domain.SignupInput) (domain.User, error) {
	name := normalize.Line(in.Name)
	if name == "" {
		return domain.User{}, perr.WithField(perr.InvalidArgf("name must not be blank"), "name")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "password rejected"), "password")
	}
	u, err := s.repo.Create(ctx, domain.NewUser{
		DisplayName:  name,
		Email:        normalize.Email(in.Email),
		PasswordHash: string(hash),
		PushToken:    pushToken(in.PushToken),
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return domain.User{}, perr.WithField(err, "email")
		}
		return domain.User{}, err
	}
	logger.C(ctx).Info().Str("user_id", u.ID).Msg("account registered")
	return u, nil
}

// Login checks the password, refreshes the device token and issues a bearer token
func (s *Svc) Login(ctx context.Context, in domain.LoginInput) (domain.LoginOutput, error) {
	c, err := s.repo.ByEmail(ctx, normalize.Email(in.Email))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(in.Password))
			return domain.LoginOutput{}, errBadLogin()
		}
		return domain.LoginOutput{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(in.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.C(ctx).Warn().Err(err).Str("user_id", c.ID).Msg("stored hash unusable")
		}
		return domain.LoginOutput{}, errBadLogin()
	}

	if tok := pushToken(in.PushToken); tok != "" && tok != c.PushToken {
		if err := s.repo.SetPushToken(ctx, c.ID, tok); err != nil {
			logger.C(ctx).Warn().Err(err).Str("user_id", c.ID).Msg("push token not refreshed")
		}
	}

	token, exp, err := s.issuer.Issue(c.ID)
	if err != nil {
		return domain.LoginOutput{}, err
	}
	logger.C(ctx).Info().Str("user_id", c.ID).Msg("login token issued")
	return domain.LoginOutput{Token: token, UserID: c.ID, ExpiresAt: exp}, nil
}

// Profile reads the caller's profile
func (s *Svc) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.repo.ByID(ctx, userID)
}

// Alerts reads the caller's inbox, newest first
func (s *Svc) Alerts(ctx context.Context, userID string) ([]domain.Alert, error) {
	if _, err := s.repo.ByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Alerts(ctx, userID, s.limit)
}

// SetPushToken replaces the device token; "" clears it
func (s *Svc) SetPushToken(ctx context.Context, userID, token string) error {
	return s.repo.SetPushToken(ctx, userID, normalize.Line(token))
}

// PushToken is the delivery router's token lookup
func (s *Svc) PushToken(ctx context.Context, userID string) (string, error) {
	return s.repo.PushToken(ctx, userID)
}

// Journal writes p to the recipient's inbox
func (s *Svc) Journal(ctx context.Context, userID string, p notify.Payload) error {
	return s.repo.AddAlert(ctx, userID, p)
}

// pushToken keeps tokens that look real; short values are client placeholders
func pushToken(raw string) string {
	tok := normalize.Line(raw)
	if len(tok) < minPushToken {
		return ""
	}
	return tok
}
