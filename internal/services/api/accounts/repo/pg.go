// Package repo stores accounts in postgres or in memory
package repo

import (
	"context"

	"kydu/internal/core/notify"
	"kydu/internal/modkit/repokit"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/store"
	"kydu/internal/services/api/accounts/domain"
)

// PG is the postgres accounts repo
type PG struct{ q repokit.Queryer }

// NewPG binds the repo to q
func NewPG(q repokit.Queryer) *PG { return &PG{q: repokit.RequireQueryer(q)} }

var _ domain.Repo = (*PG)(nil)

const userColumns = `id::text, display_name, email, coalesce(push_token, ''), created_at`

func scanUser(r store.Row) (domain.User, error) {
	var u domain.User
	err := r.Scan(&u.ID, &u.DisplayName, &u.Email, &u.PushToken, &u.CreatedAt)
	return u, err
}

// Create inserts a user; a taken email is a duplicate key
func (p *PG) Create(ctx context.Context, in domain.NewUser) (domain.User, error) {
	u, err := store.One(ctx, p.q, scanUser, `
		INSERT INTO users (display_name, email, password_hash, push_token)
		VALUES ($1, $2, $3, nullif($4, ''))
		RETURNING `+userColumns, in.DisplayName, in.Email, in.PasswordHash, in.PushToken)
	if perr.IsDuplicateKey(err) {
		return domain.User{}, perr.Wrap(err, perr.ErrorCodeDuplicateKey, "email already registered")
	}
	return u, perr.FromPostgres(err, "create user")
}

// ByEmail finds the credentials for a case folded email
func (p *PG) ByEmail(ctx context.Context, email string) (domain.Credentials, error) {
	c, err := store.One(ctx, p.q, func(r store.Row) (domain.Credentials, error) {
		var c domain.Credentials
		err := r.Scan(&c.ID, &c.DisplayName, &c.Email, &c.PushToken, &c.CreatedAt, &c.PasswordHash)
		return c, err
	}, `SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`, email)
	return c, perr.FromPostgres(err, "find user")
}

// ByID reads a profile
func (p *PG) ByID(ctx context.Context, id string) (domain.User, error) {
	u, err := store.One(ctx, p.q, scanUser, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return u, perr.FromPostgres(err, "get user")
}

// SetPushToken stores token; "" clears it
func (p *PG) SetPushToken(ctx context.Context, id, token string) error {
	err := store.ExecOne(ctx, p.q, `UPDATE users SET push_token = nullif($2, '') WHERE id = $1`, id, token)
	return perr.FromPostgres(err, "set push token")
}

// PushToken returns the device token, or "" when none is on file
func (p *PG) PushToken(ctx context.Context, id string) (string, error) {
	tok, err := store.Scalar[string](ctx, p.q, `SELECT coalesce(push_token, '') FROM users WHERE id = $1`, id)
	if err != nil {
		return "", perr.FromPostgres(err, "read push token")
	}
	return tok, nil
}

// AddAlert journals p into the user's inbox
func (p *PG) AddAlert(ctx context.Context, userID string, n notify.Payload) error {
	_, err := p.q.Exec(ctx, `
		INSERT INTO alerts (user_id, kind, gig_id, from_user_id, title, body, created_at)
		VALUES ($1, $2, nullif($3, '')::uuid, nullif($4, '')::uuid, $5, $6, $7)`,
		userID, string(n.Kind), n.GigID, n.FromUserID, n.Title, n.Body, n.At)
	return perr.FromPostgres(err, "add alert")
}

// Alerts lists the newest alerts first
func (p *PG) Alerts(ctx context.Context, userID string, limit int) ([]domain.Alert, error) {
	items, err := store.Many(ctx, p.q, func(r store.Row) (domain.Alert, error) {
		var a domain.Alert
		err := r.Scan(&a.ID, (*string)(&a.Kind), &a.GigID, &a.FromUserID, &a.Title, &a.Body, &a.CreatedAt)
		return a, err
	}, `
		SELECT id::text, kind, coalesce(gig_id::text, ''), coalesce(from_user_id::text, ''), title, body, created_at
		  FROM alerts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	return items, perr.FromPostgres(err, "list alerts")
}
