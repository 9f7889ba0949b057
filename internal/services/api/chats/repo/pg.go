// Package repo stores chat messages in postgres or in memory
package repo

import (
	"context"

	"kydu/internal/modkit/repokit"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/store"
	"kydu/internal/services/api/chats/domain"
)

// PG is the postgres chats repo
type PG struct{ q repokit.Queryer }

// NewPG binds the repo to q
func NewPG(q repokit.Queryer) *PG { return &PG{q: repokit.RequireQueryer(q)} }

var _ domain.Repo = (*PG)(nil)

func scanMessage(r store.Row) (domain.Message, error) {
	var m domain.Message
	err := r.Scan(&m.ID, &m.GigID, &m.SenderID, &m.Body, &m.CreatedAt)
	return m, err
}

// Insert stores a message
func (p *PG) Insert(ctx context.Context, gigID, senderID, body string) (domain.Message, error) {
	m, err := store.One(ctx, p.q, scanMessage, `
		INSERT INTO messages (gig_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id::text, gig_id::text, sender_id::text, body, created_at`, gigID, senderID, body)
	return m, perr.FromPostgres(err, "insert message")
}

// List returns the latest limit messages, oldest first
func (p *PG) List(ctx context.Context, gigID string, limit int) ([]domain.Message, error) {
	items, err := store.Many(ctx, p.q, scanMessage, `
		SELECT id, gig_id, sender_id, body, created_at FROM (
			SELECT id::text, gig_id::text, sender_id::text, body, created_at
			  FROM messages
			 WHERE gig_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2
		) latest
		ORDER BY created_at, id`, gigID, limit)
	return items, perr.FromPostgres(err, "list messages")
}

// HasSent reports whether userID ever wrote on gigID
func (p *PG) HasSent(ctx context.Context, gigID, userID string) (bool, error) {
	ok, err := store.Scalar[bool](ctx, p.q,
		`SELECT EXISTS (SELECT 1 FROM messages WHERE gig_id = $1 AND sender_id = $2)`, gigID, userID)
	return ok, perr.FromPostgres(err, "check sender")
}
