// Package service lets the two participants of a connected gig talk
package service

import (
	"context"
	"time"

	"kydu/internal/core/normalize"
	"kydu/internal/core/notify"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
	"kydu/internal/services/api/chats/domain"
	gdom "kydu/internal/services/api/gigs/domain"
)

// DefaultHistory is how many messages History returns
const DefaultHistory = 200

// Svc implements the chat workflows
type Svc struct {
	repo   domain.Repo
	gigs   domain.Gigs
	notify gdom.Notifier
	limit  int
	now    func() time.Time
}

var _ domain.Sender = (*Svc)(nil)

// New constructs the service; limit <= 0 means DefaultHistory
func New(repo domain.Repo, gigs domain.Gigs, n gdom.Notifier, limit int) *Svc {
	if repo == nil || gigs == nil || n == nil {
		panic("chats.Service requires a repo, a gigs reader and a notifier")
	}
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &Svc{repo: repo, gigs: gigs, notify: n, limit: limit, now: time.Now}
}

// Send stores a message from a participant of a connected gig and routes it
// to the other participant
func (s *Svc) Send(ctx context.Context, senderID, gigID, body string) (domain.Message, error) {
	text := normalize.Text(body)
	if text == "" {
		return domain.Message{}, perr.WithField(perr.InvalidArgf("body must not be blank"), "body")
	}
	if normalize.Exceeds(text, domain.MaxBody) {
		return domain.Message{}, perr.WithField(perr.InvalidArgf("body exceeds %d characters", domain.MaxBody), "body")
	}

	g, err := s.gigs.Get(ctx, gigID)
	if err != nil {
		return domain.Message{}, err
	}
	if !g.Participant(senderID) {
		return domain.Message{}, perr.Forbiddenf("only the gig's participants may chat")
	}
	switch g.State {
	case gdom.StateClosed:
		return domain.Message{}, perr.GigClosedf("gig %s is closed", g.ID)
	case gdom.StateOpen:
		return domain.Message{}, perr.Conflictf("gig %s has no connected party yet", g.ID)
	}

	msg, err := s.repo.Insert(ctx, g.ID, senderID, text)
	if err != nil {
		return domain.Message{}, err
	}

	to := g.Counterpart(senderID)
	p := notify.ChatMessage(g.ID, msg.ID, senderID, msg.Body, msg.CreatedAt)
	if !s.notify.Schedule(ctx, to, p) {
		logger.C(ctx).Warn().Str("gig_id", g.ID).Str("message_id", msg.ID).Msg("chat delivery dropped")
	}
	return msg, nil
}

// History lists the latest messages oldest first. Current participants may
// read, and so may anyone who wrote on the gig before it moved on.
func (s *Svc) History(ctx context.Context, userID, gigID string) ([]domain.Message, error) {
	g, err := s.gigs.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !g.Participant(userID) {
		sent, err := s.repo.HasSent(ctx, g.ID, userID)
		if err != nil {
			return nil, err
		}
		if !sent {
			return nil, perr.Forbiddenf("only the gig's participants may read its chat")
		}
	}
	return s.repo.List(ctx, g.ID, s.limit)
}
