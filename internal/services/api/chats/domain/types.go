// Package domain holds the private messages exchanged on a connected gig
package domain

import (
	"context"
	"time"

	gdom "kydu/internal/services/api/gigs/domain"
)

// MaxBody is the longest message body accepted, in runes
const MaxBody = 4000

// Message is one chat line
type Message struct {
	ID        string    `json:"id"`
	GigID     string    `json:"gig_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SendInput is the POST body
type SendInput struct {
	Body string `json:"body" validate:"notblank,max=4000"`
}

// Repo stores messages
type Repo interface {
	Insert(ctx context.Context, gigID, senderID, body string) (Message, error)
	List(ctx context.Context, gigID string, limit int) ([]Message, error)
	HasSent(ctx context.Context, gigID, userID string) (bool, error)
}

// Gigs is what chats reads about a gig
type Gigs = gdom.Reader

// Sender is the port realtime sessions use to post a message
type Sender interface {
	Send(ctx context.Context, senderID, gigID, body string) (Message, error)
}
