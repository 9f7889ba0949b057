// Package domain defines the delivery worker ports
package domain

import (
	"context"

	"kydu/internal/core/delivery"
	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
)

// NotifierPort schedules a delivery and returns without waiting for it
type NotifierPort interface {
	Schedule(ctx context.Context, recipientID string, p notify.Payload) bool
}

// WorkerPort runs the delivery workers until ctx ends
type WorkerPort interface {
	Run(ctx context.Context) error
}

// PresencePort is the registry realtime sessions register with
type PresencePort interface {
	Register(userID string, h presence.Handle) presence.Handle
	Unregister(userID string, h presence.Handle) bool
	Lookup(userID string) (presence.Handle, bool)
	Len() int
}

// Directory is what delivery reads about users: the device token and the
// inbox notifications are journaled to
type Directory interface {
	delivery.Tokens
	delivery.Inbox
}
