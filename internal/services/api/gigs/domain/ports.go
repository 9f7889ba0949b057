package domain

import (
	"context"

	"kydu/internal/core/notify"
)

// Guard inspects the locked gig and vetoes a change by returning an error
type Guard func(Gig) error

// Repo is durable gig storage; every mutating call is atomic on one record
type Repo interface {
	Create(ctx context.Context, in NewGig) (Gig, error)
	Get(ctx context.Context, id string) (Gig, error)
	List(ctx context.Context, f Filter) ([]Gig, int, error)

	// Connect moves id from open to connected with party in one conditional
	// update; won is false when the gig was not open or party is the owner,
	// and the returned gig is then the current record
	Connect(ctx context.Context, id, party string) (g Gig, won bool, err error)

	// Close locks id, runs guard and moves a non closed gig to closed
	// prev is the record as it was before the call
	Close(ctx context.Context, id string, guard Guard) (prev Gig, changed bool, err error)

	// Delete locks id, runs guard, force closes a connected gig and removes it
	Delete(ctx context.Context, id string, guard Guard) (prev Gig, err error)
}

// Notifier schedules a delivery without waiting for it
type Notifier interface {
	Schedule(ctx context.Context, recipientID string, p notify.Payload) bool
}

// Reader is what other modules may ask of gigs
type Reader interface {
	Get(ctx context.Context, id string) (Gig, error)
}

// Service is the gigs module's exported surface
type Service interface {
	Reader
	Create(ctx context.Context, ownerID string, in CreateInput) (Gig, error)
	List(ctx context.Context, f Filter) ([]Gig, int, error)
	Connect(ctx context.Context, requesterID, gigID string) (Gig, error)
	Close(ctx context.Context, actorID, gigID string) (Gig, error)
	Delete(ctx context.Context, actorID, gigID string) error
}

// CreateInput is the validated request body for a new gig
type CreateInput struct {
	Title       string `json:"title" validate:"notblank,max=140"`
	Description string `json:"description" validate:"max=4000"`
}
