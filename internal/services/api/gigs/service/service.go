// Package service holds the gig lifecycle and connection workflows
package service

import (
	"context"
	"time"

	"kydu/internal/core/normalize"
	"kydu/internal/core/notify"
	"kydu/internal/platform/logger"
	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/gigs/domain"

	"github.com/google/uuid"
)

// connect results as they appear on the metrics label
const (
	ResultAccepted         = "accepted"
	ResultForbidden        = "forbidden"
	ResultNotFound         = "not_found"
	ResultAlreadyConnected = "already_connected"
	ResultClosed           = "closed"
	ResultError            = "error"
)

// close reasons carried to the notified party
const (
	ReasonClosed  = "closed"
	ReasonDeleted = "deleted"
)

// ConnectRecorder counts connect attempts by result
type ConnectRecorder interface {
	RecordConnect(result string)
}

// Options are the optional collaborators of Svc
type Options struct {
	Metrics ConnectRecorder
	Clock   func() time.Time
}

// Svc implements domain.Service
type Svc struct {
	repo    domain.Repo
	notify  domain.Notifier
	metrics ConnectRecorder
	now     func() time.Time
}

var _ domain.Service = (*Svc)(nil)

// New constructs the service
func New(repo domain.Repo, n domain.Notifier, opt Options) *Svc {
	if repo == nil {
		panic("gigs.Service requires a non nil Repo")
	}
	if n == nil {
		panic("gigs.Service requires a non nil Notifier")
	}
	s := &Svc{repo: repo, notify: n, metrics: opt.Metrics, now: opt.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create posts a new open gig for ownerID
func (s *Svc) Create(ctx context.Context, ownerID string, in domain.CreateInput) (domain.Gig, error) {
	title := normalize.Line(in.Title)
	if title == "" {
		return domain.Gig{}, perr.WithField(perr.InvalidArgf("title must not be blank"), "title")
	}
	g, err := s.repo.Create(ctx, domain.NewGig{
		OwnerID:     ownerID,
		Title:       title,
		Description: normalize.Text(in.Description),
	})
	if err != nil {
		return domain.Gig{}, err
	}
	logger.C(ctx).Info().Str("gig_id", g.ID).Msg("gig created")
	return g, nil
}

// Get reads one gig; ids that are not uuids are simply not found
func (s *Svc) Get(ctx context.Context, id string) (domain.Gig, error) {
	if err := checkID(id); err != nil {
		return domain.Gig{}, err
	}
	return s.repo.Get(ctx, id)
}

// List pages through gigs; closed ones are hidden unless asked for
func (s *Svc) List(ctx context.Context, f domain.Filter) ([]domain.Gig, int, error) {
	if f.State != "" && !f.State.Valid() {
		return nil, 0, perr.WithField(perr.InvalidArgf("unknown state %q", f.State), "state")
	}
	if f.OwnerID != "" {
		if _, err := uuid.Parse(f.OwnerID); err != nil {
			return nil, 0, perr.WithField(perr.InvalidArgf("owner_id must be a uuid"), "owner_id")
		}
	}
	return s.repo.List(ctx, f)
}

// Connect arbitrates a request for gigID. Exactly one concurrent requester
// wins; the owner is told without the caller waiting on delivery.
func (s *Svc) Connect(ctx context.Context, requesterID, gigID string) (domain.Gig, error) {
	g, err := s.connect(ctx, requesterID, gigID)
	s.record(err)
	if err != nil {
		return domain.Gig{}, err
	}

	p := notify.GigConnected(g.ID, g.Title, requesterID, s.now())
	if !s.notify.Schedule(ctx, g.OwnerID, p) {
		logger.C(ctx).Warn().Str("gig_id", g.ID).Msg("connect notification dropped")
	}
	logger.C(ctx).Info().Str("gig_id", g.ID).Str("party", requesterID).Msg("gig connected")
	return g, nil
}

func (s *Svc) connect(ctx context.Context, requesterID, gigID string) (domain.Gig, error) {
	if err := checkID(gigID); err != nil {
		return domain.Gig{}, err
	}
	g, won, err := s.repo.Connect(ctx, gigID, requesterID)
	if err != nil {
		return domain.Gig{}, err
	}
	if won {
		return g, nil
	}
	switch {
	case g.OwnerID == requesterID:
		return domain.Gig{}, perr.Forbiddenf("owners cannot connect to their own gig")
	case g.State == domain.StateConnected:
		return domain.Gig{}, perr.AlreadyConnectedf("gig %s is already connected", g.ID)
	case g.State == domain.StateClosed:
		return domain.Gig{}, perr.GigClosedf("gig %s is closed", g.ID)
	}
	// not won while still open means the row changed under us; treat as contention
	return domain.Gig{}, perr.Unavailablef("gig %s changed during connect", g.ID)
}

func (s *Svc) record(err error) {
	if s.metrics == nil {
		return
	}
	result := ResultAccepted
	if err != nil {
		switch perr.CodeOf(err) {
		case perr.ErrorCodeForbidden:
			result = ResultForbidden
		case perr.ErrorCodeNotFound:
			result = ResultNotFound
		case perr.ErrorCodeAlreadyConnected:
			result = ResultAlreadyConnected
		case perr.ErrorCodeGigClosed:
			result = ResultClosed
		default:
			result = ResultError
		}
	}
	s.metrics.RecordConnect(result)
}

// Close ends gigID for the owner or the connected party. A second close is
// a no-op: nothing changes and nobody is notified.
func (s *Svc) Close(ctx context.Context, actorID, gigID string) (domain.Gig, error) {
	if err := checkID(gigID); err != nil {
		return domain.Gig{}, err
	}
	prev, changed, err := s.repo.Close(ctx, gigID, participant(actorID))
	if err != nil {
		return domain.Gig{}, err
	}

	closed := prev
	if changed {
		now := s.now().UTC()
		closed.State = domain.StateClosed
		closed.LastParty = prev.ConnectedParty
		closed.ConnectedParty = ""
		closed.UpdatedAt = now
		closed.ClosedAt = &now
		s.tellClosed(ctx, prev, actorID, ReasonClosed)
		logger.C(ctx).Info().Str("gig_id", gigID).Msg("gig closed")
	}
	return closed, nil
}

// Delete removes gigID; only its owner may. A connected gig is closed first
// and its party told the gig is gone.
func (s *Svc) Delete(ctx context.Context, actorID, gigID string) error {
	if err := checkID(gigID); err != nil {
		return err
	}
	prev, err := s.repo.Delete(ctx, gigID, func(g domain.Gig) error {
		if g.OwnerID != actorID {
			return perr.Forbiddenf("only the owner may delete a gig")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if prev.State == domain.StateConnected {
		s.tellClosed(ctx, prev, actorID, ReasonDeleted)
	}
	logger.C(ctx).Info().Str("gig_id", gigID).Msg("gig deleted")
	return nil
}

// tellClosed notifies the connected party, and the owner too when the party
// was the one who closed
func (s *Svc) tellClosed(ctx context.Context, prev domain.Gig, actorID, reason string) {
	if prev.ConnectedParty == "" {
		return
	}
	p := notify.GigClosed(prev.ID, prev.Title, actorID, reason, s.now())
	to := []string{prev.ConnectedParty}
	if actorID == prev.ConnectedParty {
		to = append(to, prev.OwnerID)
	}
	for _, uid := range to {
		if !s.notify.Schedule(ctx, uid, p) {
			logger.C(ctx).Warn().Str("gig_id", prev.ID).Str("recipient", uid).Msg("close notification dropped")
		}
	}
}

func participant(actorID string) domain.Guard {
	return func(g domain.Gig) error {
		if !g.MayClose(actorID) {
			return perr.Forbiddenf("only the owner or the connected party may close a gig")
		}
		return nil
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return perr.NotFoundf("gig %s not found", id)
	}
	return nil
}
