package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/gigs/domain"

	"github.com/google/uuid"
)

// Memory is an in process repo with the same atomicity as PG; one mutex stands in for row locks
type Memory struct {
	mu   sync.Mutex
	gigs map[string]domain.Gig
	now  func() time.Time

	// Fail, when set, is returned by every call; tests use it to simulate an outage
	Fail error
}

// NewMemory returns an empty repo
func NewMemory() *Memory {
	return &Memory{gigs: make(map[string]domain.Gig), now: time.Now}
}

var _ domain.Repo = (*Memory)(nil)

// Create stores an open gig
func (m *Memory) Create(_ context.Context, in domain.NewGig) (domain.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return domain.Gig{}, m.Fail
	}
	now := m.now().UTC()
	g := domain.Gig{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		State:       domain.StateOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.gigs[g.ID] = g
	return g, nil
}

// Get reads one gig
func (m *Memory) Get(_ context.Context, id string) (domain.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

// List mirrors the PG ordering: newest first, id as tie breaker
func (m *Memory) List(_ context.Context, f domain.Filter) ([]domain.Gig, int, error) {
	f = f.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, 0, m.Fail
	}

	var all []domain.Gig
	for _, g := range m.gigs {
		if f.Matches(g) {
			all = append(all, g)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if f.Offset >= total {
		return []domain.Gig{}, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return all[f.Offset:end], total, nil
}

// Connect flips open to connected under the lock
func (m *Memory) Connect(_ context.Context, id, party string) (domain.Gig, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.get(id)
	if err != nil {
		return domain.Gig{}, false, err
	}
	if g.State != domain.StateOpen || g.OwnerID == party {
		return g, false, nil
	}
	g.State = domain.StateConnected
	g.ConnectedParty = party
	g.UpdatedAt = m.now().UTC()
	m.gigs[id] = g
	return g, true, nil
}

// Close runs guard and closes the gig while holding the lock
func (m *Memory) Close(_ context.Context, id string, guard domain.Guard) (domain.Gig, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, err := m.get(id)
	if err != nil {
		return domain.Gig{}, false, err
	}
	if guard != nil {
		if err := guard(prev); err != nil {
			return domain.Gig{}, false, err
		}
	}
	if prev.State == domain.StateClosed {
		return prev, false, nil
	}
	m.close(prev)
	return prev, true, nil
}

// Delete runs guard, closes a connected gig and removes it
func (m *Memory) Delete(_ context.Context, id string, guard domain.Guard) (domain.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, err := m.get(id)
	if err != nil {
		return domain.Gig{}, err
	}
	if guard != nil {
		if err := guard(prev); err != nil {
			return domain.Gig{}, err
		}
	}
	if prev.State == domain.StateConnected {
		m.close(prev)
	}
	delete(m.gigs, id)
	return prev, nil
}

func (m *Memory) get(id string) (domain.Gig, error) {
	if m.Fail != nil {
		return domain.Gig{}, m.Fail
	}
	g, ok := m.gigs[id]
	if !ok {
		return domain.Gig{}, perr.NotFoundf("gig %s not found", id)
	}
	return g, nil
}

func (m *Memory) close(g domain.Gig) {
	now := m.now().UTC()
	g.State = domain.StateClosed
	g.LastParty = g.ConnectedParty
	g.ConnectedParty = ""
	g.UpdatedAt = now
	g.ClosedAt = &now
	m.gigs[g.ID] = g
}
