// Package domain holds the gig model, its state machine and the ports around it
package domain

import "time"

// State is where a gig is in its lifecycle
type State string

const (
	// StateOpen accepts connect requests
	StateOpen State = "open"
	// StateConnected has exactly one connected party
	StateConnected State = "connected"
	// StateClosed is terminal
	StateClosed State = "closed"
)

// Valid reports whether s is a known state
func (s State) Valid() bool {
	switch s {
	case StateOpen, StateConnected, StateClosed:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an edge of the state machine
func CanTransition(from, to State) bool {
	switch from {
	case StateOpen:
		return to == StateConnected || to == StateClosed
	case StateConnected:
		return to == StateClosed
	}
	return false
}

// Gig is a posted opportunity
type Gig struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	State          State      `json:"state"`
	ConnectedParty string     `json:"connected_party,omitempty"`
	LastParty      string     `json:"last_party,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// Consistent checks the record invariants: a party exists iff the gig is
// connected, the owner is never the party, and only a closed gig remembers
// the party it had when it closed
func (g Gig) Consistent() bool {
	hasParty := g.ConnectedParty != ""
	if hasParty != (g.State == StateConnected) {
		return false
	}
	if g.LastParty != "" && (g.State != StateClosed || g.LastParty == g.OwnerID) {
		return false
	}
	return !hasParty || g.ConnectedParty != g.OwnerID
}

// Participant reports whether userID may act on the gig as owner or party
func (g Gig) Participant(userID string) bool {
	if userID == "" {
		return false
	}
	return userID == g.OwnerID || userID == g.ConnectedParty
}

// MayClose reports whether userID may close g; the party a closed gig had
// keeps that right so its retries stay no-ops
func (g Gig) MayClose(userID string) bool {
	if g.Participant(userID) {
		return true
	}
	return userID != "" && g.State == StateClosed && userID == g.LastParty
}

// Counterpart returns the other participant, or "" when there is none
func (g Gig) Counterpart(userID string) string {
	switch userID {
	case g.OwnerID:
		return g.ConnectedParty
	case g.ConnectedParty:
		return g.OwnerID
	}
	return ""
}

// NewGig is the owner supplied part of a gig
type NewGig struct {
	OwnerID     string
	Title       string
	Description string
}

// Filter narrows List
type Filter struct {
	State         State
	OwnerID       string
	IncludeClosed bool
	Limit         int
	Offset        int
}

// list window bounds
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Normalize clamps the window
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Matches applies the filter to one gig; closed gigs only match when asked for
func (f Filter) Matches(g Gig) bool {
	if f.State != "" && g.State != f.State {
		return false
	}
	if f.State == "" && !f.IncludeClosed && g.State == StateClosed {
		return false
	}
	if f.OwnerID != "" && g.OwnerID != f.OwnerID {
		return false
	}
	return true
}
