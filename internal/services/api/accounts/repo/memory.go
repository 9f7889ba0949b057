package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kydu/internal/core/notify"
	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/accounts/domain"

	"github.com/google/uuid"
)

// Memory keeps accounts in process
type Memory struct {
	mu      sync.RWMutex
	users   map[string]domain.Credentials
	byEmail map[string]string
	alerts  map[string][]domain.Alert
	now     func() time.Time
}

// NewMemory returns an empty repo
func NewMemory() *Memory {
	return &Memory{
		users:   map[string]domain.Credentials{},
		byEmail: map[string]string{},
		alerts:  map[string][]domain.Alert{},
		now:     time.Now,
	}
}

var _ domain.Repo = (*Memory)(nil)

// Create stores a user unless the email is taken
func (m *Memory) Create(_ context.Context, in domain.NewUser) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(in.Email)
	if _, ok := m.byEmail[key]; ok {
		return domain.User{}, perr.Newf(perr.ErrorCodeDuplicateKey, "email already registered")
	}
	c := domain.Credentials{
		User: domain.User{
			ID:          uuid.NewString(),
			DisplayName: in.DisplayName,
			Email:       in.Email,
			PushToken:   in.PushToken,
			CreatedAt:   m.now().UTC(),
		},
		PasswordHash: in.PasswordHash,
	}
	m.users[c.ID] = c
	m.byEmail[key] = c.ID
	return c.User, nil
}

// ByEmail finds credentials
func (m *Memory) ByEmail(_ context.Context, email string) (domain.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.Credentials{}, perr.NotFoundf("user not found")
	}
	return m.users[id], nil
}

// ByID reads a profile
func (m *Memory) ByID(_ context.Context, id string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.users[id]
	if !ok {
		return domain.User{}, perr.NotFoundf("user not found")
	}
	return c.User, nil
}

// SetPushToken stores token
func (m *Memory) SetPushToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.users[id]
	if !ok {
		return perr.NotFoundf("user not found")
	}
	c.PushToken = token
	m.users[id] = c
	return nil
}

// PushToken reads the device token
func (m *Memory) PushToken(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.users[id]
	if !ok {
		return "", perr.NotFoundf("user not found")
	}
	return c.PushToken, nil
}

// AddAlert journals a notification
func (m *Memory) AddAlert(_ context.Context, userID string, p notify.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return perr.NotFoundf("user not found")
	}
	at := p.At
	if at.IsZero() {
		at = m.now()
	}
	m.alerts[userID] = append(m.alerts[userID], domain.Alert{
		ID:         uuid.NewString(),
		Kind:       p.Kind,
		GigID:      p.GigID,
		FromUserID: p.FromUserID,
		Title:      p.Title,
		Body:       p.Body,
		CreatedAt:  at.UTC(),
	})
	return nil
}

// Alerts lists the newest first
func (m *Memory) Alerts(_ context.Context, userID string, limit int) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]domain.Alert(nil), m.alerts[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
