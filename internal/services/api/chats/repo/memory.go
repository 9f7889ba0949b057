package repo

import (
	"context"
	"sync"
	"time"

	"kydu/internal/services/api/chats/domain"

	"github.com/google/uuid"
)

// Memory keeps messages in process, in insertion order
type Memory struct {
	mu    sync.RWMutex
	byGig map[string][]domain.Message
	now   func() time.Time
}

// NewMemory returns an empty repo
func NewMemory() *Memory {
	return &Memory{byGig: map[string][]domain.Message{}, now: time.Now}
}

var _ domain.Repo = (*Memory)(nil)

// Insert appends a message
func (m *Memory) Insert(_ context.Context, gigID, senderID, body string) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := domain.Message{
		ID:        uuid.NewString(),
		GigID:     gigID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: m.now().UTC(),
	}
	m.byGig[gigID] = append(m.byGig[gigID], msg)
	return msg, nil
}

// List returns the latest limit messages, oldest first
func (m *Memory) List(_ context.Context, gigID string, limit int) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.byGig[gigID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]domain.Message{}, all...), nil
}

// HasSent reports whether userID ever wrote on gigID
func (m *Memory) HasSent(_ context.Context, gigID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.byGig[gigID] {
		if msg.SenderID == userID {
			return true, nil
		}
	}
	return false, nil
}
