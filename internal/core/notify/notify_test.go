package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGigConnected_CarriesRequesterAndGig(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := GigConnected("g1", "Fix my sink", "u2", at)

	assert.Equal(t, KindGigConnected, p.Kind)
	assert.Equal(t, "g1", p.GigID)
	assert.Equal(t, "u2", p.FromUserID)
	assert.Contains(t, p.Body, `"Fix my sink"`)

	raw, err := p.Encode()
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "gig.connected", back["type"])
	assert.Equal(t, "u2", back["from_user_id"])
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000123).UTC()
	p := GigClosed("g1", "", "u1", "deleted", at)
	m := p.Flatten()

	assert.Equal(t, "gig.closed", m["type"])
	assert.Equal(t, "g1", m["gig_id"])
	assert.Equal(t, "u1", m["from_user_id"])
	assert.Equal(t, "deleted", m["reason"])
	assert.Equal(t, "1700000000123", m["at"])
	assert.Contains(t, p.Body, "your gig")

	p.Data["reason"] = "mutated"
	assert.Equal(t, "deleted", m["reason"], "Flatten must copy")
}

func TestChatMessage(t *testing.T) {
	t.Parallel()

	p := ChatMessage("g1", "m1", "u1", "hello", time.Time{})
	m := p.Flatten()
	assert.Equal(t, "m1", m["message_id"])
	_, hasAt := m["at"]
	assert.False(t, hasAt)
}
