// Package notify defines the payloads delivered to users over a live session or push
package notify

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind names what happened
type Kind string

const (
	// KindGigConnected tells an owner someone connected to their gig
	KindGigConnected Kind = "gig.connected"
	// KindGigClosed tells the connected party the gig was closed or deleted
	KindGigClosed Kind = "gig.closed"
	// KindChatMessage carries a private message between gig participants
	KindChatMessage Kind = "chat.message"
)

// Payload is what the delivery router moves; the same shape goes over the
// websocket and into the push data block
type Payload struct {
	Kind       Kind              `json:"type"`
	GigID      string            `json:"gig_id"`
	FromUserID string            `json:"from_user_id,omitempty"`
	Title      string            `json:"title,omitempty"`
	Body       string            `json:"body,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	At         time.Time         `json:"at"`
}

// GigConnected builds the owner notification for an accepted connect
func GigConnected(gigID, gigTitle, requesterID string, at time.Time) Payload {
	return Payload{
		Kind:       KindGigConnected,
		GigID:      gigID,
		FromUserID: requesterID,
		Title:      "New connection",
		Body:       "Someone connected to " + quote(gigTitle),
		At:         at,
	}
}

// GigClosed builds the notification sent to the connected party; reason is
// "closed" or "deleted"
func GigClosed(gigID, gigTitle, actorID, reason string, at time.Time) Payload {
	return Payload{
		Kind:       KindGigClosed,
		GigID:      gigID,
		FromUserID: actorID,
		Title:      "Gig closed",
		Body:       quote(gigTitle) + " was " + reason,
		Data:       map[string]string{"reason": reason},
		At:         at,
	}
}

// ChatMessage builds the counterpart notification for a stored message
func ChatMessage(gigID, messageID, senderID, body string, at time.Time) Payload {
	return Payload{
		Kind:       KindChatMessage,
		GigID:      gigID,
		FromUserID: senderID,
		Title:      "New message",
		Body:       body,
		Data:       map[string]string{"message_id": messageID},
		At:         at,
	}
}

// Flatten renders p as the string map push providers accept
func (p Payload) Flatten() map[string]string {
	out := make(map[string]string, len(p.Data)+4)
	for k, v := range p.Data {
		out[k] = v
	}
	out["type"] = string(p.Kind)
	out["gig_id"] = p.GigID
	if p.FromUserID != "" {
		out["from_user_id"] = p.FromUserID
	}
	if !p.At.IsZero() {
		out["at"] = strconv.FormatInt(p.At.UnixMilli(), 10)
	}
	return out
}

// Encode marshals p for the wire
func (p Payload) Encode() ([]byte, error) { return json.Marshal(p) }

func quote(s string) string {
	if s == "" {
		return "your gig"
	}
	return strconv.Quote(s)
}
