package ws

import "encoding/json"

// Frame types the transport itself understands
const (
	TypePing  = "ping"
	TypePong  = "pong"
	TypeAck   = "ack"
	TypeError = "error"
)

// Frame is one JSON text message in either direction
type Frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	GigID   string          `json:"gig_id,omitempty"`
	Body    string          `json:"body,omitempty"`
	Payload any             `json:"payload,omitempty"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// ErrorFrame answers request id with a failure
func ErrorFrame(id, code, msg string) Frame {
	return Frame{Type: TypeError, ID: id, Code: code, Error: msg}
}
