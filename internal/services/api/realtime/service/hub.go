// Package service connects realtime sessions to presence and chat
package service

import (
	"context"

	"kydu/internal/adapters/realtime/ws"
	"kydu/internal/core/presence"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
	cdom "kydu/internal/services/api/chats/domain"
	ddom "kydu/internal/services/delivery/domain"
)

// TypeChatSend asks the server to post a chat message
const TypeChatSend = "chat.send"

// CloseSuperseded is the close code a session gets when a newer one replaces it
const CloseSuperseded = 4000

// Conn is the session surface the hub drives
type Conn interface {
	presence.Handle
	UserID() string
	Send(ctx context.Context, f ws.Frame) error
	Close(code int, reason string)
}

// Hub implements the open, close and message hooks
type Hub struct {
	presence ddom.PresencePort
	chats    cdom.Sender
}

// New builds a hub; chats may be nil, in which case chat.send is refused
func New(p ddom.PresencePort, chats cdom.Sender) *Hub {
	if p == nil {
		panic("realtime hub requires a presence registry")
	}
	return &Hub{presence: p, chats: chats}
}

// Open registers c and closes whatever session it replaced
func (h *Hub) Open(c Conn) {
	prev := h.presence.Register(c.UserID(), c)
	logger.Named("realtime").Debug().Str("user_id", c.UserID()).Str("session_id", c.ID()).Msg("session open")
	if prev == nil {
		return
	}
	if old, ok := prev.(interface{ Close(int, string) }); ok {
		old.Close(CloseSuperseded, "superseded")
	}
}

// Close unregisters c unless a newer session already took its place
func (h *Hub) Close(c Conn) {
	h.presence.Unregister(c.UserID(), c)
	logger.Named("realtime").Debug().Str("user_id", c.UserID()).Str("session_id", c.ID()).Msg("session closed")
}

// Message routes one inbound frame; the transport has already answered pings
func (h *Hub) Message(ctx context.Context, c Conn, f ws.Frame) {
	switch f.Type {
	case TypeChatSend:
		h.chatSend(ctx, c, f)
	default:
		_ = c.Send(ctx, ws.ErrorFrame(f.ID, "unknown_type", "unsupported frame type "+f.Type))
	}
}

func (h *Hub) chatSend(ctx context.Context, c Conn, f ws.Frame) {
	if h.chats == nil {
		_ = c.Send(ctx, ws.ErrorFrame(f.ID, "unavailable", "chat is not enabled"))
		return
	}
	msg, err := h.chats.Send(ctx, c.UserID(), f.GigID, f.Body)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Str("gig_id", f.GigID).Msg("chat.send refused")
		_ = c.Send(ctx, ws.ErrorFrame(f.ID, perr.CodeOf(err).String(), perr.WireFrom(err).Message))
		return
	}
	_ = c.Send(ctx, ws.Frame{Type: ws.TypeAck, ID: f.ID, GigID: msg.GigID, Payload: msg})
}

// compile time check that the websocket session satisfies Conn
var _ Conn = (*ws.Session)(nil)
