// Package http provides http transport for chats
package http

import (
	stdhttp "net/http"

	"kydu/internal/modkit/httpkit"
	"kydu/internal/services/api/chats/domain"
	"kydu/internal/services/api/chats/service"
)

// Register mounts the message routes under a router whose pattern carries {gigID}
func Register(r httpkit.Router, s *service.Svc) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.history)
	httpkit.PostJSON[domain.SendInput](r, "/", h.send)
}

type handlers struct{ svc *service.Svc }

// swagger:route GET /gigs/{gigID}/messages Chats history
// @Summary Messages on a gig, oldest first
// @Tags chats
// @Produce json
// @Success 200 {array} domain.Message "ok"
// @Failure 403 {object} httpkit.Envelope "not a participant"
// @Router /gigs/{gigID}/messages [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	return h.svc.History(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "gigID"))
}

// swagger:route POST /gigs/{gigID}/messages Chats send
// @Summary Send a message to the other participant
// @Tags chats
// @Accept json
// @Produce json
// @Param payload body domain.SendInput true "Message"
// @Success 201 {object} domain.Message "created"
// @Failure 409 {object} httpkit.Envelope "gig not connected"
// @Router /gigs/{gigID}/messages [post]
func (h *handlers) send(r *stdhttp.Request, in domain.SendInput) (any, error) {
	msg, err := h.svc.Send(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "gigID"), in.Body)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(msg), nil
}
