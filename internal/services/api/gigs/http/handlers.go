// Package http provides http transport for gigs
package http

import (
	stdhttp "net/http"
	"strconv"

	"kydu/internal/modkit/httpkit"
	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/gigs/domain"
)

// Register mounts the gig routes; callers put them behind auth
func Register(r httpkit.Router, s domain.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)
	httpkit.Get(r, "/{gigID}", h.get)
	httpkit.Delete(r, "/{gigID}", h.delete)
	httpkit.Post(r, "/{gigID}", h.connect)
	httpkit.Post(r, "/{gigID}/connect", h.connect)
	httpkit.Post(r, "/{gigID}/close", h.close)
}

type handlers struct{ svc domain.Service }

// swagger:route GET /gigs Gigs list
// @Summary List gigs, newest first; closed gigs only on request
// @Tags gigs
// @Produce json
// @Param state query string false "open, connected or closed"
// @Param owner_id query string false "owner uuid"
// @Param include_closed query bool false "include closed gigs"
// @Param limit query int false "page size, max 100"
// @Param offset query int false "rows to skip"
// @Success 200 {array} domain.Gig "ok"
// @Router /gigs [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	f, err := filterFrom(r)
	if err != nil {
		return nil, err
	}
	items, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		return nil, err
	}
	f = f.Normalize()
	next := ""
	if f.Offset+len(items) < total {
		next = strconv.Itoa(f.Offset + len(items))
	}
	return httpkit.List(items, total, f.Limit, next), nil
}

// swagger:route POST /gigs Gigs create
// @Summary Post a new open gig
// @Tags gigs
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Gig"
// @Success 201 {object} domain.Gig "created"
// @Router /gigs [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	g, err := h.svc.Create(r.Context(), httpkit.MustUser(r), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(g), nil
}

// swagger:route GET /gigs/{gigID} Gigs get
// @Summary Read one gig
// @Tags gigs
// @Produce json
// @Success 200 {object} domain.Gig "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /gigs/{gigID} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "gigID"))
}

// swagger:route POST /gigs/{gigID}/connect Gigs connect
// @Summary Ask to connect to an open gig
// @Tags gigs
// @Produce json
// @Success 200 {object} domain.Gig "accepted"
// @Failure 403 {object} httpkit.Envelope "owner cannot connect"
// @Failure 409 {object} httpkit.Envelope "already connected or closed"
// @Router /gigs/{gigID}/connect [post]
func (h *handlers) connect(r *stdhttp.Request) (any, error) {
	return h.svc.Connect(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "gigID"))
}

// swagger:route POST /gigs/{gigID}/close Gigs close
// @Summary Close a gig as owner or connected party
// @Tags gigs
// @Produce json
// @Success 200 {object} domain.Gig "closed"
// @Failure 403 {object} httpkit.Envelope "not a participant"
// @Router /gigs/{gigID}/close [post]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	return h.svc.Close(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "gigID"))
}

// swagger:route DELETE /gigs/{gigID} Gigs delete
// @Summary Delete a gig; a connected gig is closed first
// @Tags gigs
// @Success 204 "deleted"
// @Failure 403 {object} httpkit.Envelope "not the owner"
// @Router /gigs/{gigID} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), httpkit.MustUser(r), httpkit.Param(r, "gigID")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func filterFrom(r *stdhttp.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{
		State:   domain.State(q.Get("state")),
		OwnerID: q.Get("owner_id"),
	}
	if v := q.Get("include_closed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, perr.WithField(perr.InvalidArgf("include_closed must be a boolean"), "include_closed")
		}
		f.IncludeClosed = b
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, perr.WithField(perr.InvalidArgf("%s must be a non negative integer", name), name)
		}
		*dst = n
	}
	return f, nil
}
