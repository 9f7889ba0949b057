// Package http writes every response through one JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "kydu/internal/platform/net"
)

// Envelope is the response body of every endpoint
type Envelope struct {
	pnet.Wire
	Page *Page `json:"page,omitempty"`
}

// Page describes a list window
type Page struct {
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

// JSON writes v as application/json with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func write(w stdhttp.ResponseWriter, status int, wire pnet.Wire, page *Page) {
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	JSON(w, status, Envelope{Wire: wire, Page: page})
}

// RespondOK writes a 200 envelope
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	status, wire := pnet.OK(data, pnet.RequestID(r.Context()))
	write(w, status, wire, nil)
}

// RespondError classifies err and writes the error envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, wire := pnet.Error(err, pnet.RequestID(r.Context()))
	write(w, status, wire, nil)
}

// Response is what return style handlers produce
type Response struct {
	Status int
	Body   any
	Page   *Page
	Header stdhttp.Header
}

// Handle adapts a Response returning func to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status, wire := pnet.Error(err, reqID)
		write(w, status, wire, nil)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	_, wire := pnet.OK(resp.Body, reqID)
	wire.StatusCode, wire.Status = status, stdhttp.StatusText(status)
	write(w, status, wire, resp.Page)
}

// OK returns a 200
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response whose status comes from the error code
func Error(err error) Response { return Response{Body: err} }

// List returns a 200 with a page block
func List(items any, total, limit int, cursor string) Response {
	return Response{Status: stdhttp.StatusOK, Body: items, Page: &Page{Total: total, Limit: limit, Cursor: cursor}}
}
