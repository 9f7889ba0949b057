package net_test

import (
	"errors"
	"net/http"
	"testing"

	perr "kydu/internal/platform/errors"
	pnet "kydu/internal/platform/net"
)

func TestSuccessEnvelopes(t *testing.T) {
	t.Parallel()

	status, w := pnet.OK(map[string]int{"x": 1}, "r1")
	if status != http.StatusOK || w.Status != "OK" || w.RequestID != "r1" || w.Data == nil {
		t.Fatalf("OK = %d %+v", status, w)
	}
	if status, w = pnet.Created("gig", "r2"); status != http.StatusCreated || w.StatusCode != http.StatusCreated {
		t.Fatalf("Created = %d %+v", status, w)
	}
	if status, w = pnet.NoContent("r3"); status != http.StatusNoContent || w.Data != nil {
		t.Fatalf("NoContent = %d %+v", status, w)
	}
}

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()

	status, w := pnet.Error(perr.GigClosedf("gig is closed"), "r4")
	if status != http.StatusConflict {
		t.Fatalf("status = %d", status)
	}
	if w.Code != perr.ErrorCodeGigClosed || w.Reason != "gig_closed" || w.Error != "gig is closed" {
		t.Fatalf("wire = %+v", w)
	}

	status, w = pnet.Error(errors.New("boom"), "r5")
	if status != http.StatusInternalServerError || w.Code != perr.ErrorCodeUnknown {
		t.Fatalf("foreign = %d %+v", status, w)
	}

	if status, _ = pnet.Error(nil, ""); status != http.StatusOK {
		t.Fatalf("nil = %d", status)
	}
}
