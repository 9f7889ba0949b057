package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeAlreadyConnected, http.StatusConflict},
		{ErrorCodeGigClosed, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorWrapAndUnwrap(t *testing.T) {
	t.Parallel()

	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}

	cause := stderrs.New("dial tcp: refused")
	err := Wrap(cause, ErrorCodeUnavailable, "gig store")
	if got := err.Error(); got != "gig store: dial tcp: refused" {
		t.Fatalf("Error() = %q", got)
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("wrapped cause lost")
	}
	if Root(err) != cause {
		t.Fatal("Root should return the cause")
	}

	outer := fmt.Errorf("connect: %w", err)
	if CodeOf(outer) != ErrorCodeUnavailable {
		t.Fatalf("CodeOf through fmt wrap = %v", CodeOf(outer))
	}
	if !IsTransient(outer) {
		t.Fatal("unavailable should be transient")
	}
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatal("WrapIf(nil) should be nil")
	}
}

func TestWire(t *testing.T) {
	t.Parallel()

	w := WireFrom(AlreadyConnectedf("gig %s already has a connected party", "g1"))
	if w.Code != ErrorCodeAlreadyConnected || w.Reason != "already_connected" {
		t.Fatalf("wire = %+v", w)
	}

	w = WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}

	status, w := HTTP(WithField(New(ErrorCodeValidation, "title is required"), "title"))
	if status != http.StatusBadRequest || w.Field != "title" {
		t.Fatalf("HTTP = %d %+v", status, w)
	}
	if status, _ := HTTP(nil); status != http.StatusOK {
		t.Fatalf("HTTP(nil) = %d", status)
	}
}

func TestWithOpCopies(t *testing.T) {
	t.Parallel()

	base := Forbiddenf("not a participant")
	labelled := WithOp(base, "gigs.close")
	e, _ := As(labelled)
	if e.Op() != "gigs.close" {
		t.Fatalf("Op = %q", e.Op())
	}
	b, _ := As(base)
	if b.Op() != "" {
		t.Fatal("WithOp mutated the original")
	}

	foreign := stderrs.New("x")
	if WithOp(foreign, "y") != foreign || WithField(foreign, "z") != foreign {
		t.Fatal("foreign errors should pass through unchanged")
	}
}

func TestCodeString(t *testing.T) {
	t.Parallel()
	if ErrorCodeGigClosed.String() != "gig_closed" {
		t.Fatalf("String = %q", ErrorCodeGigClosed.String())
	}
	if ErrorCode(999).String() != "code(999)" {
		t.Fatalf("unknown String = %q", ErrorCode(999).String())
	}
}
