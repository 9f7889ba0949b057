package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func header(name string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set(name, "1")
			next.ServeHTTP(w, r)
		})
	}
}

func TestAdaptChiRoutesAndParams(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())
	r.Use(header("X-Root"))
	r.Route("/gigs", func(g Router) {
		g.Get("/{gigID}", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			_, _ = w.Write([]byte(Param(req, "gigID")))
		})
		g.With(header("X-Guarded")).Delete("/{gigID}", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
			w.WriteHeader(stdhttp.StatusNoContent)
		})
	})
	r.Group(func(g Router) {
		g.Use(header("X-Group"))
		g.Put("/me", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(202) })
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/gigs/g-42", nil))
	if rec.Body.String() != "g-42" || rec.Header().Get("X-Root") != "1" {
		t.Fatalf("get = %q headers=%v", rec.Body.String(), rec.Header())
	}
	if rec.Header().Get("X-Guarded") != "" {
		t.Fatal("With middleware leaked to sibling route")
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodDelete, "/gigs/g-42", nil))
	if rec.Code != stdhttp.StatusNoContent || rec.Header().Get("X-Guarded") != "1" {
		t.Fatalf("delete = %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodPut, "/me", nil))
	if rec.Code != 202 || rec.Header().Get("X-Group") != "1" {
		t.Fatalf("group = %d %v", rec.Code, rec.Header())
	}
}
