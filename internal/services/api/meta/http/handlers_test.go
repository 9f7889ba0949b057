package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	phttp "kydu/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type sessions int

func (s sessions) Len() int { return int(s) }

func get(t *testing.T, d Deps, path string) (int, ReadyResponse) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	var env struct {
		Data ReadyResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env.Data
}

func TestReady(t *testing.T) {
	d := Deps{ServiceName: "kydu-api", StartedAt: time.Now(), PG: pinger{}, Sessions: sessions(3)}
	code, body := get(t, d, "/ready")
	assert.Equal(t, stdhttp.StatusOK, code)
	assert.Equal(t, "ok", body.Status, "a skipped clickhouse is fine")
	assert.Equal(t, 3, body.Sessions)

	d.PG = pinger{err: errors.New("refused")}
	code, body = get(t, d, "/ready")
	assert.Equal(t, stdhttp.StatusServiceUnavailable, code)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "refused", body.Checks[0].Error)
}

func TestHealth(t *testing.T) {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), Deps{ServiceName: "kydu-api", StartedAt: time.Now()})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"kydu-api"`)
}
