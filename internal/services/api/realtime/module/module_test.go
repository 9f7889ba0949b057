package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kydu/internal/adapters/realtime/ws"
	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
	modkit "kydu/internal/modkit"
	"kydu/internal/platform/auth"
	"kydu/internal/platform/config"
	phttp "kydu/internal/platform/net/http"
	kit "kydu/internal/platform/testkit"
	cdom "kydu/internal/services/api/chats/domain"
)

type echoSender struct{}

func (echoSender) Send(_ context.Context, senderID, gigID, body string) (cdom.Message, error) {
	return cdom.Message{ID: "m1", GigID: gigID, SenderID: senderID, Body: body, CreatedAt: time.Now().UTC()}, nil
}

func TestRealtimeEndToEnd(t *testing.T) {
	tokens := auth.New(strings.Repeat("s", 32), time.Hour, "kydu")
	reg := presence.New()
	deps := modkit.Deps{Cfg: config.New().Prefix("RTTEST_"), Tokens: tokens}
	m := New(deps, modkit.WithPorts(Ports{Presence: reg, Chats: echoSender{}}))

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"

	// no token, no upgrade
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, _, err := tokens.Issue("u1")
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.NoError(t, err)
	defer conn.Close()

	kit.Eventually(t, 2*time.Second, func() bool { return reg.Len() == 1 }, "session registered")

	h, ok := reg.Lookup("u1")
	require.True(t, ok)
	require.NoError(t, h.Relay(context.Background(), notify.Payload{Kind: notify.KindGigClosed, GigID: "g1"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got map[string]any
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, string(notify.KindGigClosed), got["type"])

	require.NoError(t, conn.WriteJSON(ws.Frame{Type: "chat.send", ID: "r1", GigID: "g1", Body: "hello"}))
	var ack ws.Frame
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, ws.TypeAck, ack.Type)
	assert.Equal(t, "r1", ack.ID)

	exp, ok := m.Ports().(Exports)
	require.True(t, ok)
	assert.Equal(t, 1, exp.Transport.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, exp.Transport.Shutdown(ctx))
	kit.Eventually(t, 2*time.Second, func() bool { return reg.Len() == 0 }, "session unregistered")
}

func TestNewRequiresPresence(t *testing.T) {
	kit.MustPanic(t, func() {
		New(modkit.Deps{Cfg: config.New().Prefix("RTTEST_")})
	})
}
