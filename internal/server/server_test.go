package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return NewServer(bot.DefaultRegistry(), testLogger(), opts...)
}

const openingRequest = `{
	"profile": "tiered",
	"kind": "opening_call",
	"snapshot": {"hand": ["7c", "7h", "4d"], "vira": "6h", "handPoints": 1}
}`

func post(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/decide", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServerProfiles(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, WithDefaultProfile(bot.PatternedProfile))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []ProfileInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	assert.Equal(t, []ProfileInfo{
		{Name: bot.PatternedProfile, Variant: bot.VariantPattern, Default: true},
		{Name: bot.TieredProfile, Variant: bot.VariantTier},
	}, profiles)
}

func TestDecideEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := post(t, srv, openingRequest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, bot.TieredProfile, resp.Profile)
	assert.Equal(t, bot.KindOpeningCall, resp.Kind)
	require.NotNil(t, resp.Accept)
	assert.True(t, *resp.Accept)
}

func TestDecideEndpointUsesDefaultProfile(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, WithDefaultProfile(bot.PatternedProfile))

	rec := post(t, srv, `{
		"kind": "choose_card",
		"snapshot": {"hand": ["Qd", "7c", "As"], "vira": "6h", "handPoints": 1}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, bot.PatternedProfile, resp.Profile)
	require.NotNil(t, resp.Card)
	assert.Equal(t, deck.MustParseCard("As"), *resp.Card)
}

func TestDecideEndpointErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"kind":`, http.StatusBadRequest, CodeInvalidMessage},
		{"unknown field", `{"kind":"opening_call","bet":10}`, http.StatusBadRequest, CodeInvalidMessage},
		{"unknown profile", `{"profile":"ghost","kind":"opening_call","snapshot":{"hand":["4d"],"vira":"6h","handPoints":1}}`, http.StatusBadRequest, CodeUnknownProfile},
		{"unknown kind", `{"kind":"fold","snapshot":{"hand":["4d"],"vira":"6h","handPoints":1}}`, http.StatusBadRequest, CodeUnknownKind},
		{"card outside the deck", `{"kind":"choose_card","snapshot":{"hand":["9d"],"vira":"6h","handPoints":1}}`, http.StatusUnprocessableEntity, CodeInvalidSnapshot},
		{"too many rounds", `{"kind":"choose_card","snapshot":{"hand":["4d"],"vira":"6h","rounds":["won","lost","drew"],"handPoints":1}}`, http.StatusUnprocessableEntity, CodeInvalidSnapshot},
		{"empty hand", `{"kind":"choose_card","snapshot":{"hand":[],"vira":"6h","handPoints":1}}`, http.StatusUnprocessableEntity, CodeInvalidSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			rec := post(t, srv, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var data ErrorData
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
			assert.Equal(t, tt.code, data.Code)
			assert.Equal(t, 1, srv.Stats().Snapshot().Errors[tt.code])
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	srv := newTestServer(t, WithClock(clock))

	for range 3 {
		require.Equal(t, http.StatusOK, post(t, srv, openingRequest).Code)
	}
	require.Equal(t, http.StatusOK, post(t, srv, `{
		"profile": "patterned",
		"kind": "raise_response",
		"snapshot": {"hand": ["7c", "3s", "Qd"], "vira": "6h", "handPoints": 1}
	}`).Code)
	post(t, srv, `{"profile":"ghost","kind":"opening_call","snapshot":{"hand":["4d"],"vira":"6h","handPoints":1}}`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	clock.Advance(90 * time.Second).MustWait(ctx)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Decisions)
	assert.Equal(t, 3, stats.ByKind[string(bot.KindOpeningCall)])
	assert.Equal(t, 1, stats.ByKind[string(bot.KindRaiseResponse)])
	assert.Equal(t, 3, stats.ByProfile[bot.TieredProfile])
	assert.Equal(t, 1, stats.Replies[bot.ReRaise.String()])
	assert.Equal(t, 1, stats.Errors[CodeUnknownProfile])
	assert.InDelta(t, 90, stats.UptimeSeconds, 0.001)
}

func dial(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn, func() {
		_ = conn.Close()
		ts.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketDecide(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn, closeAll := dial(t, srv)
	defer closeAll()

	welcome := readMessage(t, conn)
	require.Equal(t, MessageTypeWelcome, welcome.Type)
	var hello WelcomeData
	require.NoError(t, json.Unmarshal(welcome.Data, &hello))
	assert.NotEmpty(t, hello.ConnectionID)
	assert.Equal(t, bot.TieredProfile, hello.DefaultProfile)
	assert.Equal(t, []string{bot.PatternedProfile, bot.TieredProfile}, hello.Profiles)

	require.NoError(t, conn.WriteJSON(Message{
		Type:      MessageTypeDecide,
		Data:      json.RawMessage(openingRequest),
		RequestID: "req-1",
	}))

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeDecision, msg.Type, string(msg.Data))
	assert.Equal(t, "req-1", msg.RequestID)

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	require.NotNil(t, resp.Accept)
	assert.True(t, *resp.Accept)
	assert.Equal(t, 1, srv.ConnectionCount())
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn, closeAll := dial(t, srv)
	defer closeAll()
	readMessage(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(Message{Type: "shuffle", RequestID: "a"}))
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, CodeUnknownType, data.Code)
	assert.Equal(t, "a", msg.RequestID)

	require.NoError(t, conn.WriteJSON(Message{
		Type:      MessageTypeDecide,
		Data:      json.RawMessage(`{"kind":"choose_card","snapshot":{"hand":["4d","4d"],"vira":"6h","handPoints":1}}`),
		RequestID: "b",
	}))
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, CodeInvalidSnapshot, data.Code)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing, RequestID: "c"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypePong, msg.Type)
	assert.Equal(t, "c", msg.RequestID)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
