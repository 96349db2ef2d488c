package ws

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promrecorder "github.com/bnema/neuroledger/internal/adapters/metrics/prometheus"
	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server, *promrecorder.Recorder) {
	t.Helper()

	recorder := promrecorder.NewRecorder()
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	opts.MetricsHandler = recorder.Handler()

	server := NewServer(application.NewDispatcher(), recorder, zerolog.Nop(), opts)
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return server, httpServer, recorder
}

func dialTest(t *testing.T, httpServer *httptest.Server) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, httpServer.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sendTest(t *testing.T, client *Client, cmd domain.Command, enc Encoding) Reply {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.Send(ctx, cmd, enc)
	require.NoError(t, err)
	return reply
}

func TestServerEnforcesAdminGate(t *testing.T) {
	t.Parallel()

	server, httpServer, recorder := newTestServer(t, Options{})
	client := dialTest(t, httpServer)

	denied := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleOperator, Scope: domain.ClusterScope(), Kind: domain.SimpleKind(domain.KindNeuralCachePurge)}
	reply := sendTest(t, client, denied, EncodingJSON)

	assert.Equal(t, denied.ID, reply.CommandID)
	assert.False(t, reply.OK)
	assert.Equal(t, "permission_denied", reply.Error)
	assert.False(t, server.State().CacheCleared)

	allowed := denied
	allowed.ID = domain.NewCommandID()
	allowed.Role = domain.RoleAdmin
	reply = sendTest(t, client, allowed, EncodingJSON)

	assert.True(t, reply.OK)
	assert.Equal(t, "neural cache purged", reply.Message)
	assert.Empty(t, reply.Error)
	assert.True(t, server.State().CacheCleared)

	assert.Equal(t, 1.0, counterValue(t, recorder, "neural_cache_purge", "permission_denied"))
	assert.Equal(t, 1.0, counterValue(t, recorder, "neural_cache_purge", "ok"))
}

func TestServerAnswersCBORFrames(t *testing.T) {
	t.Parallel()

	server, httpServer, _ := newTestServer(t, Options{})
	client := dialTest(t, httpServer)

	cmd := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleGuest, Scope: domain.NodeScope("n1"), Kind: domain.ContextExpand(1024)}
	reply := sendTest(t, client, cmd, EncodingCBOR)

	assert.True(t, reply.OK)
	assert.Equal(t, cmd.ID, reply.CommandID)
	assert.Equal(t, uint64(2048), server.State().ContextSize)
}

func TestServerReportsContextSizeGauge(t *testing.T) {
	t.Parallel()

	_, httpServer, recorder := newTestServer(t, Options{})
	client := dialTest(t, httpServer)

	cmd := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleGuest, Scope: domain.ClusterScope(), Kind: domain.ContextExpand(16)}
	sendTest(t, client, cmd, EncodingJSON)

	resp, err := http.Get(httpServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "neuro_backend_context_size 1040")
	assert.Equal(t, 1.0, counterValue(t, recorder, "context_expand", "ok"))
}

func TestServerRejectsSessionKindOutsideSessionScope(t *testing.T) {
	t.Parallel()

	server, httpServer, _ := newTestServer(t, Options{})
	client := dialTest(t, httpServer)

	cmd := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleAdmin, Scope: domain.ClusterScope(), Kind: domain.SimpleKind(domain.KindSessionArchive)}
	reply := sendTest(t, client, cmd, EncodingJSON)

	assert.False(t, reply.OK)
	assert.Equal(t, "invalid_scope", reply.Error)
	assert.Empty(t, server.State().Sessions)
}

func TestServerRateLimitsPerConnection(t *testing.T) {
	t.Parallel()

	_, httpServer, _ := newTestServer(t, Options{RateLimit: 0.001, Burst: 1})
	client := dialTest(t, httpServer)

	cmd := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleGuest, Scope: domain.CodexScope(), Kind: domain.SimpleKind(domain.KindQueryTrace)}
	first := sendTest(t, client, cmd, EncodingJSON)
	cmd.ID = domain.NewCommandID()
	second := sendTest(t, client, cmd, EncodingJSON)

	assert.True(t, first.OK)
	assert.False(t, second.OK)
	assert.Equal(t, "rate_limited", second.Error)
	assert.Equal(t, cmd.ID, second.CommandID)

	other := dialTest(t, httpServer)
	cmd.ID = domain.NewCommandID()
	assert.True(t, sendTest(t, other, cmd, EncodingJSON).OK)
}

func TestServerRateLimitCountsMalformedFrames(t *testing.T) {
	t.Parallel()

	_, httpServer, recorder := newTestServer(t, Options{RateLimit: 0.001, Burst: 1})
	conn := dialRaw(t, httpServer)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not a command`)))
	reply := readReply(t, conn)
	assert.Equal(t, "general", reply.Error)

	id := domain.NewCommandID().String()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"`+id+`","role":"guest","scope":{"type":"codex"},"kind":{"type":"query_trace"}}`)))
	reply = readReply(t, conn)
	assert.False(t, reply.OK)
	assert.Equal(t, "rate_limited", reply.Error)
	assert.Equal(t, id, reply.CommandID.String())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"role":`)))
	reply = readReply(t, conn)
	assert.Equal(t, "rate_limited", reply.Error)

	assert.Equal(t, float64(1), counterValue(t, recorder, "query_trace", "rate_limited"))
	assert.Equal(t, float64(1), counterValue(t, recorder, "unknown", "rate_limited"))
}

func TestServerChecksRoleBeforeScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		frame     string
		wantError string
	}{
		{name: "guest purge unknown scope", frame: `{"role":"guest","scope":{"type":"bogus"},"kind":{"type":"neural_cache_purge"}}`, wantError: "permission_denied"},
		{name: "operator archive session without id", frame: `{"role":"operator","scope":{"type":"session"},"kind":{"type":"session_archive"}}`, wantError: "permission_denied"},
		{name: "guest trace without scope", frame: `{"role":"guest","kind":{"type":"query_trace"}}`, wantError: "invalid_scope"},
		{name: "admin purge unknown scope", frame: `{"role":"admin","scope":{"type":"bogus"},"kind":{"type":"neural_cache_purge"}}`, wantError: "invalid_scope"},
		{name: "admin archive session without id", frame: `{"role":"admin","scope":{"type":"session"},"kind":{"type":"session_archive"}}`, wantError: "invalid_scope"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server, httpServer, _ := newTestServer(t, Options{})
			conn := dialRaw(t, httpServer)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.frame)))
			reply := readReply(t, conn)

			assert.False(t, reply.OK)
			assert.Equal(t, tc.wantError, reply.Error)
			assert.Equal(t, domain.NewBackendState(), server.State())
		})
	}
}

func TestServerCollapsesUnknownKindLabels(t *testing.T) {
	t.Parallel()

	_, httpServer, recorder := newTestServer(t, Options{})
	client := dialTest(t, httpServer)

	for _, name := range []string{"warp_drive", "hyperspace", "x1", "x2"} {
		cmd := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleAdmin, Scope: domain.ClusterScope(), Kind: domain.SimpleKind(domain.KindName(name))}
		assert.Equal(t, "general", sendTest(t, client, cmd, EncodingJSON).Error)
	}

	assert.Equal(t, float64(4), counterValue(t, recorder, "unknown", "general"))
	assert.Zero(t, counterValue(t, recorder, "warp_drive", "general"))
}

func TestServerRepliesToMalformedFrames(t *testing.T) {
	t.Parallel()

	_, httpServer, _ := newTestServer(t, Options{})

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"role":`)))
	messageType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)

	reply, err := DecodeReply(data, EncodingJSON)
	require.NoError(t, err)
	assert.False(t, reply.OK)
	assert.Equal(t, "general", reply.Error)
	assert.Contains(t, reply.Message, "malformed command")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"role":"admin","scope":{"type":"cluster"},"kind":{"type":"warp_drive"}}`)))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	reply, err = DecodeReply(data, EncodingJSON)
	require.NoError(t, err)
	assert.Equal(t, "general", reply.Error)
	assert.Contains(t, reply.Message, "warp_drive")
}

func TestServerHealthz(t *testing.T) {
	t.Parallel()

	_, httpServer, _ := newTestServer(t, Options{})

	resp, err := http.Get(httpServer.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(application.NewDispatcher(), nil, zerolog.Nop(), Options{ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	client, err := Dial(dialCtx, listener.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	ping := domain.Command{ID: domain.NewCommandID(), Role: domain.RoleGuest, Scope: domain.CodexScope(), Kind: domain.SimpleKind(domain.KindCodexValidate)}
	assert.True(t, sendTest(t, client, ping, EncodingJSON).OK)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, _, err = client.conn.ReadMessage()
	require.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"127.0.0.1:7420":           "ws://127.0.0.1:7420/ws",
		"http://localhost:7420":    "ws://localhost:7420/ws",
		"https://ledger.example":   "wss://ledger.example/ws",
		"ws://localhost:7420/cmd":  "ws://localhost:7420/cmd",
		"wss://ledger.example:443": "wss://ledger.example:443/ws",
	}
	for addr, want := range tests {
		got, err := websocketURL(addr)
		require.NoError(t, err, addr)
		assert.Equal(t, want, got, addr)
	}

	_, err := websocketURL("")
	require.Error(t, err)
	_, err = websocketURL("ftp://host")
	require.Error(t, err)
}

func dialRaw(t *testing.T, httpServer *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) Reply {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	reply, err := DecodeReply(data, EncodingJSON)
	require.NoError(t, err)
	return reply
}

func counterValue(t *testing.T, recorder *promrecorder.Recorder, kind, outcome string) float64 {
	t.Helper()

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "neuro_dispatcher_commands_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["kind"] == kind && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
