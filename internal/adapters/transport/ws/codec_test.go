package ws

import (
	"encoding/json"
	"testing"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	t.Parallel()

	commands := []domain.Command{
		{ID: domain.NewCommandID(), Role: domain.RoleAdmin, Scope: domain.ClusterScope(), Kind: domain.SimpleKind(domain.KindNeuralCachePurge)},
		{ID: domain.NewCommandID(), Role: domain.RoleOperator, Scope: domain.NodeScope("n1"), Kind: domain.ContextExpand(1 << 40)},
		{ID: domain.NewCommandID(), Role: domain.RoleGuest, Scope: domain.SessionScope("s-9"), Kind: domain.SimpleKind(domain.KindSessionRecover)},
		{ID: domain.NewCommandID(), Role: domain.RoleAdmin, Scope: domain.CodexScope(), Kind: domain.SimpleKind(domain.KindCodexValidate)},
	}

	for _, enc := range []Encoding{EncodingJSON, EncodingCBOR} {
		for _, cmd := range commands {
			data, err := EncodeCommand(cmd, enc)
			require.NoError(t, err)

			got, err := DecodeCommand(data, enc)
			require.NoError(t, err, "%s %s", enc, cmd.Kind.Name)
			assert.Equal(t, cmd, got, "%s %s", enc, cmd.Kind.Name)
		}
	}
}

func TestEncodeCommandWireShape(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6f1d3c2a-8d4e-4b7a-9c1e-2f3a4b5c6d7e")
	cmd := domain.Command{ID: id, Role: domain.RoleAdmin, Scope: domain.SessionScope("s1"), Kind: domain.ContextExpand(512)}

	data, err := EncodeCommand(cmd, EncodingJSON)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id.String(), decoded["id"])
	assert.Equal(t, "admin", decoded["role"])
	assert.Equal(t, map[string]any{"type": "session", "id": "s1"}, decoded["scope"])
	assert.Equal(t, map[string]any{"type": "context_expand", "amount": float64(512)}, decoded["kind"])
}

func TestDecodeCommandGeneratesMissingID(t *testing.T) {
	t.Parallel()

	got, err := DecodeCommand([]byte(`{"role":"guest","scope":{"type":"codex"},"kind":{"type":"query_trace"}}`), EncodingJSON)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, domain.RoleGuest, got.Role)
	assert.Equal(t, domain.CodexScope(), got.Scope)
}

func TestDecodeCommandPassesUnknownKindThrough(t *testing.T) {
	t.Parallel()

	got, err := DecodeCommand([]byte(`{"role":"admin","scope":{"type":"cluster"},"kind":{"type":"warp_drive"}}`), EncodingJSON)

	require.NoError(t, err)
	assert.Equal(t, domain.KindName("warp_drive"), got.Kind.Name)
}

func TestDecodeCommandLeavesScopeChecksToDispatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		want  domain.Scope
		valid bool
	}{
		{name: "unknown type", body: `{"role":"guest","scope":{"type":"Galaxy"},"kind":{"type":"neural_cache_purge"}}`, want: domain.Scope{Kind: "galaxy"}},
		{name: "session without id", body: `{"role":"operator","scope":{"type":"session"},"kind":{"type":"session_archive"}}`, want: domain.Scope{Kind: domain.ScopeSession}},
		{name: "node without name", body: `{"role":"admin","scope":{"type":"node"},"kind":{"type":"node_rebalance"}}`, want: domain.Scope{Kind: domain.ScopeNode}},
		{name: "missing scope", body: `{"role":"admin","kind":{"type":"query_trace"}}`, want: domain.Scope{}},
		{name: "node", body: `{"role":"admin","scope":{"type":"node","name":"n1"},"kind":{"type":"node_rebalance"}}`, want: domain.NodeScope("n1"), valid: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeCommand([]byte(tc.body), EncodingJSON)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Scope)
			assert.Equal(t, tc.valid, got.Scope.Valid())
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	t.Parallel()

	const id = "6f1d3c2a-8d4e-4b7a-9c1e-2f3a4b5c6d7e"

	tests := []struct {
		name    string
		body    string
		wantErr error
		keepsID bool
	}{
		{name: "not json", body: `{`, wantErr: ErrMalformedCommand},
		{name: "bad id", body: `{"id":"nope","role":"admin","scope":{"type":"cluster"},"kind":{"type":"query_trace"}}`, wantErr: ErrMalformedCommand},
		{name: "bad role", body: `{"id":"` + id + `","role":"root","scope":{"type":"cluster"},"kind":{"type":"query_trace"}}`, wantErr: ErrMalformedCommand, keepsID: true},
		{name: "missing kind keeps id", body: `{"id":"` + id + `","role":"admin","scope":{"type":"galaxy"},"kind":{}}`, wantErr: ErrMalformedCommand, keepsID: true},
		{name: "missing kind", body: `{"role":"admin","scope":{"type":"cluster"},"kind":{}}`, wantErr: ErrMalformedCommand},
		{name: "expand without amount", body: `{"role":"admin","scope":{"type":"cluster"},"kind":{"type":"context_expand"}}`, wantErr: ErrMalformedCommand},
		{name: "amount on simple kind", body: `{"role":"admin","scope":{"type":"cluster"},"kind":{"type":"query_trace","amount":5}}`, wantErr: ErrMalformedCommand},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeCommand([]byte(tc.body), EncodingJSON)

			require.ErrorIs(t, err, tc.wantErr)
			if tc.keepsID {
				assert.Equal(t, id, got.ID.String())
			}
		})
	}
}

func TestDecodeCommandRejectsDuplicateCBORKeys(t *testing.T) {
	t.Parallel()

	// {"role": "guest", "role": "admin"}
	data := []byte{0xa2, 0x64, 'r', 'o', 'l', 'e', 0x65, 'g', 'u', 'e', 's', 't', 0x64, 'r', 'o', 'l', 'e', 0x65, 'a', 'd', 'm', 'i', 'n'}

	_, err := DecodeCommand(data, EncodingCBOR)

	require.ErrorIs(t, err, ErrMalformedCommand)
}

func TestReplyRoundTrip(t *testing.T) {
	t.Parallel()

	id := domain.NewCommandID()
	replies := []Reply{
		ReplyFromResult(domain.CommandResult{CommandID: id, OK: true, Message: "neural cache purged"}),
		ReplyFromError(id, &domain.PermissionDeniedError{Role: domain.RoleGuest}),
	}

	for _, enc := range []Encoding{EncodingJSON, EncodingCBOR} {
		for _, reply := range replies {
			data, err := EncodeReply(reply, enc)
			require.NoError(t, err)

			got, err := DecodeReply(data, enc)
			require.NoError(t, err)
			assert.Equal(t, reply, got)
		}
	}

	assert.Equal(t, "permission_denied", replies[1].Error)
	assert.False(t, replies[1].OK)
}

func TestDecodeReplyRejectsBadID(t *testing.T) {
	t.Parallel()

	_, err := DecodeReply([]byte(`{"command_id":"x","ok":true,"message":"m"}`), EncodingJSON)

	assert.ErrorContains(t, err, "decode reply command id")
}
