package internal

import (
	"collab-lab/runtime"
	"collab-lab/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

func startGateway(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.Default()
	registry := runtime.NewRegistry()
	store := runtime.NewStore()
	router := runtime.NewRouter(log, registry, store, time.Second)
	coordinator := runtime.NewCoordinator(log, registry, store, router, 64)

	gateway := NewWSGateway(log, services.NewCollabService(coordinator), 16, time.Second)
	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, ctx context.Context, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	conn.SetReadLimit(1 << 20)
	return conn
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) map[string]any {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestWSGateway_JoinAndUpdateBetweenPeers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	server := startGateway(t)

	alice := dial(t, ctx, server.URL)
	bob := dial(t, ctx, server.URL)

	// Alice joins and receives the empty snapshot
	err := alice.Write(ctx, websocket.MessageText,
		[]byte(`{"type":"join-document","documentId":"doc1"}`))
	req.NoError(err)
	frame := readFrame(t, ctx, alice)
	req.Equal("document-content", frame["type"])
	req.Equal("", frame["content"])

	// Bob joins: his snapshot lists both users, Alice sees the arrival
	err = bob.Write(ctx, websocket.MessageText,
		[]byte(`{"type":"join-document","documentId":"doc1"}`))
	req.NoError(err)
	frame = readFrame(t, ctx, bob)
	req.Equal("document-content", frame["type"])
	req.Len(frame["users"], 2)

	frame = readFrame(t, ctx, alice)
	req.Equal("user-joined", frame["type"])
	bobUser := frame["user"].(map[string]any)
	bobID := bobUser["id"]
	bobName := bobUser["displayName"]

	// Bob's update reaches Alice verbatim, with his display name
	err = bob.Write(ctx, websocket.MessageText,
		[]byte(`{"type":"document-update","documentId":"doc1","content":"hello"}`))
	req.NoError(err)
	frame = readFrame(t, ctx, alice)
	req.Equal("document-update", frame["type"])
	req.Equal("hello", frame["content"])
	req.Equal(bobName, frame["updatedBy"])

	// Bob closing the socket surfaces as user-left on Alice's side
	req.NoError(bob.Close(websocket.StatusNormalClosure, "bye"))
	frame = readFrame(t, ctx, alice)
	req.Equal("user-left", frame["type"])
	req.Equal(bobID, frame["userId"])
}

func TestWSGateway_GarbageFramesKeepConnectionAlive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	server := startGateway(t)

	conn := dial(t, ctx, server.URL)

	req.NoError(conn.Write(ctx, websocket.MessageText, []byte(`{not json`)))
	req.NoError(conn.Write(ctx, websocket.MessageText,
		[]byte(`{"type":"something-else","documentId":"doc1"}`)))

	// The connection still works after garbage input
	req.NoError(conn.Write(ctx, websocket.MessageText,
		[]byte(`{"type":"join-document","documentId":"doc1"}`)))
	frame := readFrame(t, ctx, conn)
	req.Equal("document-content", frame["type"])
}
