package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/hub"
	"github.com/DoyleJ11/poker-table-backend/internal/types"
)

func newFeedServer(t *testing.T, h *hub.Hub, userID string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), auth.User{ID: userID})))
		})
	})
	r.Get("/ws/profile", ProfileFeed(h, zap.NewNop()))
	r.Get("/ws/tables/{tableID}", TableFeed(h, zap.NewNop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// waitForClient blocks until the room for topic has a subscriber.
func waitForClient(t *testing.T, h *hub.Hub, topic string) {
	t.Helper()
	require.Eventually(t, func() bool {
		rm := h.Room(context.Background(), topic, false)
		if rm == nil {
			return false
		}
		v, err := rm.State(context.Background())
		return err == nil && v.NumClients > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileFeedSendsApproval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := hub.NewHub(ctx)
	defer h.Shutdown()
	userID := uuid.NewString()
	srv := newFeedServer(t, h, userID)

	conn := dial(t, ctx, srv, "/ws/profile")
	waitForClient(t, h, engine.ProfileTopic(userID))

	h.Publish(ctx, engine.ProfileTopic(userID), engine.Event{
		Type: engine.EvtRoleChanged, UserID: userID, OldRole: engine.RolePending, NewRole: engine.RoleUser,
	})

	msg := readMessage(t, ctx, conn)
	assert.Equal(t, types.MsgApproved, msg.Type)
	assert.Equal(t, engine.RoleUser, msg.Role)
	assert.Equal(t, "/lobby", msg.Redirect)
	assert.Equal(t, 1, msg.Version)
}

func TestProfileFeedReceivesEventPublishedBeforeConnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := hub.NewHub(ctx)
	defer h.Shutdown()
	userID := uuid.NewString()
	srv := newFeedServer(t, h, userID)

	h.Publish(ctx, engine.ProfileTopic(userID), engine.Event{
		Type: engine.EvtRoleChanged, UserID: userID, OldRole: engine.RolePending, NewRole: engine.RoleUser,
	})
	require.Nil(t, h.Room(ctx, engine.ProfileTopic(userID), false))

	conn := dial(t, ctx, srv, "/ws/profile")
	msg := readMessage(t, ctx, conn)
	assert.Equal(t, types.MsgApproved, msg.Type)
	assert.Equal(t, "/lobby", msg.Redirect)
}

func TestTableFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := hub.NewHub(ctx)
	defer h.Shutdown()
	tableID := uuid.NewString()
	srv := newFeedServer(t, h, uuid.NewString())

	conn := dial(t, ctx, srv, "/ws/tables/"+tableID)
	waitForClient(t, h, engine.TableTopic(tableID))

	h.Publish(ctx, engine.TableTopic(tableID), engine.Event{Type: engine.EvtHandStarted, TableID: tableID, HandNumber: 3})

	msg := readMessage(t, ctx, conn)
	assert.Equal(t, types.MsgTableEvent, msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, engine.EvtHandStarted, msg.Event.Type)
	assert.Equal(t, 3, msg.Event.HandNumber)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Hello"}`)))
	msg = readMessage(t, ctx, conn)
	assert.Equal(t, types.MsgError, msg.Type)
}

func TestTableFeedRejectsBadID(t *testing.T) {
	h := hub.NewHub(context.Background())
	defer h.Shutdown()
	srv := newFeedServer(t, h, uuid.NewString())

	res, err := http.Get(srv.URL + "/ws/tables/not-a-uuid")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
