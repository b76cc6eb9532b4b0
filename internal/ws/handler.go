package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/room"
	"github.com/DoyleJ11/poker-table-backend/internal/types"
)

const (
	outboxSize   = 8
	writeTimeout = 3 * time.Second
	joinAttempts = 3
)

// Rooms resolves a topic to its room. The hub implements it.
type Rooms interface {
	Room(ctx context.Context, topic string, ensure bool) *room.Room
}

type encodeFunc func(version int, evt engine.Event) types.ServerMessage

// ProfileFeed streams the caller's own role changes. A pending user's profile
// page waits on it for approval.
func ProfileFeed(rooms Rooms, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		serve(w, r, rooms, log, engine.ProfileTopic(u.ID), types.ProfileMessage)
	}
}

// TableFeed streams bookkeeping events for one table.
func TableFeed(rooms Rooms, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "tableID")
		if _, err := uuid.Parse(tableID); err != nil {
			http.Error(w, "invalid table id", http.StatusBadRequest)
			return
		}
		serve(w, r, rooms, log, engine.TableTopic(tableID), types.TableMessage)
	}
}

func serve(w http.ResponseWriter, r *http.Request, rooms Rooms, log *zap.Logger, topic string, encode encodeFunc) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debug("websocket accept", zap.String("topic", topic), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	out := make(chan room.Snapshot, outboxSize)
	clientID := uuid.NewString()

	rm := join(r.Context(), rooms, topic, room.Join{ClientID: clientID, Outbox: out})
	if rm == nil {
		conn.Close(websocket.StatusTryAgainLater, "feed unavailable")
		return
	}
	defer send(rm, room.Leave{ClientID: clientID})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine. The room closes out when it drops this client or
	// shuts down, which ends the connection.
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-out:
				if !ok {
					conn.Close(websocket.StatusGoingAway, "feed closed")
					return
				}
				if err := write(ctx, conn, encode(snap.Version, snap.Event)); err != nil {
					return
				}
			}
		}
	}()

	// Feeds are one way; anything the client sends gets an error back.
	for {
		_, _, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug("websocket read", zap.String("topic", topic), zap.Error(err))
				}
			}
			return
		}
		_ = write(ctx, conn, types.ServerMessage{Type: types.MsgError, Error: "feed is read-only"})
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload)
}

// join subscribes to the topic's room. A room can retire between the lookup
// and the join; the next lookup then opens a fresh one.
func join(ctx context.Context, rooms Rooms, topic string, m room.Join) *room.Room {
	for range joinAttempts {
		rm := rooms.Room(ctx, topic, true)
		if rm == nil {
			return nil
		}
		if send(rm, m) {
			return rm
		}
	}
	return nil
}

// send delivers to the room unless it has already shut down.
func send(rm *room.Room, m room.Msg) bool {
	select {
	case rm.Inbox() <- m:
		return true
	case <-rm.Done():
		return false
	}
}
