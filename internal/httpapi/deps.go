package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
	"github.com/DoyleJ11/poker-table-backend/internal/ws"
)

// Store is the slice of the database the handlers use.
type Store interface {
	Ping(ctx context.Context) error

	GetProfile(ctx context.Context, id string) (store.Profile, error)
	ListProfiles(ctx context.Context, role engine.Role) ([]store.Profile, error)
	SetRole(ctx context.Context, id string, role engine.Role) error

	CreateTable(ctx context.Context, t *store.PokerTable) error
	JoinedMembers(ctx context.Context, tableID string) ([]store.Member, error)

	FindActiveInvite(ctx context.Context, tableID, userID string) (store.Invite, error)
	CreateInvite(ctx context.Context, inv *store.Invite) error
	GetInvite(ctx context.Context, id string) (store.Invite, error)
	DeclineInvite(ctx context.Context, id string) error
	AcceptInvite(ctx context.Context, inv store.Invite, joinedAt time.Time) error
	InvitesForUser(ctx context.Context, userID string) ([]store.InviteView, error)

	RunningSessions(ctx context.Context, tableID string) ([]store.Session, error)
	CreateSession(ctx context.Context, s *store.Session) error
	EndSessions(ctx context.Context, tableID string, at time.Time) (int64, error)

	LastHand(ctx context.Context, sessionID string) (store.Hand, error)
	CreateHand(ctx context.Context, h *store.Hand) error
	GetHand(ctx context.Context, id string) (store.Hand, error)
	TransitionHand(ctx context.Context, id string, from, to engine.HandStatus) (store.Hand, error)
}

// Publisher delivers bookkeeping events to realtime subscribers.
type Publisher interface {
	Publish(ctx context.Context, topic string, evt engine.Event)
}

type Deps struct {
	Store  Store
	Events Publisher
	Rooms  ws.Rooms
	Log    *zap.Logger
	Now    func() time.Time
	Intn   engine.Intn
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Deps) intn() engine.Intn {
	if d.Intn != nil {
		return d.Intn
	}
	return engine.CryptoIntn
}

func (d *Deps) publish(ctx context.Context, evt engine.Event) {
	if d.Events == nil || evt.TableID == "" {
		return
	}
	d.Events.Publish(ctx, engine.TableTopic(evt.TableID), evt)
}
