package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

const reconnectDelay = 2 * time.Second

// Publisher receives decoded notifications.
type Publisher interface {
	Publish(ctx context.Context, topic string, evt engine.Event)
}

// Listener forwards profile role changes raised by the profiles trigger from
// Postgres LISTEN/NOTIFY into the hub.
type Listener struct {
	dsn     string
	channel string
	pub     Publisher
	log     *zap.Logger
}

func NewListener(dsn, channel string, pub Publisher, log *zap.Logger) *Listener {
	return &Listener{dsn: dsn, channel: channel, pub: pub, log: log.Named("realtime")}
}

// Run listens until ctx is done, reconnecting after connection failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("listener disconnected", zap.Error(err), zap.Duration("retry_in", reconnectDelay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.log.Info("listening", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		evt, err := DecodeRoleChange(n.Payload)
		if err != nil {
			l.log.Warn("bad notification payload", zap.String("payload", n.Payload), zap.Error(err))
			continue
		}
		l.log.Debug("role changed",
			zap.String("user_id", evt.UserID),
			zap.String("old_role", string(evt.OldRole)),
			zap.String("new_role", string(evt.NewRole)),
		)
		l.pub.Publish(ctx, engine.ProfileTopic(evt.UserID), evt)
	}
}

type roleChangePayload struct {
	ID      string  `json:"id"`
	OldRole *string `json:"old_role"`
	NewRole *string `json:"new_role"`
}

var errMissingID = errors.New("missing profile id")

// DecodeRoleChange parses the JSON payload written by notify_profile_role_changed.
func DecodeRoleChange(payload string) (engine.Event, error) {
	var p roleChangePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return engine.Event{}, err
	}
	if p.ID == "" {
		return engine.Event{}, errMissingID
	}
	evt := engine.Event{Type: engine.EvtRoleChanged, UserID: p.ID}
	if p.OldRole != nil {
		evt.OldRole = engine.Role(*p.OldRole)
	}
	if p.NewRole != nil {
		evt.NewRole = engine.Role(*p.NewRole)
	}
	return evt, nil
}
