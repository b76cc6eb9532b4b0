package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

// RunningSessions returns the table's running sessions, newest first. More
// than one means the table predates the one-running-session index.
func (s *Store) RunningSessions(ctx context.Context, tableID string) ([]Session, error) {
	var out []Session
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, engine.SessionRunning).
		Order("started_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, mapErr("running sessions", err)
	}
	return out, nil
}

// CreateSession inserts a running session. A second running session for the
// same table violates table_sessions_one_running and returns ErrConflict.
func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	return mapErr("create session", s.db.WithContext(ctx).Create(sess).Error)
}

func (s *Store) EndSessions(ctx context.Context, tableID string, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&Session{}).
		Where("table_id = ? AND status = ?", tableID, engine.SessionRunning).
		Updates(map[string]any{"status": engine.SessionEnded, "ended_at": at})
	if res.Error != nil {
		return 0, mapErr("end sessions", res.Error)
	}
	return res.RowsAffected, nil
}
