package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

func (s *Store) CreateTable(ctx context.Context, t *PokerTable) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return mapErr("create table", s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) JoinedMembers(ctx context.Context, tableID string) ([]Member, error) {
	var out []Member
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, engine.MemberJoined).
		Find(&out).Error
	if err != nil {
		return nil, mapErr("joined members", err)
	}
	return out, nil
}

func upsertMember(tx *gorm.DB, m *Member) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "joined_at"}),
	}).Create(m).Error
}
