package store

import (
	"context"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

func (s *Store) GetProfile(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, mapErr("get profile", err)
}

// ListProfiles returns profiles newest first, optionally narrowed to one role.
func (s *Store) ListProfiles(ctx context.Context, role engine.Role) ([]Profile, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var out []Profile
	if err := q.Find(&out).Error; err != nil {
		return nil, mapErr("list profiles", err)
	}
	return out, nil
}

func (s *Store) SetRole(ctx context.Context, id string, role engine.Role) error {
	res := s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return mapErr("set role", res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr("set role", ErrNotFound)
	}
	return nil
}
