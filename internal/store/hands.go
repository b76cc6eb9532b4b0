package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

// LastHand returns the session's highest-numbered hand.
func (s *Store) LastHand(ctx context.Context, sessionID string) (Hand, error) {
	var h Hand
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("hand_number DESC").
		First(&h).Error
	return h, mapErr("last hand", err)
}

func (s *Store) CreateHand(ctx context.Context, h *Hand) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return mapErr("create hand", s.db.WithContext(ctx).Create(h).Error)
}

func (s *Store) GetHand(ctx context.Context, id string) (Hand, error) {
	var h Hand
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&h).Error
	return h, mapErr("get hand", err)
}

// TransitionHand moves a hand between statuses only if it is still in from.
func (s *Store) TransitionHand(ctx context.Context, id string, from, to engine.HandStatus) (Hand, error) {
	res := s.db.WithContext(ctx).Model(&Hand{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return Hand{}, mapErr("transition hand", res.Error)
	}
	if res.RowsAffected == 0 {
		return Hand{}, mapErr("transition hand", ErrConflict)
	}
	return s.GetHand(ctx, id)
}
