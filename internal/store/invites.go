package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

var activeInviteStatuses = []engine.InviteStatus{engine.InvitePending, engine.InviteAccepted}

// FindActiveInvite returns the pending or accepted invite for a user at a
// table. An accepted invite wins when both exist.
func (s *Store) FindActiveInvite(ctx context.Context, tableID, userID string) (Invite, error) {
	var inv Invite
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND user_id = ? AND status IN ?", tableID, userID, activeInviteStatuses).
		Order("status = 'accepted' DESC").
		Order("created_at DESC").
		First(&inv).Error
	return inv, mapErr("find invite", err)
}

func (s *Store) CreateInvite(ctx context.Context, inv *Invite) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	return mapErr("create invite", s.db.WithContext(ctx).Create(inv).Error)
}

func (s *Store) GetInvite(ctx context.Context, id string) (Invite, error) {
	var inv Invite
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	return inv, mapErr("get invite", err)
}

// DeclineInvite flips a pending invite to declined. A concurrent response
// that got there first surfaces as ErrConflict.
func (s *Store) DeclineInvite(ctx context.Context, id string) error {
	return mapErr("decline invite", resolvePending(s.db.WithContext(ctx), id, engine.InviteDeclined))
}

// AcceptInvite marks the invite accepted and joins the user to the table in
// one transaction.
func (s *Store) AcceptInvite(ctx context.Context, inv Invite, joinedAt time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolvePending(tx, inv.ID, engine.InviteAccepted); err != nil {
			return err
		}
		return upsertMember(tx, &Member{
			TableID:  inv.TableID,
			UserID:   inv.UserID,
			Status:   engine.MemberJoined,
			JoinedAt: &joinedAt,
		})
	})
	return mapErr("accept invite", err)
}

func resolvePending(tx *gorm.DB, id string, to engine.InviteStatus) error {
	res := tx.Model(&Invite{}).
		Where("id = ? AND status = ?", id, engine.InvitePending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// InvitesForUser lists a user's pending and accepted invites, newest first.
func (s *Store) InvitesForUser(ctx context.Context, userID string) ([]InviteView, error) {
	var out []InviteView
	err := s.db.WithContext(ctx).
		Table("table_invites").
		Select("table_invites.*, poker_tables.name AS table_name").
		Joins("LEFT JOIN poker_tables ON poker_tables.id = table_invites.table_id").
		Where("table_invites.user_id = ? AND table_invites.status IN ?", userID, activeInviteStatuses).
		Order("table_invites.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, mapErr("invites for user", err)
	}
	return out, nil
}
