package store

import (
	"time"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

type Profile struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string      `json:"email"`
	FullName  *string     `json:"full_name"`
	AvatarURL *string     `json:"avatar_url"`
	Role      engine.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }

type PokerTable struct {
	ID        string             `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string             `json:"name"`
	Status    engine.TableStatus `json:"status"`
	CreatedBy *string            `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
}

func (PokerTable) TableName() string { return "poker_tables" }

type Member struct {
	TableID  string              `gorm:"primaryKey;type:uuid" json:"table_id"`
	UserID   string              `gorm:"primaryKey;type:uuid" json:"user_id"`
	Status   engine.MemberStatus `json:"status"`
	Seat     *int                `json:"seat"`
	JoinedAt *time.Time          `json:"joined_at"`
}

func (Member) TableName() string { return "table_members" }

func (m Member) Seating() engine.Seat {
	return engine.Seat{UserID: m.UserID, Seat: m.Seat, JoinedAt: m.JoinedAt}
}

type Invite struct {
	ID        string              `gorm:"primaryKey;type:uuid" json:"id"`
	TableID   string              `gorm:"type:uuid" json:"table_id"`
	UserID    string              `gorm:"type:uuid" json:"user_id"`
	InvitedBy string              `gorm:"type:uuid" json:"invited_by"`
	Status    engine.InviteStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

func (Invite) TableName() string { return "table_invites" }

// InviteView is an invite joined with its table's name.
type InviteView struct {
	Invite
	PokerTableName string `gorm:"column:table_name" json:"table_name"`
}

type Session struct {
	ID           string               `gorm:"primaryKey;type:uuid" json:"id"`
	TableID      string               `gorm:"type:uuid" json:"table_id"`
	Status       engine.SessionStatus `json:"status"`
	DealerUserID string               `gorm:"column:dealer_user_id;type:uuid" json:"dealer_user_id"`
	SBUserID     string               `gorm:"column:sb_user_id;type:uuid" json:"sb_user_id"`
	BBUserID     string               `gorm:"column:bb_user_id;type:uuid" json:"bb_user_id"`
	StartedBy    string               `gorm:"type:uuid" json:"started_by"`
	StartedAt    time.Time            `json:"started_at"`
	EndedAt      *time.Time           `json:"ended_at"`
}

func (Session) TableName() string { return "table_sessions" }

type Hand struct {
	ID           string            `gorm:"primaryKey;type:uuid" json:"id"`
	TableID      string            `gorm:"type:uuid" json:"table_id"`
	SessionID    string            `gorm:"type:uuid" json:"session_id"`
	HandNumber   int               `json:"hand_number"`
	Status       engine.HandStatus `json:"status"`
	Round        engine.Round      `json:"round"`
	DealerUserID string            `gorm:"column:dealer_user_id;type:uuid" json:"dealer_user_id"`
	SBUserID     string            `gorm:"column:sb_user_id;type:uuid" json:"sb_user_id"`
	BBUserID     string            `gorm:"column:bb_user_id;type:uuid" json:"bb_user_id"`
	TurnUserID   string            `gorm:"column:turn_user_id;type:uuid" json:"turn_user_id"`
	CreatedBy    string            `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (Hand) TableName() string { return "hands" }
