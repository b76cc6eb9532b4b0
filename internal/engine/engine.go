package engine

import (
	"errors"
	"slices"
)

var ErrInvalidRole = errors.New("invalid role")
var ErrInvalidAction = errors.New("invalid action")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrWrongHandStatus = errors.New("wrong hand status")

// MinPlayers is the smallest table a session or hand can be started with.
const MinPlayers = 4

type Role string

const (
	RolePending    Role = "pending"
	RoleUser       Role = "user"
	RoleManager    Role = "manager"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every assignable role, lowest privilege first.
var Roles = []Role{RolePending, RoleUser, RoleManager, RoleSuperAdmin}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !slices.Contains(Roles, r) {
		return "", ErrInvalidRole
	}
	return r, nil
}

// RoleOrPending treats a missing profile or an empty role column as pending.
func RoleOrPending(r Role) Role {
	if r == "" {
		return RolePending
	}
	return r
}

type TableStatus string

const TableIdle TableStatus = "idle"

type MemberStatus string

const MemberJoined MemberStatus = "joined"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

type InviteAction string

const (
	ActionAccept  InviteAction = "accept"
	ActionDecline InviteAction = "decline"
)

func ParseInviteAction(s string) (InviteAction, error) {
	switch InviteAction(s) {
	case ActionAccept, ActionDecline:
		return InviteAction(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// Result is the status a pending invite moves to.
func (a InviteAction) Result() InviteStatus {
	if a == ActionAccept {
		return InviteAccepted
	}
	return InviteDeclined
}

type SessionStatus string

const (
	SessionRunning SessionStatus = "running"
	SessionEnded   SessionStatus = "ended"
)

type HandStatus string

const (
	HandWaitingDeal HandStatus = "waiting_deal"
	HandBetting     HandStatus = "betting"
	HandFinished    HandStatus = "finished"
)

type Round string

const RoundPreflop Round = "preflop"

// ConfirmDeal moves a hand out of waiting_deal once its dealer has dealt.
func ConfirmDeal(s HandStatus) (HandStatus, error) {
	if s != HandWaitingDeal {
		return s, ErrWrongHandStatus
	}
	return HandBetting, nil
}

func FinishHand(s HandStatus) (HandStatus, error) {
	if s != HandBetting {
		return s, ErrWrongHandStatus
	}
	return HandFinished, nil
}

// BlocksNextHand reports whether a hand with this status is still in play.
// Rows written before statuses existed carry an empty status and never block.
func BlocksNextHand(s HandStatus) bool {
	return s != "" && s != HandFinished
}
