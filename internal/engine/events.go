package engine

type EventType string

const (
	EvtMemberJoined   EventType = "member_joined"
	EvtSessionStarted EventType = "session_started"
	EvtSessionEnded   EventType = "session_ended"
	EvtHandStarted    EventType = "hand_started"
	EvtDealConfirmed  EventType = "deal_confirmed"
	EvtHandFinished   EventType = "hand_finished"
	EvtRoleChanged    EventType = "role_changed"
)

/*
	member_joined   -> invite accepted, member upserted
	session_started -> running session inserted
	session_ended   -> running sessions closed
	hand_started    -> hand inserted in waiting_deal
	deal_confirmed  -> waiting_deal -> betting
	hand_finished   -> betting -> finished
	role_changed    -> profiles.role updated (delivered from the database listener)
*/

type Event struct {
	Type       EventType  `json:"type"`
	TableID    string     `json:"table_id,omitempty"`
	SessionID  string     `json:"session_id,omitempty"`
	HandID     string     `json:"hand_id,omitempty"`
	HandNumber int        `json:"hand_number,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	Positions  *Positions `json:"positions,omitempty"`
	OldRole    Role       `json:"old_role,omitempty"`
	NewRole    Role       `json:"new_role,omitempty"`
}

// Approved reports whether a role change lets a pending user into the lobby.
func (e Event) Approved() bool {
	return e.Type == EvtRoleChanged &&
		e.OldRole == RolePending &&
		e.NewRole != "" &&
		e.NewRole != RolePending
}

func TableTopic(tableID string) string { return "table:" + tableID }

func ProfileTopic(userID string) string { return "profile:" + userID }
