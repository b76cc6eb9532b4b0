package types

import "github.com/DoyleJ11/poker-table-backend/internal/engine"

type ServerMessage struct {
	Type     string        `json:"type"` // "Approved" | "RoleChanged" | "TableEvent" | "Error"
	Version  int           `json:"version,omitempty"`
	Role     engine.Role   `json:"role,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Event    *engine.Event `json:"event,omitempty"`
	Error    string        `json:"error,omitempty"`
}

const (
	MsgApproved    = "Approved"
	MsgRoleChanged = "RoleChanged"
	MsgTableEvent  = "TableEvent"
	MsgError       = "Error"
)

// ProfileMessage turns a role change into what the profile page acts on.
func ProfileMessage(version int, evt engine.Event) ServerMessage {
	if evt.Approved() {
		return ServerMessage{Type: MsgApproved, Version: version, Role: evt.NewRole, Redirect: "/lobby"}
	}
	return ServerMessage{Type: MsgRoleChanged, Version: version, Role: evt.NewRole}
}

func TableMessage(version int, evt engine.Event) ServerMessage {
	return ServerMessage{Type: MsgTableEvent, Version: version, Event: &evt}
}
