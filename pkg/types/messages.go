package types

// HTTP request bodies accepted by the API. Fields are optional on the wire;
// handlers report missing ones as 400.

// POST /api/admin/set-role
type SetRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// POST /api/admin/tables/create
type CreateTableRequest struct {
	Name string `json:"name"`
}

// POST /api/admin/tables/invite (also /api/user/invites/respond)
type InviteRequest struct {
	TableID string `json:"tableId"`
	UserID  string `json:"userId"`
}

// POST /api/admin/tables/invite/respond
type InviteResponseRequest struct {
	InviteID string `json:"inviteId"`
	Action   string `json:"action"` // "accept" | "decline"
}

// POST /api/admin/tables/start-game, start-hand, end-game
type TableRequest struct {
	TableID string `json:"tableId"`
}

// POST /api/admin/tables/hands/confirm-deal, hands/finish
type HandRequest struct {
	HandID string `json:"handId"`
}

// Non-2xx API responses: { error, details? } plus route context fields
// (status, joined, unique, session_id, ...). Written by httpapi.writeError.

// Websocket server -> client
// Approved:     { type, version, role, redirect: "/lobby" }
// RoleChanged:  { type, version, role }
// TableEvent:   { type, version, event: { type, table_id, session_id?, hand_id?, hand_number?, user_id?, positions? } }
// Error:        { type, error }
