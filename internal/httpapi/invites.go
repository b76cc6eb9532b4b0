package httpapi

import (
	"errors"
	"net/http"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
	"github.com/DoyleJ11/poker-table-backend/pkg/types"
)

// RespondInvite lets the invited user accept or decline. Accepting joins
// them to the table.
func RespondInvite(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.InviteResponseRequest
		decodeBody(r, &req)

		action, err := engine.ParseInviteAction(req.Action)
		if req.InviteID == "" || err != nil {
			writeError(w, http.StatusBadRequest, "Missing inviteId or invalid action", nil)
			return
		}
		if !validID(req.InviteID) {
			writeError(w, http.StatusBadRequest, "Invalid inviteId", nil)
			return
		}

		inv, err := d.Store.GetInvite(r.Context(), req.InviteID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Invite not found", nil)
			return
		}
		if err != nil {
			writeStoreError(w, d.Log, "Invite read failed", err)
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		if inv.UserID != u.ID {
			writeError(w, http.StatusForbidden, "Forbidden", nil)
			return
		}
		if inv.Status != engine.InvitePending {
			writeError(w, http.StatusConflict, "Invite is not pending", fields{"status": inv.Status})
			return
		}

		if action == engine.ActionDecline {
			if err := d.Store.DeclineInvite(r.Context(), inv.ID); err != nil {
				if errors.Is(err, store.ErrConflict) {
					writeError(w, http.StatusConflict, "Invite is not pending", nil)
					return
				}
				writeStoreError(w, d.Log, "Update failed", err)
				return
			}
			writeJSON(w, http.StatusOK, fields{"ok": true, "action": action})
			return
		}

		if err := d.Store.AcceptInvite(r.Context(), inv, d.now()); err != nil {
			if errors.Is(err, store.ErrConflict) {
				writeError(w, http.StatusConflict, "Invite is not pending", nil)
				return
			}
			writeStoreError(w, d.Log, "Invite update failed", err)
			return
		}
		d.publish(r.Context(), engine.Event{Type: engine.EvtMemberJoined, TableID: inv.TableID, UserID: u.ID})
		writeJSON(w, http.StatusOK, fields{"ok": true, "action": action})
	}
}
