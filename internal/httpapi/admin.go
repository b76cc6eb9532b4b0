package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
	"github.com/DoyleJ11/poker-table-backend/pkg/types"
)

func SetRole(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SetRoleRequest
		decodeBody(r, &req)

		if req.UserID == "" || req.Role == "" {
			writeError(w, http.StatusBadRequest, "Missing userId or role", nil)
			return
		}
		role, err := engine.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid role", nil)
			return
		}
		if !validID(req.UserID) {
			writeError(w, http.StatusBadRequest, "Invalid userId", nil)
			return
		}

		if err := d.Store.SetRole(r.Context(), req.UserID, role); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Profile not found", nil)
				return
			}
			d.Log.Error("set role", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		d.Log.Info("role updated",
			zap.String("by", u.ID),
			zap.String("user_id", req.UserID),
			zap.String("role", string(role)),
		)
		writeJSON(w, http.StatusOK, fields{"success": true})
	}
}

func CreateTable(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateTableRequest
		decodeBody(r, &req)

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Missing name", nil)
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		t := &store.PokerTable{Name: name, Status: engine.TableIdle, CreatedBy: &u.ID}
		if err := d.Store.CreateTable(r.Context(), t); err != nil {
			d.Log.Error("create table", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, fields{"ok": true, "table": t})
	}
}

// CreateInvite invites a user to a table. A pending invite is handed back
// instead of creating a second one.
func CreateInvite(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.InviteRequest
		decodeBody(r, &req)

		if req.TableID == "" || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "Missing tableId or userId", nil)
			return
		}
		if !validID(req.TableID) || !validID(req.UserID) {
			writeError(w, http.StatusBadRequest, "Invalid tableId or userId", nil)
			return
		}

		existing, err := d.Store.FindActiveInvite(r.Context(), req.TableID, req.UserID)
		switch {
		case err == nil && existing.Status == engine.InvitePending:
			writeJSON(w, http.StatusOK, fields{"inviteId": existing.ID, "reused": true})
			return
		case err == nil && existing.Status == engine.InviteAccepted:
			writeError(w, http.StatusConflict, "User already accepted invite for this table", nil)
			return
		case err != nil && !errors.Is(err, store.ErrNotFound):
			writeStoreError(w, d.Log, "Invite read failed", err)
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		inv := &store.Invite{
			TableID:   req.TableID,
			UserID:    req.UserID,
			InvitedBy: u.ID,
			Status:    engine.InvitePending,
		}
		if err := d.Store.CreateInvite(r.Context(), inv); err != nil {
			writeStoreError(w, d.Log, "Insert failed", err)
			return
		}
		writeJSON(w, http.StatusOK, fields{"invite": inv})
	}
}
