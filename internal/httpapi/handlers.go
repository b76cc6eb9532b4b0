package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

func Healthz(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable", fields{"details": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, fields{"status": "ok"})
	}
}

// ListProfiles backs the admin user table. filter=pending narrows the list;
// the counts always cover every profile.
func ListProfiles(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := d.Store.ListProfiles(r.Context(), "")
		if err != nil {
			writeStoreError(w, d.Log, "Profiles read failed", err)
			return
		}

		pending := make([]store.Profile, 0)
		for _, p := range all {
			if engine.RoleOrPending(p.Role) == engine.RolePending {
				pending = append(pending, p)
			}
		}
		list := all
		if r.URL.Query().Get("filter") == string(engine.RolePending) {
			list = pending
		}
		if list == nil {
			list = []store.Profile{}
		}

		writeJSON(w, http.StatusOK, fields{
			"profiles": list,
			"total":    len(all),
			"pending":  len(pending),
		})
	}
}

func MyInvites(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		invites, err := d.Store.InvitesForUser(r.Context(), u.ID)
		if err != nil {
			writeStoreError(w, d.Log, "Invites read failed", err)
			return
		}
		if invites == nil {
			invites = []store.InviteView{}
		}
		writeJSON(w, http.StatusOK, fields{"invites": invites})
	}
}
