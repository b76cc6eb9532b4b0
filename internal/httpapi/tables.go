package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
	"github.com/DoyleJ11/poker-table-backend/pkg/types"
)

// tableID reads {tableId} and writes the 400 itself when it is unusable.
func tableID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req types.TableRequest
	decodeBody(r, &req)
	if req.TableID == "" {
		writeError(w, http.StatusBadRequest, "Missing tableId", nil)
		return "", false
	}
	if !validID(req.TableID) {
		writeError(w, http.StatusBadRequest, "Invalid tableId", nil)
		return "", false
	}
	return req.TableID, true
}

// seatedPlayers loads the joined members of a table in clockwise order.
func seatedPlayers(d *Deps, w http.ResponseWriter, r *http.Request, tableID string) ([]string, engine.OrderBy, bool) {
	members, err := d.Store.JoinedMembers(r.Context(), tableID)
	if err != nil {
		writeStoreError(w, d.Log, "Members read failed", err)
		return nil, "", false
	}
	if len(members) < engine.MinPlayers {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Need at least %d joined players", engine.MinPlayers),
			fields{"joined": len(members)})
		return nil, "", false
	}

	seats := make([]engine.Seat, len(members))
	for i, m := range members {
		seats[i] = m.Seating()
	}
	players, by := engine.OrderPlayers(seats)
	if len(players) < engine.MinPlayers {
		writeError(w, http.StatusBadRequest, "Not enough unique joined players", fields{"unique": len(players)})
		return nil, "", false
	}
	return players, by, true
}

// StartGame opens a running session with a randomly drawn dealer.
func StartGame(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid, ok := tableID(w, r)
		if !ok {
			return
		}

		running, err := d.Store.RunningSessions(r.Context(), tid)
		if err != nil {
			writeStoreError(w, d.Log, "Session check failed", err)
			return
		}
		if len(running) > 0 {
			writeError(w, http.StatusConflict, "Game already running", fields{"session_id": running[0].ID})
			return
		}

		players, by, ok := seatedPlayers(d, w, r, tid)
		if !ok {
			return
		}

		pos, err := engine.PickSessionRoles(players, d.intn())
		if err != nil {
			d.Log.Error("dealer draw", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Dealer draw failed", fields{"details": err.Error()})
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		sess := &store.Session{
			TableID:      tid,
			Status:       engine.SessionRunning,
			DealerUserID: pos.Dealer,
			SBUserID:     pos.SmallBlind,
			BBUserID:     pos.BigBlind,
			StartedBy:    u.ID,
			StartedAt:    d.now(),
		}
		if err := d.Store.CreateSession(r.Context(), sess); err != nil {
			if errors.Is(err, store.ErrConflict) {
				writeError(w, http.StatusConflict, "Game already running", nil)
				return
			}
			writeStoreError(w, d.Log, "Session insert failed", err)
			return
		}

		d.publish(r.Context(), engine.Event{
			Type:      engine.EvtSessionStarted,
			TableID:   tid,
			SessionID: sess.ID,
			Positions: &pos,
		})
		writeJSON(w, http.StatusOK, fields{
			"ok":            true,
			"session":       sess,
			"order_used":    by,
			"players_order": players,
		})
	}
}

// StartHand deals the next hand of the running session, moving the button one
// seat past the previous dealer.
func StartHand(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid, ok := tableID(w, r)
		if !ok {
			return
		}

		running, err := d.Store.RunningSessions(r.Context(), tid)
		if err != nil {
			writeStoreError(w, d.Log, "Session read failed", err)
			return
		}
		if len(running) == 0 {
			writeError(w, http.StatusBadRequest, "No running session for this table", nil)
			return
		}
		if len(running) > 1 {
			writeError(w, http.StatusConflict, "Multiple running sessions found (DB is inconsistent)", fields{
				"running_count":     len(running),
				"latest_session_id": running[0].ID,
			})
			return
		}
		session := running[0]

		players, by, ok := seatedPlayers(d, w, r, tid)
		if !ok {
			return
		}

		handNumber := 1
		prevDealer := session.DealerUserID
		last, err := d.Store.LastHand(r.Context(), session.ID)
		switch {
		case err == nil:
			if engine.BlocksNextHand(last.Status) {
				writeError(w, http.StatusConflict, "Previous hand not finished", fields{
					"hand_id": last.ID,
					"status":  last.Status,
				})
				return
			}
			handNumber = last.HandNumber + 1
			if last.DealerUserID != "" {
				prevDealer = last.DealerUserID
			}
		case !errors.Is(err, store.ErrNotFound):
			writeStoreError(w, d.Log, "Hands read failed", err)
			return
		}

		pos, err := engine.RotateHand(players, prevDealer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Dealer rotation failed", fields{"details": err.Error()})
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		hand := &store.Hand{
			TableID:      tid,
			SessionID:    session.ID,
			HandNumber:   handNumber,
			Status:       engine.HandWaitingDeal,
			Round:        engine.RoundPreflop,
			DealerUserID: pos.Dealer,
			SBUserID:     pos.SmallBlind,
			BBUserID:     pos.BigBlind,
			TurnUserID:   pos.Turn,
			CreatedBy:    u.ID,
		}
		if err := d.Store.CreateHand(r.Context(), hand); err != nil {
			if errors.Is(err, store.ErrConflict) {
				writeError(w, http.StatusConflict, "Hand already started", fields{"hand_number": handNumber})
				return
			}
			writeStoreError(w, d.Log, "Hand insert failed", err)
			return
		}

		d.publish(r.Context(), engine.Event{
			Type:       engine.EvtHandStarted,
			TableID:    tid,
			SessionID:  session.ID,
			HandID:     hand.ID,
			HandNumber: hand.HandNumber,
			Positions:  &pos,
		})
		writeJSON(w, http.StatusOK, fields{
			"ok":             true,
			"hand":           hand,
			"order_used":     by,
			"players_order":  players,
			"prev_dealer_id": prevDealer,
		})
	}
}

// EndGame closes every running session of a table.
func EndGame(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid, ok := tableID(w, r)
		if !ok {
			return
		}

		n, err := d.Store.EndSessions(r.Context(), tid, d.now())
		if err != nil {
			writeStoreError(w, d.Log, "Session update failed", err)
			return
		}
		if n == 0 {
			writeError(w, http.StatusNotFound, "No running session for this table", nil)
			return
		}

		d.publish(r.Context(), engine.Event{Type: engine.EvtSessionEnded, TableID: tid})
		writeJSON(w, http.StatusOK, fields{"ok": true, "ended": n})
	}
}
