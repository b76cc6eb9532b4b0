package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
	"github.com/DoyleJ11/poker-table-backend/pkg/types"
)

func loadHand(d *Deps, w http.ResponseWriter, r *http.Request) (store.Hand, bool) {
	var req types.HandRequest
	decodeBody(r, &req)
	if req.HandID == "" {
		writeError(w, http.StatusBadRequest, "Missing handId", nil)
		return store.Hand{}, false
	}
	if !validID(req.HandID) {
		writeError(w, http.StatusBadRequest, "Invalid handId", nil)
		return store.Hand{}, false
	}

	hand, err := d.Store.GetHand(r.Context(), req.HandID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Hand not found", nil)
		return store.Hand{}, false
	}
	if err != nil {
		writeStoreError(w, d.Log, "Hand read failed", err)
		return store.Hand{}, false
	}
	return hand, true
}

func handNotIn(w http.ResponseWriter, want, current engine.HandStatus) {
	writeError(w, http.StatusConflict, fmt.Sprintf("Hand is not %s", want), fields{"status": current})
}

// transition applies a hand status change and reports it. A concurrent
// transition that won the conditional update is reported like a failed
// pre-check, with the status the hand moved to.
func transition(d *Deps, w http.ResponseWriter, r *http.Request, hand store.Hand, to engine.HandStatus, evt engine.EventType) {
	updated, err := d.Store.TransitionHand(r.Context(), hand.ID, hand.Status, to)
	if errors.Is(err, store.ErrConflict) {
		current, err := d.Store.GetHand(r.Context(), hand.ID)
		if err != nil {
			writeStoreError(w, d.Log, "Hand read failed", err)
			return
		}
		handNotIn(w, hand.Status, current.Status)
		return
	}
	if err != nil {
		writeStoreError(w, d.Log, "Update failed", err)
		return
	}

	d.publish(r.Context(), engine.Event{
		Type:       evt,
		TableID:    updated.TableID,
		SessionID:  updated.SessionID,
		HandID:     updated.ID,
		HandNumber: updated.HandNumber,
	})
	writeJSON(w, http.StatusOK, fields{"ok": true, "hand": updated})
}

// ConfirmDeal is called by the hand's dealer once the cards are out.
func ConfirmDeal(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hand, ok := loadHand(d, w, r)
		if !ok {
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		if hand.DealerUserID != u.ID {
			writeError(w, http.StatusForbidden, "Only dealer can confirm deal", nil)
			return
		}
		to, err := engine.ConfirmDeal(hand.Status)
		if err != nil {
			handNotIn(w, engine.HandWaitingDeal, hand.Status)
			return
		}
		transition(d, w, r, hand, to, engine.EvtDealConfirmed)
	}
}

// FinishHand closes a hand in betting so the next one can start. The dealer
// or a super admin may call it.
func FinishHand(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hand, ok := loadHand(d, w, r)
		if !ok {
			return
		}

		u, _ := auth.UserFromContext(r.Context())
		if hand.DealerUserID != u.ID {
			role, err := callerRole(d, r)
			if err != nil {
				writeStoreError(w, d.Log, "Profile read failed", err)
				return
			}
			if role != engine.RoleSuperAdmin {
				writeError(w, http.StatusForbidden, "Only dealer or super admin can finish a hand", nil)
				return
			}
		}
		to, err := engine.FinishHand(hand.Status)
		if err != nil {
			handNotIn(w, engine.HandBetting, hand.Status)
			return
		}
		transition(d, w, r, hand, to, engine.EvtHandFinished)
	}
}
