package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Recoverer turns a handler panic into a 500 JSON error.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic", zap.Any("recovered", rec), zap.String("path", r.URL.Path), zap.Stack("stack"))
				writeError(w, http.StatusInternalServerError, fmt.Sprint(rec), nil)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects anonymous API callers with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerRole reads the caller's role column. A missing profile reads as
// pending.
func callerRole(d *Deps, r *http.Request) (engine.Role, error) {
	u, _ := auth.UserFromContext(r.Context())
	p, err := d.Store.GetProfile(r.Context(), u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return engine.RolePending, nil
	}
	if err != nil {
		return "", err
	}
	return engine.RoleOrPending(p.Role), nil
}

// RequireRole lets the request through only when the caller's role is one of
// allowed. denied is the 403 message.
func RequireRole(d *Deps, denied string, allowed ...engine.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := callerRole(d, r)
			if err != nil {
				writeStoreError(w, d.Log, "Profile read failed", err)
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, denied, nil)
		})
	}
}

// nonPending lists the roles that have been approved.
var nonPending = []engine.Role{engine.RoleUser, engine.RoleManager, engine.RoleSuperAdmin}
