package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/pages"
	"github.com/DoyleJ11/poker-table-backend/internal/ws"
)

func SetupRoutes(d *Deps, authn auth.Authenticator, pg *pages.Pages) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(Recoverer(d.Log))
	r.Use(auth.Middleware(authn))

	// Public routes
	r.Get("/healthz", Healthz(d))
	r.Post("/auth/signout", pg.SignOut)

	// Pages redirect anonymous visitors themselves.
	r.Get("/profile", pg.Profile)
	r.Get("/lobby", pg.Lobby)
	r.Get("/admin", pg.Admin)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(d, "Access denied. Super admin role required.", engine.RoleSuperAdmin))
			r.Post("/admin/set-role", SetRole(d))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(d, "Forbidden", engine.RoleSuperAdmin))
			r.Get("/admin/profiles", ListProfiles(d))
			r.Post("/admin/tables/create", CreateTable(d))
			r.Post("/admin/tables/invite", CreateInvite(d))
			r.Post("/user/invites/respond", CreateInvite(d))
			r.Post("/admin/tables/start-game", StartGame(d))
			r.Post("/admin/tables/start-hand", StartHand(d))
			r.Post("/admin/tables/end-game", EndGame(d))
		})

		r.Post("/admin/tables/invite/respond", RespondInvite(d))
		r.Post("/admin/tables/hands/confirm-deal", ConfirmDeal(d))
		r.Post("/admin/tables/hands/finish", FinishHand(d))
		r.Get("/user/invites", MyInvites(d))
	})

	r.Route("/ws", func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/profile", ws.ProfileFeed(d.Rooms, d.Log))
		r.With(RequireRole(d, "Forbidden", nonPending...)).
			Get("/tables/{tableID}", ws.TableFeed(d.Rooms, d.Log))
	})
	return r
}
