package pages

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const signInPath = "/auth"

// Store is what the pages read.
type Store interface {
	GetProfile(ctx context.Context, id string) (store.Profile, error)
	ListProfiles(ctx context.Context, role engine.Role) ([]store.Profile, error)
	InvitesForUser(ctx context.Context, userID string) ([]store.InviteView, error)
}

type Pages struct {
	store      Store
	log        *zap.Logger
	cookieName string
	tmpl       *template.Template
}

var titler = cases.Title(language.English)

// RoleLabel renders a role for people: super_admin becomes "Super Admin".
func RoleLabel(r engine.Role) string {
	return titler.String(strings.ReplaceAll(string(engine.RoleOrPending(r)), "_", " "))
}

func New(s Store, log *zap.Logger, cookieName string) (*Pages, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"roleLabel": RoleLabel,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"when": func(t *time.Time) string {
			if t == nil {
				return "Unknown"
			}
			return t.UTC().Format("Jan 2, 2006 15:04 MST")
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{store: s, log: log, cookieName: cookieName, tmpl: tmpl}, nil
}

type viewer struct {
	User    auth.User
	Profile store.Profile
	Role    engine.Role
}

func (v viewer) Name() string {
	if v.Profile.FullName != nil && *v.Profile.FullName != "" {
		return *v.Profile.FullName
	}
	if v.User.FullName != "" {
		return v.User.FullName
	}
	return v.User.Email
}

func (v viewer) Provider() string {
	if v.User.Provider == "" {
		return "google"
	}
	return v.User.Provider
}

func (v viewer) SuperAdmin() bool { return v.Role == engine.RoleSuperAdmin }

func (v viewer) Pending() bool { return v.Role == engine.RolePending }

// load resolves the signed-in viewer. It redirects anonymous visitors and
// reports false when the response has already been written.
func (p *Pages) load(w http.ResponseWriter, r *http.Request) (viewer, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, signInPath, http.StatusSeeOther)
		return viewer{}, false
	}
	v := viewer{User: u, Role: engine.RolePending}
	prof, err := p.store.GetProfile(r.Context(), u.ID)
	switch {
	case err == nil:
		v.Profile = prof
		v.Role = engine.RoleOrPending(prof.Role)
	case errors.Is(err, store.ErrNotFound):
		v.Profile = store.Profile{ID: u.ID, Email: u.Email, Role: engine.RolePending}
	default:
		p.fail(w, "profile read", err)
		return viewer{}, false
	}
	return v, true
}

func (p *Pages) Profile(w http.ResponseWriter, r *http.Request) {
	v, ok := p.load(w, r)
	if !ok {
		return
	}
	p.render(w, http.StatusOK, "profile.html", map[string]any{"V": v})
}

func (p *Pages) Lobby(w http.ResponseWriter, r *http.Request) {
	v, ok := p.load(w, r)
	if !ok {
		return
	}
	if v.Pending() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	invites, err := p.store.InvitesForUser(r.Context(), v.User.ID)
	if err != nil {
		p.fail(w, "invites read", err)
		return
	}
	p.render(w, http.StatusOK, "lobby.html", map[string]any{"V": v, "Invites": invites})
}

func (p *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	v, ok := p.load(w, r)
	if !ok {
		return
	}
	if !v.SuperAdmin() {
		p.render(w, http.StatusForbidden, "denied.html", map[string]any{"V": v})
		return
	}

	all, err := p.store.ListProfiles(r.Context(), "")
	if err != nil {
		p.fail(w, "profiles read", err)
		return
	}
	var pending []store.Profile
	for _, prof := range all {
		if engine.RoleOrPending(prof.Role) == engine.RolePending {
			pending = append(pending, prof)
		}
	}
	filter := "all"
	list := all
	if r.URL.Query().Get("filter") == string(engine.RolePending) {
		filter = string(engine.RolePending)
		list = pending
	}

	p.render(w, http.StatusOK, "admin.html", map[string]any{
		"V":        v,
		"Filter":   filter,
		"Profiles": list,
		"Total":    len(all),
		"Pending":  len(pending),
		"Roles":    engine.Roles,
	})
}

func (p *Pages) SignOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, p.cookieName)
	http.Redirect(w, r, signInPath, http.StatusSeeOther)
}

// render executes into a buffer so a template error still yields a clean 500.
func (p *Pages) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		p.fail(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) fail(w http.ResponseWriter, op string, err error) {
	p.log.Error(op, zap.Error(err))
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}
