package pages

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

const me = "7b0c1d2e-0000-4000-8000-000000000001"

type fakeStore struct {
	profiles map[string]store.Profile
	invites  []store.InviteView
	err      error
}

func (f *fakeStore) GetProfile(_ context.Context, id string) (store.Profile, error) {
	if f.err != nil {
		return store.Profile{}, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return store.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListProfiles(_ context.Context, _ engine.Role) ([]store.Profile, error) {
	var out []store.Profile
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) InvitesForUser(context.Context, string) ([]store.InviteView, error) {
	return f.invites, nil
}

func newPages(t *testing.T, s Store) *Pages {
	t.Helper()
	p, err := New(s, zap.NewNop(), "sb-access-token")
	require.NoError(t, err)
	return p
}

func get(h http.HandlerFunc, path string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if signedIn {
		req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: me, Email: "me@example.com"}))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func withRole(role engine.Role) *fakeStore {
	name := "Ada"
	return &fakeStore{profiles: map[string]store.Profile{
		me: {ID: me, Email: "me@example.com", FullName: &name, Role: role, CreatedAt: time.Now()},
	}}
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Pending", RoleLabel(engine.RolePending))
	assert.Equal(t, "User", RoleLabel(engine.RoleUser))
	assert.Equal(t, "Manager", RoleLabel(engine.RoleManager))
	assert.Equal(t, "Super Admin", RoleLabel(engine.RoleSuperAdmin))
	assert.Equal(t, "Pending", RoleLabel(""))
}

func TestAnonymousVisitorsAreSentToSignIn(t *testing.T) {
	p := newPages(t, withRole(engine.RoleUser))
	for path, h := range map[string]http.HandlerFunc{
		"/profile": p.Profile,
		"/lobby":   p.Lobby,
		"/admin":   p.Admin,
	} {
		rec := get(h, path, false)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/auth", rec.Header().Get("Location"), path)
	}
}

func TestProfile(t *testing.T) {
	t.Run("missing profile renders as pending with approval feed", func(t *testing.T) {
		p := newPages(t, &fakeStore{})
		rec := get(p.Profile, "/profile", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Pending")
		assert.Contains(t, body, "/ws/profile")
		assert.Contains(t, body, "google")
		assert.Contains(t, body, me)
	})

	t.Run("approved user has no approval feed", func(t *testing.T) {
		p := newPages(t, withRole(engine.RoleUser))
		rec := get(p.Profile, "/profile", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "/ws/profile")
		assert.Contains(t, rec.Body.String(), "Ada")
	})

	t.Run("profile read failure", func(t *testing.T) {
		p := newPages(t, &fakeStore{err: errors.New("boom")})
		rec := get(p.Profile, "/profile", true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestLobby(t *testing.T) {
	t.Run("pending users go back to profile", func(t *testing.T) {
		p := newPages(t, withRole(engine.RolePending))
		rec := get(p.Lobby, "/lobby", true)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile", rec.Header().Get("Location"))
	})

	t.Run("empty invitations", func(t *testing.T) {
		p := newPages(t, withRole(engine.RoleUser))
		rec := get(p.Lobby, "/lobby", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No invitations yet")
		assert.NotContains(t, rec.Body.String(), `href="/admin"`)
	})

	t.Run("pending invitation offers actions", func(t *testing.T) {
		s := withRole(engine.RoleSuperAdmin)
		s.invites = []store.InviteView{{
			Invite:         store.Invite{ID: "inv-1", Status: engine.InvitePending, CreatedAt: time.Now()},
			PokerTableName: "Friday Night",
		}}
		p := newPages(t, s)
		rec := get(p.Lobby, "/lobby", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Friday Night")
		assert.Contains(t, body, `data-action="accept"`)
		assert.Contains(t, body, `href="/admin"`)
	})
}

func TestAdmin(t *testing.T) {
	t.Run("non admin sees access denied", func(t *testing.T) {
		p := newPages(t, withRole(engine.RoleManager))
		rec := get(p.Admin, "/admin", true)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Access Denied")
	})

	t.Run("pending filter", func(t *testing.T) {
		s := withRole(engine.RoleSuperAdmin)
		s.profiles["p2"] = store.Profile{ID: "p2", Email: "new@example.com", Role: engine.RolePending}
		p := newPages(t, s)

		rec := get(p.Admin, "/admin?filter=pending", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "All (2)")
		assert.Contains(t, body, "Pending (1)")
		assert.Contains(t, body, "new@example.com")
		assert.NotContains(t, body, "<td>me@example.com</td>")
	})
}

func TestSignOut(t *testing.T) {
	p := newPages(t, &fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	rec := httptest.NewRecorder()
	p.SignOut(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sb-access-token", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
