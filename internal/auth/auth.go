package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoToken = errors.New("no access token")
var ErrInvalidToken = errors.New("invalid access token")

// User is the caller as asserted by the auth backend's access token.
type User struct {
	ID           string
	Email        string
	FullName     string
	AvatarURL    string
	Provider     string
	LastSignInAt *time.Time
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (User, error)
}

type amrEntry struct {
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
	AMR          []amrEntry     `json:"amr"`
}

// Verifier checks HS256 access tokens issued by the auth backend.
type Verifier struct {
	secret     []byte
	audience   string
	cookieName string
	now        func() time.Time
}

func NewVerifier(secret, audience, cookieName string) *Verifier {
	return &Verifier{
		secret:     []byte(secret),
		audience:   audience,
		cookieName: cookieName,
		now:        time.Now,
	}
}

func (v *Verifier) Authenticate(r *http.Request) (User, error) {
	token, err := TokenFromRequest(r, v.cookieName)
	if err != nil {
		return User{}, err
	}
	return v.Verify(token)
}

func (v *Verifier) Verify(token string) (User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var c accessClaims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(c.Subject); err != nil {
		return User{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	u := User{
		ID:        c.Subject,
		Email:     c.Email,
		FullName:  stringClaim(c.UserMetadata, "full_name"),
		AvatarURL: stringClaim(c.UserMetadata, "avatar_url"),
		Provider:  stringClaim(c.AppMetadata, "provider"),
	}
	var last int64
	for _, a := range c.AMR {
		last = max(last, a.Timestamp)
	}
	if last > 0 {
		t := time.Unix(last, 0).UTC()
		u.LastSignInAt = &t
	}
	return u, nil
}

func stringClaim(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// TokenFromRequest prefers a bearer token and falls back to the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
		return "", ErrNoToken
	}
	if cookieName == "" {
		return "", ErrNoToken
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoToken
	}
	return c.Value, nil
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// Middleware attaches the authenticated user, if any, to the request context.
// Rejecting anonymous callers is left to the routes.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := a.Authenticate(r); err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}
