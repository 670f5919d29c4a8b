package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

type ctxKey struct{}

// UserFrom returns the user attached by Authenticate.
func UserFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Authenticate requires a bearer token. A missing token is 401; a bad token or a token
// whose user no longer exists is 403. The user row, and so the role, is loaded per request.
func Authenticate(tokens *Tokens, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r.Header.Get("Authorization"))
			if raw == "" {
				deny(w, http.StatusUnauthorized, "access denied, no token provided")
				return
			}
			id, _, err := tokens.Verify(raw)
			if err != nil {
				deny(w, http.StatusForbidden, "invalid or expired token")
				return
			}
			u, err := users.UserByID(r.Context(), id)
			if errors.Is(err, ErrUserNotFound) {
				deny(w, http.StatusForbidden, "invalid token")
				return
			}
			if err != nil {
				log.WithError(err).WithField("user_id", id).Error("load user")
				deny(w, http.StatusServiceUnavailable, "temporarily unavailable")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, "access denied, no token provided")
			return
		}
		if !u.IsAdmin() {
			deny(w, http.StatusForbidden, "forbidden: admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(h string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
