package middleware

import (
	"context"
	"net/http"
	"strings"

	"mis/internal/domain/auth"
	"mis/internal/transport/http/api"
)

const ctxKeyUser ctxKey = "user"

// UserContext is the authenticated identity attached to a request.
type UserContext struct {
	UserKey string
	Name    string
	Role    string
}

func (u UserContext) HomePath() string {
	if strings.EqualFold(u.Role, auth.RoleAdmin) {
		return "/api/v1/admin/dashboard"
	}
	return "/api/v1/user/dashboard"
}

// Auth attaches the token's identity when a valid bearer token is
// present. Enforcement is left to RequireAuth and RequireRole so public
// routes share the same chain.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserKey: claims.UserKey,
				Name:    claims.Name,
				Role:    claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a subtree to one role. The rejection message names
// the caller's own landing path so clients can redirect.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !strings.EqualFold(user.Role, role) {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed; your area is "+user.HomePath(), GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
