package middleware

import (
	"net/http"
	"strings"

	"mini-pos/internal/auth"
	"mini-pos/internal/model"

	"github.com/rs/zerolog"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "pos_session"

// TokenFromRequest returns the session token from the Authorization bearer
// header or, failing that, the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession resolves the session token and attaches the identity to the
// request context. Requests without a valid session get 401.
func RequireSession(sessions auth.SessionStore, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			identity, err := sessions.Get(r.Context(), token)
			if err != nil {
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}
			if identity == nil {
				logger.Warn().Str("path", r.URL.Path).Msg("unknown or expired session")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequirePermission lets the request through only when the session's role
// holds perm. It must run after RequireSession.
func RequirePermission(perm auth.Permission, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			if err := auth.Authorize(identity.Role, perm); err != nil {
				logger.Warn().
					Str("username", identity.Username).
					Str("role", string(identity.Role)).
					Str("permission", string(perm)).
					Msg("access denied")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
