package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/example/giftbox-shop/internal/session"
)

const SessionCookieName = "cart_session"

type contextKey string

const SessionContextKey contextKey = "session"

// SessionMiddleware resolves the guest session for every request. A
// valid cookie keeps its session id; anything else gets a fresh
// session and a new cookie.
func SessionMiddleware(jwtService *session.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if id, err := jwtService.ValidateToken(cookie.Value); err == nil {
					sessionID = id
				}
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				token, expiresAt, err := jwtService.GenerateToken(sessionID)
				if err != nil {
					http.Error(w, "failed to create session", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					Expires:  expiresAt,
					MaxAge:   int(time.Until(expiresAt).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID retrieves the session id from the request context
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionContextKey).(string)
	return id
}
