package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrPunder/qrstyle/internal/storage"
)

type ctxKey struct{}

// SessionMiddleware находит сессию по токену из заголовка Authorization
// или из cookie и кладет ее в контекст запроса
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Error(w, "session required", http.StatusUnauthorized)
				return
			}
			authHeader = "Bearer " + cookie.Value
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "invalid token format", http.StatusUnauthorized)
			return
		}

		id, err := h.sessions.Parse(parts[1])
		if err != nil {
			h.logger.Infof("Rejected session token: %v", err)
			h.writeError(w, err)
			return
		}

		sess, err := h.store.Get(id)
		if err != nil {
			h.logger.Infof("Session %s unavailable: %v", id, err)
			h.writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *storage.Session {
	sess, _ := ctx.Value(ctxKey{}).(*storage.Session)
	return sess
}
