package middleware

import (
	"net/http"
	"strings"

	"github.com/MrPunder/qrstyle/internal/logger"
)

type TokenAuthConfig struct {
	// Пустой токен отключает проверку
	APIToken string
	Logger   logger.Logger
}

// TokenAuth закрывает создание сессий токеном API.
// Остальные маршруты /sessions проверяются токеном самой сессии.
// Страница с формой при 401 просит ввести токен API и передает его
// в заголовке Authorization, без токена она сессию не получит.
type TokenAuth struct {
	config TokenAuthConfig
}

func NewTokenAuth(config TokenAuthConfig) *TokenAuth {
	return &TokenAuth{
		config: config,
	}
}

func (ta *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ta.config.APIToken == "" || !requiresAPIToken(r) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ta.config.Logger.Errorf("Попытка доступа без токена: %s %s", r.Method, r.URL.Path)
			http.Error(w, "Unauthorized: Token required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			ta.config.Logger.Errorf("Неверный формат токена: %s", authHeader)
			http.Error(w, "Unauthorized: Invalid token format", http.StatusUnauthorized)
			return
		}

		if parts[1] != ta.config.APIToken {
			ta.config.Logger.Errorf("Неверный токен API для %s %s", r.Method, r.URL.Path)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requiresAPIToken(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == "/sessions"
}
