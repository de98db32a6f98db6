package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-sync/pkg/respond"
)

type contextKey struct{}

var userIDKey contextKey

// Middleware пускает дальше только запросы с валидным Bearer токеном и кладет
// userId в контекст
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID достает userId, положенный Middleware; пустая строка вне сессии
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
