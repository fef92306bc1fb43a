package middleware

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// Заголовки, которыми шлюз передает аутентифицированного пользователя
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const (
	msgMissingUser = "missing X-User-ID or X-User-Role header"
	msgInvalidUser = "invalid X-User-ID header"
	msgInvalidRole = "invalid X-User-Role header"
)

type actorKey struct{}

// Auth извлекает инициатора запроса из заголовков шлюза.
// Роль system через заголовок не принимается: она зарезервирована для вебхуков.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get(HeaderUserID)
		rawRole := r.Header.Get(HeaderUserRole)
		if rawID == "" || rawRole == "" {
			handlers.RespondUnauthorized(w, msgMissingUser)
			return
		}

		id, err := domain.ParseUserID(rawID)
		if err != nil || id.IsZero() {
			handlers.RespondUnauthorized(w, msgInvalidUser)
			return
		}

		role := domain.Role(rawRole)
		if !role.IsValid() || role == domain.RoleSystem {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		ctx := WithActor(r.Context(), domain.Actor{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor кладет инициатора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext возвращает инициатора, установленного Auth
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}
