package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/g-result/uoden/internal/errors"
)

// TriggerAuth guards the export trigger with the scheduler's shared
// bearer secret. The comparison is constant-time; authentication beyond
// this single credential is outside the engine's scope.
func TriggerAuth(secret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing authorization header",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr))
				apperrors.HandleError(w, r, apperrors.ErrUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				logger.WarnContext(ctx, "invalid authorization format",
					slog.String("path", r.URL.Path))
				apperrors.HandleError(w, r, apperrors.ErrUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
				logger.WarnContext(ctx, "trigger authentication failed",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr))
				apperrors.HandleError(w, r, apperrors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
