package httpadapter

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/auth"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/observability"
)

// loggingContext injects a request-scoped logger into the context and
// logs one line per request.
func loggingContext(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger := base.With(
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ctx := observability.WithLogger(r.Context(), logger)

			next.ServeHTTP(w, r.WithContext(ctx))

			logger.Info("request done", zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		})
	}
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.FromContext(r.Context()).Error("panic recovered", zap.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerAuth resolves the Authorization header into a user in context.
// Requests without a token stay anonymous; public reads still work, and
// anything else fails at the service layer with ErrNotAuthenticated.
func bearerAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header || raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "malformed authorization header"})
				return
			}

			userID, err := verifier.Verify(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid session token"})
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), userID)))
		})
	}
}
