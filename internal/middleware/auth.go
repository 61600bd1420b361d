package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/auth"
	"github.com/vyrodovalexey/medcatalog/internal/model"
)

// mutatingMethods are the methods that change the catalog.
var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Auth authenticates requests that change the catalog. Reads, CORS
// preflight and WebSocket upgrades pass through untouched.
func Auth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutatingMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			info, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.Error(err),
				)
				writeUnauthorized(w, err)
				return
			}

			logger.Debug("authenticated",
				zap.String("subject", info.Subject),
				zap.String("auth_method", string(info.Method)),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithAuthInfo(r.Context(), info)))
		})
	}
}

// writeUnauthorized writes a 401 in the API's error envelope with a
// challenge matching the failure.
func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", challenge(err))
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: err.Error(),
	})
}

func challenge(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return `Bearer error="invalid_token"`
	case errors.Is(err, auth.ErrInvalidCredentials):
		return `Basic realm="medcatalog"`
	case errors.Is(err, auth.ErrInvalidAPIKey):
		return "API-Key"
	default:
		return `Bearer, Basic realm="medcatalog", API-Key`
	}
}
