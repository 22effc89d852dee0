package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/logger"
)

// RequestLogger logs method, path, status and latency for every request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type staffIDKey struct{}

// StaffIdentity resolves the acting staff member for audit stamping. With a
// secret configured it requires a Bearer token whose subject is the staff id;
// without one it falls back to the X-Staff-ID header for development setups.
func StaffIdentity(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				if raw := r.Header.Get("X-Staff-ID"); raw != "" {
					if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
						next.ServeHTTP(w, r.WithContext(withStaffID(r.Context(), id)))
						return
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" || tokenString == authHeader {
				writeFailure(w, http.StatusUnauthorized, "authorization required")
				return
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeFailure(w, http.StatusUnauthorized, "invalid token")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil {
				writeFailure(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || id <= 0 {
				writeFailure(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(withStaffID(r.Context(), id)))
		})
	}
}

func withStaffID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, staffIDKey{}, id)
}

// staffIDFromContext returns the resolved staff id, or zero when anonymous.
func staffIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(staffIDKey{}).(int64)
	return id
}
