package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedUserContextKey = ContextKey("authenticatedUser")
)

// AuthenticatedUser is the caller identified by a bearer token.
type AuthenticatedUser struct {
	ID       string
	Username string
	IsAdmin  bool
}

// UserFromContext returns the user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	u, ok := ctx.Value(AuthenticatedUserContextKey).(AuthenticatedUser)
	return u, ok
}

// AuthMiddleware accepts HS256 bearer tokens signed with secret. The subject claim is required.
func AuthMiddleware(secret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Authorization header missing")
				writeAuthError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				writeAuthError(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			user, err := parseToken(tokenString, secret)
			if err != nil {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				writeAuthError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(tokenString, secret string) (AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return AuthenticatedUser{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthenticatedUser{}, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return AuthenticatedUser{}, errors.New("token has no subject")
	}
	username, _ := claims["unm"].(string)
	isAdmin, _ := claims["adm"].(bool)
	return AuthenticatedUser{ID: sub, Username: username, IsAdmin: isAdmin}, nil
}

func writeAuthError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
