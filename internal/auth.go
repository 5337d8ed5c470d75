package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrUnauthorized = errors.New("unauthorized")

// IssueAdminToken signs an HS256 token for the admin routes.
func IssueAdminToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("issue token: admin secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   CompanyDomain,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAdminToken checks a bearer token and returns its subject.
func VerifyAdminToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// RequireAdmin guards a route group with a bearer token signed by secret.
func RequireAdmin(secret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			subject, err := VerifyAdminToken(secret, token)
			if err != nil {
				logger.Warn("admin token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.Debug("admin token accepted", zap.String("subject", subject))
			next.ServeHTTP(w, r)
		})
	}
}
