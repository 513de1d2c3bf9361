package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionClaims are the JWT claims carried by an extranet session token.
type SessionClaims struct {
	BusinessID string `json:"businessId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// Sessions issues and validates HMAC-signed session tokens. Logged-out
// tokens are denylisted in Redis until they would have expired anyway.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

// NewSessions creates the session manager.
func NewSessions(secret string, ttl time.Duration, redisClient *redis.Client) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, redis: redisClient}
}

// Issue signs a session token for a logged-in identity.
func (s *Sessions) Issue(identity *Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("auth: session secret not configured")
	}
	now := time.Now()
	claims := SessionClaims{
		BusinessID: identity.BusinessID,
		Email:      identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.BusinessID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a session token, including the revocation
// denylist.
func (s *Sessions) Verify(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session token")
	}
	if s.redis != nil && claims.ID != "" {
		n, err := s.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, fmt.Errorf("auth: session revoked")
		}
	}
	return claims, nil
}

// Revoke denylists the token until its natural expiry.
func (s *Sessions) Revoke(ctx context.Context, claims *SessionClaims) error {
	if s.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := s.ttl
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke session: %w", err)
	}
	return nil
}

// Middleware enforces a valid session token on every request and injects
// the claims into the request context.
func (s *Sessions) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := s.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores session claims in context.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

// ClaimsFromContext returns the session claims if present.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*SessionClaims)
	return claims, ok
}

// BusinessIDFromContext returns the authenticated business id if present.
func BusinessIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.BusinessID, true
}
