package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "pharmexam"

// CookieName carries the browser's attempt token.
const CookieName = "pe_attempt"

var ErrBadToken = errors.New("bad attempt token")

// Signer issues tokens that tie a client to the one attempt it started.
// It identifies a session, not a person.
type Signer struct {
	hmac []byte
	ttl  time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Signer{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	jwt.RegisteredClaims
}

func (s *Signer) Issue(attemptID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   attemptID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

// Verify returns the attempt id the token was issued for.
func (s *Signer) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return "", ErrBadToken
	}
	c, ok := token.Claims.(*Claims)
	if !ok || c.Subject == "" {
		return "", ErrBadToken
	}
	return c.Subject, nil
}

type ctxKey string

const ctxKeyAttempt ctxKey = "attempt"

func WithAttempt(ctx context.Context, attemptID string) context.Context {
	return context.WithValue(ctx, ctxKeyAttempt, attemptID)
}

func AttemptFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyAttempt); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAttempt rejects requests whose bearer token was not issued for the
// attempt named by attemptID(r).
func RequireAttempt(s *Signer, attemptID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			id, err := s.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil || id != attemptID(r) {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAttempt(r.Context(), id)))
		})
	}
}
