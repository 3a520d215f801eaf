// Package auth signs the quiz session tokens that let the HTTP API stay
// stateless between quiz steps.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/logger"
	"github.com/david/support-finder/internal/quiz"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTTL applies when a non-positive ttl is configured.
const DefaultTTL = 2 * time.Hour

// Claims carry one session's quiz progress and filter selection.
type Claims struct {
	Domain  string       `json:"dom"`
	Quiz    quiz.State   `json:"quiz"`
	Filters filter.State `json:"filters,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the token subject.
func (c *Claims) SessionID() string { return c.Subject }

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer signs with secret. An empty secret gets an ephemeral random
// one, so tokens do not survive a restart.
func NewTokenIssuer(secret string, ttl time.Duration, log *zap.Logger) (*TokenIssuer, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := []byte(strings.TrimSpace(secret))
	if len(key) == 0 {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate token fallback secret: %w", err)
		}
		key = []byte(base64.RawURLEncoding.EncodeToString(buf))
		logger.OrNop(log).Warn("quiz token secret is not set; using ephemeral in-memory fallback secret")
	}
	return &TokenIssuer{secret: key, ttl: ttl, now: time.Now}, nil
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Issue signs the session state with HS256.
func (i *TokenIssuer) Issue(sessionID, domain string, qs quiz.State, fs filter.State) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	now := i.now()
	claims := Claims{
		Domain:  domain,
		Quiz:    qs,
		Filters: fs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies the signature and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	if claims.Domain == "" {
		return nil, fmt.Errorf("%w: missing domain", ErrInvalidToken)
	}
	if claims.Quiz.Answers == nil {
		claims.Quiz.Answers = map[string]string{}
	}
	if claims.Filters == nil {
		claims.Filters = filter.State{}
	}
	return claims, nil
}
