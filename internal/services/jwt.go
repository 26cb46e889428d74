package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/pkg/config"
)

// BlacklistStore defines the Redis operations needed by the JWT service.
// Abstracting these enables testing with mocks.
type BlacklistStore interface {
	BlacklistToken(ctx context.Context, jti string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTService handles access token generation, validation, and revocation.
//
// Tokens use HS256 signing with the subject claim set to the username.
// There is no refresh flow: access tokens are short-lived and clients
// re-authenticate when one expires. Revoked tokens are blacklisted in
// Redis for their remaining lifetime.
type JWTService struct {
	secret       []byte
	accessExpiry time.Duration
	redis        BlacklistStore
}

// Claims represents the custom JWT claims embedded in tokens.
// Extends the standard JWT claims with a token ID for blacklisting.
type Claims struct {
	JTI                  string `json:"jti"`
	jwt.RegisteredClaims        // Standard JWT claims (sub, exp, iat, nbf)
}

// NewJWTService creates a new JWT service with the provided configuration.
func NewJWTService(cfg *config.JWTConfig, redis BlacklistStore) *JWTService {
	return &JWTService{
		secret:       cfg.Secret,
		accessExpiry: cfg.AccessExpiry,
		redis:        redis,
	}
}

// GenerateToken creates a signed access token for a user.
// The username goes into the subject claim, matching what ValidateToken
// hands back to the authentication middleware for the user lookup.
//
// Returns the signed token and its expiration time.
func (s *JWTService) GenerateToken(username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessExpiry)

	claims := Claims{
		JTI: generateJTI(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Debug().
		Str("username", username).
		Time("expires_at", expiresAt).
		Msg("Access token generated")

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims if valid.
// Performs signature verification, expiry checking, and blacklist
// verification. Used by the authentication middleware on every request
// to a protected endpoint.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	blacklisted, err := s.redis.IsTokenBlacklisted(ctx, claims.JTI)
	if err != nil {
		log.Error().Err(err).Str("jti", claims.JTI).Msg("Failed to check token blacklist")
		return nil, fmt.Errorf("failed to verify token status: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}

// RevokeToken adds a token to the blacklist, immediately invalidating it.
// Used by logout. The blacklist entry's TTL equals the token's remaining
// lifetime, so it disappears when the token would have expired anyway.
//
// Returns nil if the token is already expired or unparseable; logout is
// best-effort and must not fail on a bad token.
func (s *JWTService) RevokeToken(ctx context.Context, tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})

	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse token for revocation")
		return nil
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return fmt.Errorf("invalid token claims")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		// Token already expired, no need to blacklist
		return nil
	}

	if err := s.redis.BlacklistToken(ctx, claims.JTI, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	log.Info().
		Str("jti", claims.JTI).
		Str("username", claims.Subject).
		Msg("Token revoked successfully")

	return nil
}

// generateJTI generates a unique JWT ID using cryptographically secure
// random bytes. Returns a URL-safe base64-encoded string of 16 random bytes.
func generateJTI() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateState generates a random state string for OAuth CSRF protection.
// Generated before redirecting to the provider, stored in Redis with a
// short TTL, and consumed exactly once by the callback.
//
// Returns a URL-safe base64-encoded string of 24 random bytes.
func GenerateState() string {
	b := make([]byte, 24)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
