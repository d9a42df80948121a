package auth

import (
	"time"

	"github.com/rgoodall/taskly-api/internal/config"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
// This is the single source of truth for JWT test config.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long", // At least 32 chars
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		ResetTokenLifetimeMinutes:   60,
	}
}

// NewTestJWTService creates a JWT service with the default test configuration
// and a fixed time function for predictable expiry behavior.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        lifetime,
		refreshTokenLifetime: 24 * lifetime,
		timeFunc:             timeFunc,
		clockSkew:            0,
	}
}

// NewTestResetTokenGenerator creates a reset token generator with an
// injectable clock for expiry tests.
func NewTestResetTokenGenerator(secret string, lifetime time.Duration, timeFunc func() time.Time) ResetTokenGenerator {
	return &hmacResetTokenGenerator{
		key:      []byte(secret),
		lifetime: lifetime,
		timeFunc: timeFunc,
	}
}
