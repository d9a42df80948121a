package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rgoodall/taskly-api/internal/config"
	"github.com/rgoodall/taskly-api/internal/domain"
)

// ResetTokenGenerator mints and checks stateless password-reset tokens.
// Tokens are never stored: each one is an HMAC over the user's identity,
// current password hash, and issue timestamp. Because the password hash is
// part of the MAC input, completing a reset invalidates every token issued
// before it.
type ResetTokenGenerator interface {
	// Generate mints a reset token bound to the user's current account state.
	Generate(user *domain.User) (string, error)

	// Check verifies a token against the user's current account state.
	// Returns ErrInvalidResetToken if the token is malformed, tampered,
	// expired, or was issued before the last password change.
	Check(user *domain.User, token string) error
}

// hmacResetTokenGenerator implements ResetTokenGenerator with HMAC-SHA256.
// The token wire format is "<timestamp-base36>-<mac-hex>".
type hmacResetTokenGenerator struct {
	key      []byte
	lifetime time.Duration
	timeFunc func() time.Time // Injectable for testing
}

// Ensure hmacResetTokenGenerator implements ResetTokenGenerator interface
var _ ResetTokenGenerator = (*hmacResetTokenGenerator)(nil)

// NewResetTokenGenerator creates a reset token generator keyed with the
// application's JWT secret.
func NewResetTokenGenerator(cfg config.AuthConfig) (ResetTokenGenerator, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacResetTokenGenerator{
		key:      []byte(cfg.JWTSecret),
		lifetime: time.Duration(cfg.ResetTokenLifetimeMinutes) * time.Minute,
		timeFunc: time.Now,
	}, nil
}

// Generate implements ResetTokenGenerator.Generate.
func (g *hmacResetTokenGenerator) Generate(user *domain.User) (string, error) {
	if user == nil || user.HashedPassword == "" {
		return "", fmt.Errorf("cannot generate reset token without account state")
	}

	ts := g.timeFunc().UTC().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.mac(user, ts), nil
}

// Check implements ResetTokenGenerator.Check.
func (g *hmacResetTokenGenerator) Check(user *domain.User, token string) error {
	if user == nil || token == "" {
		return ErrInvalidResetToken
	}

	tsPart, macPart, found := strings.Cut(token, "-")
	if !found {
		return ErrInvalidResetToken
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return ErrInvalidResetToken
	}

	// Recompute the MAC from current account state. A password change
	// alters the hash and therefore the expected MAC.
	if !hmac.Equal([]byte(g.mac(user, ts)), []byte(macPart)) {
		return ErrInvalidResetToken
	}

	now := g.timeFunc().UTC()
	issued := time.Unix(ts, 0).UTC()
	if issued.After(now) || now.Sub(issued) > g.lifetime {
		return ErrInvalidResetToken
	}

	return nil
}

// mac computes the hex HMAC-SHA256 over the token's bound state.
func (g *hmacResetTokenGenerator) mac(user *domain.User, ts int64) string {
	h := hmac.New(sha256.New, g.key)
	h.Write([]byte(user.ID.String()))
	h.Write([]byte{0})
	h.Write([]byte(user.HashedPassword))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(h.Sum(nil))
}
