package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResetUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$originalhashvalue",
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	gen := NewTestResetTokenGenerator(testSecret, time.Hour, func() time.Time {
		return fixedTime
	})

	user := testResetUser()
	token, err := gen.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, gen.Check(user, token))
}

func TestResetTokenInvalidatedByPasswordChange(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	gen := NewTestResetTokenGenerator(testSecret, time.Hour, func() time.Time {
		return fixedTime
	})

	user := testResetUser()
	token, err := gen.Generate(user)
	require.NoError(t, err)

	// Completing a reset replaces the stored hash; the outstanding token
	// must stop validating.
	user.HashedPassword = "$2a$10$replacementhashvalue"
	assert.ErrorIs(t, gen.Check(user, token), ErrInvalidResetToken)
}

func TestResetTokenExpiry(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	gen := NewTestResetTokenGenerator(testSecret, time.Hour, func() time.Time {
		return now
	})

	user := testResetUser()
	token, err := gen.Generate(user)
	require.NoError(t, err)

	now = issued.Add(59 * time.Minute)
	assert.NoError(t, gen.Check(user, token))

	now = issued.Add(61 * time.Minute)
	assert.ErrorIs(t, gen.Check(user, token), ErrInvalidResetToken)
}

func TestResetTokenRejectsTampering(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	gen := NewTestResetTokenGenerator(testSecret, time.Hour, func() time.Time {
		return fixedTime
	})

	user := testResetUser()
	token, err := gen.Generate(user)
	require.NoError(t, err)

	flipped := "0"
	if token[len(token)-1] == '0' {
		flipped = "1"
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "abcdef0123456789"},
		{"bad timestamp", "!!!-deadbeef"},
		{"flipped mac byte", token[:len(token)-1] + flipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, gen.Check(user, tt.token), ErrInvalidResetToken)
		})
	}

	t.Run("different user", func(t *testing.T) {
		other := testResetUser()
		assert.ErrorIs(t, gen.Check(other, token), ErrInvalidResetToken)
	})
}

func TestResetTokenGenerateRequiresAccountState(t *testing.T) {
	t.Parallel()

	gen := NewTestResetTokenGenerator(testSecret, time.Hour, time.Now)

	_, err := gen.Generate(nil)
	assert.Error(t, err)

	user := testResetUser()
	user.HashedPassword = ""
	_, err = gen.Generate(user)
	assert.Error(t, err)
}
