package mocks

import (
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/service/auth"
)

// MockResetTokenGenerator implements auth.ResetTokenGenerator for testing
type MockResetTokenGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(user *domain.User) (string, error)

	// CheckFn allows test cases to mock the Check behavior
	CheckFn func(user *domain.User, token string) error

	// Default values used when functions aren't explicitly defined
	Token         string
	GenerateError error
	CheckError    error
}

// Ensure MockResetTokenGenerator implements auth.ResetTokenGenerator
var _ auth.ResetTokenGenerator = (*MockResetTokenGenerator)(nil)

// Generate implements the auth.ResetTokenGenerator interface
func (m *MockResetTokenGenerator) Generate(user *domain.User) (string, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(user)
	}

	if m.Token != "" {
		return m.Token, m.GenerateError
	}
	return "reset-token", m.GenerateError
}

// Check implements the auth.ResetTokenGenerator interface
func (m *MockResetTokenGenerator) Check(user *domain.User, token string) error {
	if m.CheckFn != nil {
		return m.CheckFn(user, token)
	}

	return m.CheckError
}
