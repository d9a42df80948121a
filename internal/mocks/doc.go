// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the
// application, so individual test files can share one set of mocks instead of
// defining their own inline.
//
// Each mock exposes a function field per interface method; when the field is
// nil, a reasonable default implementation backed by the mock's exported data
// fields is used instead:
//
//	mockStore := mocks.NewMockTaskStore()
//	mockStore.GetForUserFn = func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
package mocks
