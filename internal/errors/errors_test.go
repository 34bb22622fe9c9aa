package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("email", "must be a valid email address"), http.StatusBadRequest},
		{"uniqueness", WrapError(ErrEmailExists, errors.New("23505")), http.StatusConflict},
		{"hashing", WrapError(ErrHashingFailed, errors.New("oom")), http.StatusInternalServerError},
		{"storage", WrapError(ErrStorageFailure, errors.New("conn reset")), http.StatusInternalServerError},
		{"not found", ErrUserNotFound, http.StatusNotFound},
		{"self deletion", ErrSelfDeletion, http.StatusForbidden},
		{"token", ErrInvalidToken, http.StatusUnauthorized},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped domain", fmt.Errorf("service: %w", ErrEmailExists), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	unique := WrapError(ErrEmailExists, errors.New("duplicate key"))
	storage := WrapError(ErrStorageFailure, errors.New("duplicate key"))

	assert.True(t, IsUniquenessViolation(unique))
	assert.False(t, IsStorageFailure(unique))
	assert.True(t, IsStorageFailure(storage))
	assert.False(t, IsUniquenessViolation(storage))
	assert.False(t, IsHashingFailure(storage))
	assert.False(t, IsValidation(storage))
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", WrapError(ErrEmailExists, errors.New("pg")))

	assert.True(t, errors.Is(wrapped, ErrEmailExists))
	assert.False(t, errors.Is(wrapped, ErrStorageFailure))
}

func TestGetErrorMessage_HidesCause(t *testing.T) {
	err := WrapError(ErrStorageFailure, errors.New("password=hunter2 connection refused"))

	assert.Equal(t, "storage failure", GetErrorMessage(err))
	assert.Equal(t, "internal server error", GetErrorMessage(errors.New("raw")))
	assert.Empty(t, GetErrorMessage(nil))
}
