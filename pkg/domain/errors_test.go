package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsItsKind(t *testing.T) {
	err := Errorf(ErrNotFound, "No %s account found", "EUR")
	assert.EqualError(t, err, "No EUR account found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)

	wrapped := fmt.Errorf("transfer: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, ErrNotFound, KindOf(wrapped))

	assert.EqualError(t, NewError(ErrForbidden, ""), "forbidden")
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(nil))
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Equal(t, ErrLimitExceeded, KindOf(NewError(ErrLimitExceeded, "Daily transfer limit exceeded.")))
}

func TestWhenNotFound(t *testing.T) {
	replacement := NewError(ErrNotFound, "Receiver account not found")
	assert.Same(t, replacement, WhenNotFound(ErrNotFound, replacement))

	other := errors.New("connection reset")
	assert.Same(t, other, WhenNotFound(other, replacement))
	assert.Nil(t, WhenNotFound(nil, replacement))
}

func TestWhenAlreadyExists(t *testing.T) {
	replacement := NewError(ErrAlreadyExists, "USD account already exists")
	assert.Equal(t, replacement, WhenAlreadyExists(fmt.Errorf("insert: %w", ErrAlreadyExists), replacement))
	assert.Nil(t, WhenAlreadyExists(nil, replacement))
}
