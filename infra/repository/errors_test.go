package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	connReset := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"duplicate key", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"record not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"foreign key", gorm.ErrForeignKeyViolated, domain.ErrValidation},
		{"wrapped duplicate", fmt.Errorf("insert card: %w", gorm.ErrDuplicatedKey), domain.ErrAlreadyExists},
		{"joined not found", errors.Join(connReset, gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"unrelated error passes through", connReset, connReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapGormErrorToDomain(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, WrapError(func() error { return nil }))
	assert.ErrorIs(t, WrapError(func() error { return gorm.ErrDuplicatedKey }), domain.ErrAlreadyExists)

	called := false
	_ = WrapError(func() error { called = true; return nil })
	assert.True(t, called)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	err := notFound(gorm.ErrRecordNotFound, "Money request not found")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Money request not found", err.Error())

	// other kinds keep their own mapping
	err = notFound(gorm.ErrDuplicatedKey, "Money request not found")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	connReset := errors.New("connection reset")
	assert.Equal(t, connReset, notFound(connReset, "Money request not found"))
}

func TestRepositories_MissingRows(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	missing := uuid.New()

	accounts := NewAccountRepository(db)
	cards := NewCardRepository(db)
	requests := NewMoneyRequestRepository(db)
	users := NewUserRepository(db)

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"account by id", func() error { _, err := accounts.Get(ctx, missing); return err }, "Account not found"},
		{"account for update", func() error { _, err := accounts.GetForUpdate(ctx, missing); return err }, "Account not found"},
		{"account by number", func() error { _, err := accounts.GetByNumber(ctx, 9999); return err }, "Account not found"},
		{"account by currency", func() error { _, err := accounts.GetByUserAndCurrency(ctx, missing, "USD"); return err }, "Account not found"},
		{"card by user", func() error { _, err := cards.GetByUser(ctx, missing); return err }, "No card found for this user"},
		{"card for update", func() error { _, err := cards.GetByUserForUpdate(ctx, missing); return err }, "No card found for this user"},
		{"card delete", func() error { return cards.Delete(ctx, missing) }, "No card found for this user"},
		{"money request", func() error { _, err := requests.Get(ctx, missing); return err }, "Money request not found"},
		{"money request for update", func() error { _, err := requests.GetForUpdate(ctx, missing); return err }, "Money request not found"},
		{"user by id", func() error { _, err := users.Get(ctx, missing); return err }, "user not found"},
		{"user by username", func() error { _, err := users.GetByUsername(ctx, "ghost"); return err }, "user not found: ghost"},
		{"user by email", func() error { _, err := users.GetByEmail(ctx, "ghost@example.com"); return err }, "user not found: ghost@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}
