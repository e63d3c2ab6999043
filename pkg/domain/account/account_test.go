package account_test

import (
	"testing"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(s string) money.Money {
	return money.Must(money.NewFromString(s, currency.USD))
}

func newAccount(t *testing.T, balance string) *account.Account {
	t.Helper()
	a, err := account.New().
		WithUserID(uuid.New()).
		WithCurrency(currency.USD).
		WithNumber(42).
		WithBalance(decimal.RequireFromString(balance)).
		Build()
	require.NoError(t, err)
	return a
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	a, err := account.New().WithUserID(uuid.New()).WithCurrency(currency.EUR).Build()
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
	assert.Equal(t, currency.EUR, a.Currency())

	_, err = account.New().WithCurrency(currency.USD).Build()
	assert.ErrorIs(t, err, account.ErrUserRequired)

	_, err = account.New().WithUserID(uuid.New()).WithCurrency("XXX").Build()
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = account.New().WithUserID(uuid.New()).WithBalance(decimal.NewFromInt(-1)).Build()
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestValidateSufficientFunds(t *testing.T) {
	t.Parallel()
	a := newAccount(t, "100.00")

	assert.NoError(t, a.ValidateSufficientFunds(usd("100.00")))
	assert.ErrorIs(t, a.ValidateSufficientFunds(usd("100.01")), domain.ErrInsufficientFunds)
	assert.Equal(t, "100.00 USD", a.Balance.String(), "validation must not mutate the balance")
}

func TestCreditDebit(t *testing.T) {
	t.Parallel()
	a := newAccount(t, "50.00")

	require.NoError(t, a.Credit(usd("25.50")))
	assert.Equal(t, "75.50 USD", a.Balance.String())

	require.NoError(t, a.Debit(usd("75.50")))
	assert.True(t, a.Balance.IsZero())

	err := a.Debit(usd("0.01"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, a.Balance.IsZero())

	assert.ErrorIs(t, a.Credit(usd("0")), account.ErrAmountMustBePositive)
	assert.ErrorIs(t, a.Credit(money.Must(money.NewFromString("1", currency.EUR))), account.ErrCurrencyMismatch)
}

func TestTransactionBuilder(t *testing.T) {
	t.Parallel()
	acctID := uuid.New()
	owner := uuid.New()

	tx, err := account.NewTransaction(account.TypeTransfer).
		WithAmount(decimal.RequireFromString("10"), currency.USD).
		WithParties("1001", "1002").
		WithOwner(owner).
		ForAccount(acctID).
		Build()
	require.NoError(t, err)
	assert.Equal(t, account.StatusCompleted, tx.Status)
	assert.True(t, tx.Fee.IsZero())
	assert.Equal(t, acctID, *tx.AccountID)
	assert.Nil(t, tx.CardID)

	tests := []struct {
		name string
		b    *account.TransactionBuilder
	}{
		{"zero amount", account.NewTransaction(account.TypeCredit).WithOwner(owner).ForAccount(acctID)},
		{"no owner", account.NewTransaction(account.TypeCredit).WithAmount(decimal.NewFromInt(1), currency.USD).ForAccount(acctID)},
		{"no target", account.NewTransaction(account.TypeCredit).WithAmount(decimal.NewFromInt(1), currency.USD).WithOwner(owner)},
		{"both targets", account.NewTransaction(account.TypeCredit).WithAmount(decimal.NewFromInt(1), currency.USD).WithOwner(owner).ForAccount(acctID).ForCard(uuid.New())},
		{"unknown type", account.NewTransaction("REFUND").WithAmount(decimal.NewFromInt(1), currency.USD).WithOwner(owner).ForAccount(acctID)},
		{"negative fee", account.NewTransaction(account.TypeConvert).WithAmount(decimal.NewFromInt(1), currency.USD).WithFee(decimal.NewFromInt(-1)).WithOwner(owner).ForAccount(acctID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
