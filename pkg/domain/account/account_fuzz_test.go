package account_test

import (
	"testing"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FuzzAccountCredit checks Credit never corrupts the balance.
func FuzzAccountCredit(f *testing.F) {
	userID := uuid.New()
	f.Add(100.0, "USD")
	f.Add(-50.0, "EUR")
	f.Add(0.0, "JPY")
	f.Add(1e12, "ZZZ")
	f.Fuzz(func(t *testing.T, amount float64, cc string) {
		acc, err := account.New().WithUserID(userID).WithCurrency(currency.USD).Build()
		if err != nil {
			t.Skip()
		}
		mon, err := money.NewFromFloat(amount, currency.Code(cc))
		if err != nil {
			t.Skip()
		}
		_ = acc.Credit(mon)
		if acc.Balance.IsNegative() {
			t.Errorf("balance is negative after credit: %v (amount=%v, currency=%q)", acc.Balance, amount, cc)
		}
		if acc.Currency() != currency.USD {
			t.Errorf("account currency changed to %q", acc.Currency())
		}
	})
}

// FuzzAccountDebit checks Debit never takes the balance below zero.
func FuzzAccountDebit(f *testing.F) {
	userID := uuid.New()
	f.Add(100.0, "USD")
	f.Add(-50.0, "EUR")
	f.Add(0.0, "JPY")
	f.Add(1e6, "USD")
	f.Add(1e7, "USD")
	f.Fuzz(func(t *testing.T, amount float64, cc string) {
		acc, err := account.New().
			WithUserID(userID).
			WithCurrency(currency.USD).
			WithBalance(decimal.NewFromInt(1_000_000)).
			Build()
		if err != nil {
			t.Skip()
		}
		mon, err := money.NewFromFloat(amount, currency.Code(cc))
		if err != nil {
			t.Skip()
		}
		before := acc.Balance
		if err := acc.Debit(mon); err != nil && !acc.Balance.Equals(before) {
			t.Errorf("failed debit mutated balance: %v -> %v", before, acc.Balance)
		}
		if acc.Balance.IsNegative() {
			t.Errorf("balance is negative after debit: %v (amount=%v, currency=%q)", acc.Balance, amount, cc)
		}
	})
}
