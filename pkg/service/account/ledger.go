package account

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/money"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger moves money between accounts inside a caller's unit of work. It
// never commits on its own: every write lands in the transaction the
// repositories were obtained from.
type Ledger struct {
	accounts repository.AccountRepository
	txs      repository.TransactionRepository
}

// NewLedger binds a Ledger to uow.
func NewLedger(uow repository.UnitOfWork) (*Ledger, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	txs, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return &Ledger{accounts: accounts, txs: txs}, nil
}

func (l *Ledger) Accounts() repository.AccountRepository { return l.accounts }

func (l *Ledger) Transactions() repository.TransactionRepository { return l.txs }

// LockPair takes row locks on both accounts in ascending id order and returns
// them in argument order.
func (l *Ledger) LockPair(ctx context.Context, a, b uuid.UUID) (*account.Account, *account.Account, error) {
	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*account.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		if _, ok := locked[id]; ok {
			continue
		}
		acc, err := l.accounts.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = acc
	}
	return locked[a], locked[b], nil
}

// TransactionParams describes an account mutation the caller already applied.
type TransactionParams struct {
	Type        account.TransactionType
	Owner       uuid.UUID
	Account     *account.Account
	Amount      money.Money
	Fee         decimal.Decimal
	Sender      string
	Receiver    string
	Description string
}

// CreateAccountTransaction records an audit entry. It never touches balances.
func (l *Ledger) CreateAccountTransaction(ctx context.Context, p TransactionParams) (*account.Transaction, error) {
	tx, err := account.NewTransaction(p.Type).
		WithAmount(p.Amount.Amount(), p.Amount.Currency()).
		WithFee(p.Fee).
		WithParties(p.Sender, p.Receiver).
		WithOwner(p.Owner).
		ForAccount(p.Account.ID).
		WithDescription(p.Description).
		Build()
	if err != nil {
		return nil, err
	}
	if err := l.txs.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record %s transaction: %w", p.Type, err)
	}
	return tx, nil
}

// Transfer is the pair of entries a completed transfer leaves behind.
type Transfer struct {
	Debit  *account.Transaction
	Credit *account.Transaction
}

// PerformTransfer debits sender and credits receiver by amount, then records
// a TRANSFER entry owned by actor and a CREDIT entry owned by the receiver's
// owner. Both accounts must already be locked by the caller.
func (l *Ledger) PerformTransfer(
	ctx context.Context,
	sender, receiver *account.Account,
	amount money.Money,
	actor uuid.UUID,
) (*Transfer, error) {
	if sender.ID == receiver.ID {
		return nil, account.ErrCannotTransferToSameAccount
	}
	if !amount.IsPositive() {
		return nil, account.ErrAmountMustBePositive
	}
	if sender.Currency() != receiver.Currency() || amount.Currency() != sender.Currency() {
		return nil, account.ErrCurrencyMismatch
	}
	if err := sender.ValidateSufficientFunds(amount); err != nil {
		return nil, err
	}
	if err := sender.Debit(amount); err != nil {
		return nil, err
	}
	if err := receiver.Credit(amount); err != nil {
		return nil, err
	}
	if err := l.accounts.Update(ctx, sender); err != nil {
		return nil, fmt.Errorf("update sender account: %w", err)
	}
	if err := l.accounts.Update(ctx, receiver); err != nil {
		return nil, fmt.Errorf("update receiver account: %w", err)
	}

	from := strconv.FormatInt(sender.Number, 10)
	to := strconv.FormatInt(receiver.Number, 10)
	debit, err := l.CreateAccountTransaction(ctx, TransactionParams{
		Type:        account.TypeTransfer,
		Owner:       actor,
		Account:     sender,
		Amount:      amount,
		Sender:      from,
		Receiver:    to,
		Description: "Transfer to " + to,
	})
	if err != nil {
		return nil, err
	}
	credit, err := l.CreateAccountTransaction(ctx, TransactionParams{
		Type:        account.TypeCredit,
		Owner:       receiver.UserID,
		Account:     receiver,
		Amount:      amount,
		Sender:      from,
		Receiver:    to,
		Description: "Transfer from " + from,
	})
	if err != nil {
		return nil, err
	}
	return &Transfer{Debit: debit, Credit: credit}, nil
}

// Conversion is the outcome of moving value between two currencies.
type Conversion struct {
	Transaction *account.Transaction
	Debited     money.Money
	Credited    money.Money
	Fee         money.Money
	Rate        decimal.Decimal
}

// ConvertCurrency debits amount from src and credits dst with
// round(amount*rate) less a fee of feeRate times that converted value.
// Both accounts must already be locked by the caller.
func (l *Ledger) ConvertCurrency(
	ctx context.Context,
	owner uuid.UUID,
	src, dst *account.Account,
	amount money.Money,
	rate, feeRate decimal.Decimal,
) (*Conversion, error) {
	if !amount.IsPositive() {
		return nil, account.ErrAmountMustBePositive
	}
	if src.ID == dst.ID || src.Currency() == dst.Currency() {
		return nil, ErrSameCurrencyConversion
	}
	if amount.Currency() != src.Currency() {
		return nil, account.ErrCurrencyMismatch
	}
	converted, err := amount.Convert(rate, dst.Currency())
	if err != nil {
		return nil, err
	}
	fee := converted.Percent(feeRate)
	credited, err := converted.Sub(fee)
	if err != nil {
		return nil, err
	}
	if !credited.IsPositive() {
		return nil, ErrConversionTooSmall
	}

	if err := src.Debit(amount); err != nil {
		return nil, err
	}
	if err := dst.Credit(credited); err != nil {
		return nil, err
	}
	if err := l.accounts.Update(ctx, src); err != nil {
		return nil, fmt.Errorf("update source account: %w", err)
	}
	if err := l.accounts.Update(ctx, dst); err != nil {
		return nil, fmt.Errorf("update destination account: %w", err)
	}

	tx, err := l.CreateAccountTransaction(ctx, TransactionParams{
		Type:        account.TypeConvert,
		Owner:       owner,
		Account:     src,
		Amount:      amount,
		Fee:         fee.Amount(),
		Sender:      src.Currency().String(),
		Receiver:    dst.Currency().String(),
		Description: fmt.Sprintf("Converted %s to %s at %s", amount, credited, rate),
	})
	if err != nil {
		return nil, err
	}
	return &Conversion{
		Transaction: tx,
		Debited:     amount,
		Credited:    credited,
		Fee:         fee,
		Rate:        rate,
	}, nil
}
