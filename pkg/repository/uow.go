package repository

import (
	"context"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside one database transaction. Repositories obtained from the
// UnitOfWork passed to fn share that transaction; if fn returns an error every
// write is rolled back. Nested Do calls on a transactional UnitOfWork join the
// outer transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	CardRepository() (CardRepository, error)
	TransactionRepository() (TransactionRepository, error)
	MoneyRequestRepository() (MoneyRequestRepository, error)
	UserRepository() (UserRepository, error)
}
