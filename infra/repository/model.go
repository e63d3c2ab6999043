package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"uniqueIndex;not null;size:50"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Firstname string    `gorm:"size:100"`
	Lastname  string    `gorm:"size:100"`
	Password  string    `gorm:"not null"`
	Tag       string    `gorm:"size:64"`
	DOB       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// Account represents an account record in the database.
// (user_id, currency) is unique: one account per currency per user.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_currency"`
	Currency  string          `gorm:"type:varchar(3);not null;uniqueIndex:idx_accounts_user_currency"`
	Number    int64           `gorm:"not null;uniqueIndex"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string { return "accounts" }

// Card represents a card record. user_id is unique: one card per user.
type Card struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Number         string          `gorm:"size:16;not null;uniqueIndex"`
	Holder         string          `gorm:"size:201"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	BillingAddress string          `gorm:"size:255"`
	PINHash        string          `gorm:"column:pin_hash;not null"`
	CVV            string          `gorm:"column:cvv;size:3;not null"`
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Card) TableName() string { return "cards" }

// Transaction represents a persisted, append-only ledger entry.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Type        string          `gorm:"size:16;not null;index:idx_transactions_owner_type_created,priority:2"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Fee         decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Sender      string          `gorm:"size:64"`
	Receiver    string          `gorm:"size:64"`
	Status      string          `gorm:"size:16;not null"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_owner_type_created,priority:1"`
	AccountID   *uuid.UUID      `gorm:"type:uuid;index"`
	CardID      *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"size:255"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_transactions_owner_type_created,priority:3"`
}

func (Transaction) TableName() string { return "transactions" }

// MoneyRequest represents a persisted money request.
type MoneyRequest struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RequesterID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequesterUsername string          `gorm:"size:50;not null"`
	RecipientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecipientUsername string          `gorm:"size:50;not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	Status            string          `gorm:"size:16;not null"`
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

func (MoneyRequest) TableName() string { return "money_requests" }

// AutoMigrate creates or updates every table. Used for SQLite; PostgreSQL
// schemas come from the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Account{}, &Card{}, &Transaction{}, &MoneyRequest{})
}
