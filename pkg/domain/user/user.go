package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/google/uuid"
)

// TagPrefix prefixes every user's public tag.
const TagPrefix = "lendrix_"

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = domain.NewError(domain.ErrNotFound, "user not found")
	// ErrUserUnauthorized is returned on bad credentials.
	ErrUserUnauthorized = domain.NewError(domain.ErrUnauthorized, "user unauthorized")
)

// User represents a user in the system.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Password  string    `json:"-"`
	Tag       string    `json:"tag"`
	DOB       time.Time `json:"dob"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// Profile is the caller-provided part of a new user.
type Profile struct {
	Username  string
	Email     string
	Firstname string
	Lastname  string
	DOB       time.Time
}

// New creates a User. passwordHash must already be hashed.
func New(p Profile, passwordHash string) (*User, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, domain.NewError(domain.ErrValidation, "username cannot be empty")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return nil, domain.NewError(domain.ErrValidation, "email is invalid")
	}
	if passwordHash == "" {
		return nil, domain.NewError(domain.ErrValidation, "password cannot be empty")
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
		Firstname: strings.TrimSpace(p.Firstname),
		Lastname:  strings.TrimSpace(p.Lastname),
		Password:  passwordHash,
		Tag:       TagPrefix + username,
		DOB:       p.DOB,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName is what gets embossed on a card.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}
