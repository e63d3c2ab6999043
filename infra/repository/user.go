package repository

import (
	"context"
	"strings"

	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) first(ctx context.Context, lock bool, msg, query string, args ...any) (*user.User, error) {
	var m User
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where(query, args...).First(&m).Error; err != nil {
		return nil, notFound(err, msg)
	}
	return userFromModel(&m), nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, false, "user not found", "id = ?", id)
}

func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, true, "user not found", "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, false, "user not found: "+username, "username = ?", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, false, "user not found: "+email, "email = ?", strings.ToLower(email))
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Password:  u.Password,
		Tag:       u.Tag,
		DOB:       u.DOB,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func userFromModel(m *User) *user.User {
	return &user.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Firstname: m.Firstname,
		Lastname:  m.Lastname,
		Password:  m.Password,
		Tag:       m.Tag,
		DOB:       m.DOB,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
