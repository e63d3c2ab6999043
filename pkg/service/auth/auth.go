// Package auth verifies credentials and issues the JWTs the HTTP layer
// accepts.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/user"
	"github.com/amirasaad/lendrix/pkg/repository"
	"github.com/amirasaad/lendrix/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dummyHash is compared against when the identity is unknown so both paths
// cost one bcrypt comparison.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger, now: time.Now}
}

// Login checks identity (username or email) and password and returns a
// signed token.
func (s *Service) Login(
	ctx context.Context,
	identity, password string,
) (token string, u *user.User, err error) {
	log := s.logger.With("context", "Login", "identity", identity)
	log.Debug("Login called")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if utils.IsEmail(identity) {
			u, err = users.GetByEmail(ctx, identity)
		} else {
			u, err = users.GetByUsername(ctx, identity)
		}
		if errors.Is(err, domain.ErrNotFound) {
			_ = utils.CheckSecretHash(password, dummyHash)
			return user.ErrUserUnauthorized
		}
		if err != nil {
			return err
		}
		if !utils.CheckSecretHash(password, u.Password) {
			return user.ErrUserUnauthorized
		}
		return nil
	})
	if err != nil {
		log.Error("Login failed", "error", err)
		return "", nil, err
	}

	token, err = s.GenerateToken(u)
	if err != nil {
		log.Error("Login failed", "error", err)
		return "", nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return token, u, nil
}

// GenerateToken signs an HS256 token carrying user_id, username, email and exp.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"email":    u.Email,
		"exp":      s.now().Add(s.cfg.Expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

// CurrentUserID extracts the user id from a token validated by the JWT
// middleware.
func (s *Service) CurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Error("CurrentUserID failed", "error", err)
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return id, nil
}

// CurrentUsername extracts the username claim.
func (s *Service) CurrentUsername(token *jwt.Token) (string, error) {
	if token == nil {
		return "", user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", user.ErrUserUnauthorized
	}
	name, ok := claims["username"].(string)
	if !ok || name == "" {
		return "", user.ErrUserUnauthorized
	}
	return name, nil
}

// ParseToken validates a raw token string with the configured secret.
func (s *Service) ParseToken(raw string) (*jwt.Token, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, user.ErrUserUnauthorized
	}
	return token, nil
}
