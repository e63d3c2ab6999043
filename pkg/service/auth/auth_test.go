package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/service/auth"
	"github.com/amirasaad/lendrix/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) { testutils.Main(m) }

func TestLogin(t *testing.T) {
	env := testutils.NewEnv(t)
	alice := env.SeedUser(t, "alice")
	svc := auth.New(env.Uow, env.Config.Auth.Jwt, env.Logger)

	for _, identity := range []string{"alice", "alice@example.com"} {
		t.Run(identity, func(t *testing.T) {
			token, u, err := svc.Login(context.Background(), identity, testutils.Password)
			require.NoError(t, err)
			assert.Equal(t, alice.ID, u.ID)

			parsed, err := svc.ParseToken(token)
			require.NoError(t, err)
			id, err := svc.CurrentUserID(parsed)
			require.NoError(t, err)
			assert.Equal(t, alice.ID, id)
			name, err := svc.CurrentUsername(parsed)
			require.NoError(t, err)
			assert.Equal(t, "alice", name)
		})
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	env := testutils.NewEnv(t)
	env.SeedUser(t, "alice")
	svc := auth.New(env.Uow, env.Config.Auth.Jwt, env.Logger)

	_, _, err := svc.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), "nobody", testutils.Password)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestParseToken(t *testing.T) {
	env := testutils.NewEnv(t)
	alice := env.SeedUser(t, "alice")
	svc := auth.New(env.Uow, env.Config.Auth.Jwt, env.Logger)

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.New(env.Uow, &config.Jwt{Secret: "another-secret", Expiry: time.Hour}, env.Logger)
		token, err := other.GenerateToken(alice)
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		claims := jwt.MapClaims{
			"user_id": alice.ID.String(),
			"exp":     time.Now().Add(-time.Minute).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(env.Config.Auth.Jwt.Secret))
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("missing claims", func(t *testing.T) {
		_, err := svc.CurrentUserID(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = svc.CurrentUsername(nil)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
