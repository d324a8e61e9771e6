package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/auth"
	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.PasswordCost = bcrypt.MinCost
}

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	empresas  *MockEmpresaRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	authLog   *recordingAuthActivity
	logins    *loginCounter
}

func newAuthFixture() authFixture {
	f := authFixture{
		users:     new(MockUserRepository),
		empresas:  new(MockEmpresaRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		authLog:   &recordingAuthActivity{},
		logins:    &loginCounter{},
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-with-enough-length-000",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "aprovacrm-test",
			MaxRefreshCount:        3,
		}),
	}
	f.svc = NewAuthService(f.users, f.empresas, f.jwt, f.blacklist, f.authLog, zap.NewNop()).
		WithMetrics(f.logins)
	return f
}

func newTestUser(t *testing.T) (*identity.Empresa, *identity.User) {
	t.Helper()
	empresa, err := identity.NewEmpresa("Crédito Fácil", "")
	require.NoError(t, err)
	user, err := identity.NewUser(empresa.ID, "Maria Silva", "maria@example.com", "segredo123")
	require.NoError(t, err)
	user.ClearDomainEvents()
	return empresa, user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens and records the login", func(t *testing.T) {
		f := newAuthFixture()
		empresa, user := newTestUser(t)
		f.users.On("FindByEmail", ctx, "maria@example.com").Return(user, nil)
		f.empresas.On("FindByID", ctx, empresa.ID).Return(empresa, nil)
		f.users.On("Save", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{Email: " Maria@Example.com ", Password: "segredo123"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Crédito Fácil", result.User.EmpresaNome)
		assert.False(t, result.User.OnboardingCompleted)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, empresa.ID, claims.TenantUUID())
		assert.Equal(t, user.ID, claims.UserUUID())

		assert.Equal(t, []activity.Action{activity.ActionLogin}, f.authLog.actions)
		assert.Equal(t, "Maria Silva", f.authLog.actors[0].UserName)
		assert.Equal(t, 1, f.logins.ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		_, user := newTestUser(t)
		f.users.On("FindByEmail", ctx, "maria@example.com").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "errada123"})

		assert.True(t, errors.Is(err, shared.NewDomainError(CodeInvalidCredentials, "")))
		assert.Empty(t, f.authLog.actions)
		assert.Equal(t, 1, f.logins.failed)
	})

	t.Run("unknown email gives the same error", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "ninguem@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Email: "ninguem@example.com", Password: "segredo123"})

		assert.True(t, errors.Is(err, shared.NewDomainError(CodeInvalidCredentials, "")))
	})

	t.Run("inactive empresa", func(t *testing.T) {
		f := newAuthFixture()
		empresa, user := newTestUser(t)
		empresa.Deactivate()
		f.users.On("FindByEmail", ctx, "maria@example.com").Return(user, nil)
		f.empresas.On("FindByID", ctx, empresa.ID).Return(empresa, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "segredo123"})

		assert.True(t, errors.Is(err, shared.NewDomainError(CodeAccountInactive, "")))
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newAuthFixture()
		_, user := newTestUser(t)
		user.Deactivate()
		f.users.On("FindByEmail", ctx, "maria@example.com").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "segredo123"})

		assert.True(t, errors.Is(err, shared.NewDomainError(CodeAccountInactive, "")))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	empresa, user := newTestUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.empresas.On("FindByID", ctx, empresa.ID).Return(empresa, nil)

	pair, err := f.jwt.GenerateTokenPair(auth.Identity{TenantID: empresa.ID, UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		result, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.AccessToken})
		assert.True(t, errors.Is(err, shared.NewDomainError(CodeTokenInvalid, "")))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-jwt"})
		assert.True(t, errors.Is(err, shared.NewDomainError(CodeTokenInvalid, "")))
	})

	t.Run("used refresh token cannot be replayed", func(t *testing.T) {
		fresh, err := f.jwt.GenerateTokenPair(auth.Identity{TenantID: empresa.ID, UserID: user.ID, Email: user.Email})
		require.NoError(t, err)

		rotated, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: fresh.RefreshToken})
		require.NoError(t, err)

		_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: fresh.RefreshToken})
		assert.True(t, errors.Is(err, shared.NewDomainError(CodeTokenRevoked, "")))

		_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: rotated.RefreshToken})
		assert.NoError(t, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	empresa, user := newTestUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	err := f.svc.Logout(ctx, LogoutInput{
		UserID:   user.ID,
		TenantID: empresa.ID,
		TokenJTI: "jti-123",
		TokenTTL: 10 * time.Minute,
	})

	require.NoError(t, err)
	revoked, err := f.blacklist.IsRevoked(ctx, "jti-123")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, []activity.Action{activity.ActionLogout}, f.authLog.actions)
	assert.Equal(t, "maria@example.com", f.authLog.actors[0].UserEmail)
}

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	empresa, user := newTestUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.empresas.On("FindByID", ctx, empresa.ID).Return(empresa, nil)

	pair, err := f.jwt.GenerateTokenPair(auth.Identity{TenantID: empresa.ID, UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, LogoutInput{
		UserID:       user.ID,
		TenantID:     empresa.ID,
		TokenJTI:     access.ID,
		TokenTTL:     access.RemainingTTL(),
		RefreshToken: pair.RefreshToken,
	}))

	_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
	assert.True(t, errors.Is(err, shared.NewDomainError(CodeTokenRevoked, "")))

	t.Run("refresh token of another user is left alone", func(t *testing.T) {
		other, err := f.jwt.GenerateTokenPair(auth.Identity{TenantID: empresa.ID, UserID: uuid.New(), Email: "joao@example.com"})
		require.NoError(t, err)
		require.NoError(t, f.svc.Logout(ctx, LogoutInput{UserID: user.ID, TenantID: empresa.ID, RefreshToken: other.RefreshToken}))

		claims, err := f.jwt.ValidateRefreshToken(other.RefreshToken)
		require.NoError(t, err)
		revoked, err := f.blacklist.IsRevoked(ctx, claims.ID)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("unusable refresh token does not fail logout", func(t *testing.T) {
		assert.NoError(t, f.svc.Logout(ctx, LogoutInput{UserID: user.ID, TenantID: empresa.ID, RefreshToken: "not-a-jwt"}))
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	empresa, user := newTestUser(t)
	user.CompleteOnboarding()
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.empresas.On("FindByID", ctx, empresa.ID).Return(empresa, nil)

	info, err := f.svc.Me(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, info.ID)
	assert.True(t, info.OnboardingCompleted)

	missing := uuid.New()
	f.users.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	_, err = f.svc.Me(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
