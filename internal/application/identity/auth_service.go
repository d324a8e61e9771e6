package identity

import (
	"context"
	"errors"
	"time"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes returned by authentication
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenMaxRefresh    = "TOKEN_MAX_REFRESH"
	CodeTokenRevoked       = "TOKEN_REVOKED"
)

// AuthActivity records login and logout entries in the activity log
type AuthActivity interface {
	RecordAuth(ctx context.Context, tenantID uuid.UUID, action activity.Action, actor activity.Actor)
}

// LoginMetrics counts login attempts by outcome
type LoginMetrics interface {
	RecordLogin(ctx context.Context, success bool)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	empresaRepo identity.EmpresaRepository
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	authLog     AuthActivity
	metrics     LoginMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	empresaRepo identity.EmpresaRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	authLog AuthActivity,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		empresaRepo: empresaRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		authLog:     authLog,
		logger:      logger,
		now:         time.Now,
	}
}

// WithMetrics sets the login counter
func (s *AuthService) WithMetrics(m LoginMetrics) *AuthService {
	s.metrics = m
	return s
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user during login", zap.Error(err))
		}
		s.logger.Warn("Login attempt for unknown email", zap.String("email", email))
		return nil, s.loginFailed(ctx)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, s.loginFailed(ctx)
	}

	empresa, err := s.activeEmpresa(ctx, user)
	if err != nil {
		s.recordLogin(ctx, false)
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(identityOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Falha ao gerar os tokens de acesso")
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.recordLogin(ctx, true)
	if s.authLog != nil {
		s.authLog.RecordAuth(ctx, user.TenantID, activity.ActionLogin, actorOf(user))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserInfo(user, empresa),
	}, nil
}

// RefreshToken issues a new token pair from a valid refresh token. The
// presented refresh token is revoked, so each one can be used once.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if s.isRevoked(ctx, claims.ID) {
		s.logger.Warn("Revoked refresh token presented", zap.String("user_id", claims.UserID))
		return nil, tokenError(auth.ErrTokenBlacklisted)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserUUID())
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", claims.UserID))
		return nil, shared.NewDomainError(CodeTokenInvalid, "Sessão inválida")
	}
	if _, err := s.activeEmpresa(ctx, user); err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, identityOf(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, tokenError(err)
	}

	if err := s.revoke(ctx, claims); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	s.logger.Debug("Token refreshed", zap.String("user_id", user.ID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the access token, and the refresh token when one is given,
// then records the logout
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" && input.TokenTTL > 0 && s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to revoke access token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Falha ao encerrar a sessão")
		}
	}
	if input.RefreshToken != "" {
		if err := s.revokeRefreshToken(ctx, input.UserID, input.RefreshToken); err != nil {
			s.logger.Error("Failed to revoke refresh token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Falha ao encerrar a sessão")
		}
	}

	actor := activity.Actor{UserID: input.UserID}
	if user, err := s.userRepo.FindByID(ctx, input.UserID); err == nil {
		actor = actorOf(user)
	}
	if s.authLog != nil {
		s.authLog.RecordAuth(ctx, input.TenantID, activity.ActionLogout, actor)
	}

	s.logger.Info("User logged out",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))
	return nil
}

// Me returns the profile of the authenticated user. A token that outlived
// its user yields ErrUnauthorized.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	empresa, err := s.empresaRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user, empresa)
	return &info, nil
}

// activeEmpresa checks that both the user and its empresa may log in
func (s *AuthService) activeEmpresa(ctx context.Context, user *identity.User) (*identity.Empresa, error) {
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive user", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(CodeAccountInactive, "Usuário desativado")
	}
	empresa, err := s.empresaRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !empresa.Ativo {
		s.logger.Warn("Login attempt for inactive empresa", zap.String("tenant_id", empresa.ID.String()))
		return nil, shared.NewDomainError(CodeAccountInactive, "Empresa desativada")
	}
	return empresa, nil
}

func (s *AuthService) loginFailed(ctx context.Context) error {
	s.recordLogin(ctx, false)
	return shared.NewDomainError(CodeInvalidCredentials, "E-mail ou senha inválidos")
}

func (s *AuthService) recordLogin(ctx context.Context, success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(ctx, success)
	}
}

// revokeRefreshToken blacklists a refresh token of the user. Tokens that no
// longer validate or belong to someone else are skipped.
func (s *AuthService) revokeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	claims, err := s.jwtService.ValidateRefreshToken(token)
	if err != nil {
		s.logger.Debug("Ignoring unusable refresh token at logout", zap.Error(err))
		return nil
	}
	if claims.UserUUID() != userID {
		s.logger.Warn("Refresh token of another user presented at logout",
			zap.String("user_id", userID.String()),
			zap.String("token_user_id", claims.UserID))
		return nil
	}
	return s.revoke(ctx, claims)
}

// revoke blacklists the token until it expires
func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.RemainingTTL()
	if s.blacklist == nil || claims.ID == "" || ttl == 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// isRevoked fails open like the access token check: an unreachable
// blacklist is logged and treated as not revoked
func (s *AuthService) isRevoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil || jti == "" {
		return false
	}
	revoked, err := s.blacklist.IsRevoked(ctx, jti)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.String("jti", jti), zap.Error(err))
		return false
	}
	return revoked
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError(CodeTokenRevoked, "Sessão encerrada")
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(CodeTokenExpired, "Sessão expirada")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(CodeTokenMaxRefresh, "Limite de renovações atingido, faça login novamente")
	default:
		return shared.NewDomainError(CodeTokenInvalid, "Token de renovação inválido")
	}
}

func identityOf(u *identity.User) auth.Identity {
	return auth.Identity{
		TenantID: u.TenantID,
		UserID:   u.ID,
		Email:    u.Email,
		Nome:     u.Nome,
	}
}

func actorOf(u *identity.User) activity.Actor {
	return activity.Actor{UserID: u.ID, UserEmail: u.Email, UserName: u.DisplayName()}
}
