package identity

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo is the profile returned after login and by /auth/me
type UserInfo struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	EmpresaNome         string
	Nome                string
	Email               string
	OnboardingCompleted bool
	LastLoginAt         *time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string
	// TokenTTL is what is left of the access token; the JTI is revoked for that long
	TokenTTL time.Duration
	// RefreshToken is optional; when present it is revoked too
	RefreshToken string
}

// RegisterInput contains the data of a new empresa and its first user
type RegisterInput struct {
	EmpresaNome string
	EmpresaCNPJ string
	Nome        string
	Email       string
	Password    string
}

// RegisterResult is the created empresa and admin user
type RegisterResult struct {
	EmpresaID uuid.UUID
	User      UserInfo
}

// OnboardingStatus reports whether the user finished the setup wizard
type OnboardingStatus struct {
	OnboardingCompleted bool `json:"onboarding_completed"`
}

func toUserInfo(u *identity.User, empresa *identity.Empresa) UserInfo {
	info := UserInfo{
		ID:                  u.ID,
		TenantID:            u.TenantID,
		Nome:                u.DisplayName(),
		Email:               u.Email,
		OnboardingCompleted: u.OnboardingCompleted,
		LastLoginAt:         u.LastLoginAt,
	}
	if empresa != nil {
		info.EmpresaNome = empresa.Nome
	}
	return info
}
