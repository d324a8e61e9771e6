package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used when hashing passwords
var PasswordCost = 12

const (
	userNomeMin       = 2
	userNomeMax       = 200
	passwordMinLength = 8
	passwordMaxLength = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a login of an empresa. Its profile carries the onboarding flag.
type User struct {
	shared.TenantAggregateRoot
	Nome                string
	Email               string
	PasswordHash        string
	Ativo               bool
	OnboardingCompleted bool
	LastLoginAt         *time.Time
}

// NewUser creates an active user of the empresa with a hashed password
func NewUser(empresaID uuid.UUID, nome, email, password string) (*User, error) {
	if empresaID == uuid.Nil {
		return nil, shared.NewFieldError("empresa_id", "Empresa é obrigatória")
	}
	nome = strings.TrimSpace(nome)
	if err := validateNome(nome); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	u := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(empresaID),
		Nome:                nome,
		Email:               email,
		Ativo:               true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	u.ClearDomainEvents()
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Falha ao processar a senha")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// VerifyPassword reports whether the password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CompleteOnboarding marks the setup wizard as done. Calling it twice is a no-op.
func (u *User) CompleteOnboarding() {
	if u.OnboardingCompleted {
		return
	}
	u.OnboardingCompleted = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewOnboardingCompletedEvent(u))
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
}

// Deactivate prevents the user from logging in
func (u *User) Deactivate() {
	u.Ativo = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// CanLogin returns true if the user is active
func (u *User) CanLogin() bool {
	return u.Ativo
}

// DisplayName returns the nome, falling back to the email
func (u *User) DisplayName() string {
	if u.Nome != "" {
		return u.Nome
	}
	return u.Email
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNome(nome string) error {
	n := utf8.RuneCountInString(nome)
	if n == 0 {
		return shared.NewFieldError("nome", "Nome é obrigatório")
	}
	if n < userNomeMin || n > userNomeMax {
		return shared.NewFieldError("nome", "Nome deve ter entre 2 e 200 caracteres")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewFieldError("email", "Email é obrigatório")
	}
	if len(email) > 255 || !emailRegex.MatchString(email) {
		return shared.NewFieldError("email", "Email inválido")
	}
	return nil
}

// bcrypt ignores everything past 72 bytes, so longer passwords are rejected
func validatePassword(password string) error {
	if len(password) < passwordMinLength {
		return shared.NewFieldError("password", "Senha deve ter no mínimo 8 caracteres")
	}
	if len(password) > passwordMaxLength {
		return shared.NewFieldError("password", "Senha deve ter no máximo 72 caracteres")
	}
	return nil
}
