package crm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

const (
	maxEmailLength    = 255
	maxPhoneLength    = 30
	maxAddressLength  = 500
	maxContactLength  = 100
	maxTipoCredito    = 100
	maxFinalidade     = 200
	maxObservacoes    = 500
	maxFileNameLength = 255
)

func validateLength(field, label, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 && min > 0 {
		return shared.NewFieldError(field, label+" é obrigatório")
	}
	if n < min {
		return shared.NewFieldError(field, fmt.Sprintf("%s deve ter no mínimo %d caracteres", label, min))
	}
	if max > 0 && n > max {
		return shared.NewFieldError(field, fmt.Sprintf("%s deve ter no máximo %d caracteres", label, max))
	}
	return nil
}

func validateEmail(field, email string, required bool) error {
	if email == "" {
		if required {
			return shared.NewFieldError(field, "Email é obrigatório")
		}
		return nil
	}
	if len(email) > maxEmailLength {
		return shared.NewFieldError(field, fmt.Sprintf("Email deve ter no máximo %d caracteres", maxEmailLength))
	}
	if !emailRegex.MatchString(email) {
		return shared.NewFieldError(field, "Email inválido")
	}
	return nil
}

func validatePhone(field, phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > maxPhoneLength || !phoneRegex.MatchString(phone) {
		return shared.NewFieldError(field, "Telefone inválido")
	}
	return nil
}

func validatePercent(field, label string, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if !valueobject.InPercentRange(*v) {
		return shared.NewFieldError(field, label+" deve estar entre 0 e 100")
	}
	return nil
}

func normalizeCNPJ(field, cnpj string) (string, error) {
	v, err := valueobject.NewOptionalCNPJ(cnpj)
	if err != nil {
		return "", shared.NewFieldError(field, "CNPJ inválido")
	}
	return v.String(), nil
}

func requireID(field, label string, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.NewFieldError(field, label+" é obrigatório")
	}
	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func optionalID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func decimalString(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.String()
}
