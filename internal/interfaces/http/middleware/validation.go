package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Custom validation tags used by the request DTOs
const (
	TagCPF          = "cpf"
	TagCNPJ         = "cnpj"
	TagDecimalRange = "decimal_range"
)

// SetupValidator configures the gin validator with json field names and the
// CRM validation tags
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not a *validator.Validate")
	}
	return RegisterValidations(v)
}

type customValidation struct {
	tag string
	fn  validator.Func
}

var customValidations = []customValidation{
	{TagCPF, func(fl validator.FieldLevel) bool {
		s, ok := stringField(fl)
		return ok && valueobject.ValidateCPF(s)
	}},
	{TagCNPJ, func(fl validator.FieldLevel) bool {
		s, ok := stringField(fl)
		return ok && valueobject.ValidateCNPJ(s)
	}},
	{TagDecimalRange, validateDecimalRange},
}

// RegisterValidations registers the field name function and custom tags on v
func RegisterValidations(v *validator.Validate) error {
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return registerCustom(v, customValidations)
}

func registerCustom(v *validator.Validate, validations []customValidation) error {
	for _, cv := range validations {
		if err := v.RegisterValidation(cv.tag, cv.fn); err != nil {
			return fmt.Errorf("register %q validation: %w", cv.tag, err)
		}
	}
	return nil
}

// validateDecimalRange checks a decimal string against "min:max", both inclusive
func validateDecimalRange(fl validator.FieldLevel) bool {
	s, ok := stringField(fl)
	if !ok {
		return false
	}
	value, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	lo, hi, found := strings.Cut(fl.Param(), ":")
	if !found {
		return false
	}
	min, err := decimal.NewFromString(lo)
	if err != nil {
		return false
	}
	max, err := decimal.NewFromString(hi)
	if err != nil {
		return false
	}
	return value.GreaterThanOrEqual(min) && value.LessThanOrEqual(max)
}

func stringField(fl validator.FieldLevel) (string, bool) {
	field := fl.Field()
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return "", false
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}

// FormatValidationErrors formats binding errors into the standard error envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
		return dto.NewValidationErrorResponse("Dados inválidos", requestID, details)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		details = append(details, dto.ValidationDetail{
			Field:   typeErr.Field,
			Message: "Tipo de valor inválido",
		})
		return dto.NewValidationErrorResponse("Dados inválidos", requestID, details)
	}

	return dto.NewValidationErrorResponse("Corpo da requisição inválido", requestID, nil)
}

// HandleValidationError writes a 400 validation error response, or a 413
// when the body was cut off by BodyLimit.
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, tooLargeResponse(c))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

// getValidationMessage returns the message shown to the user for a failed rule
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "E-mail inválido"
	case TagCPF:
		return "CPF inválido"
	case TagCNPJ:
		return "CNPJ inválido"
	case TagDecimalRange:
		lo, hi, _ := strings.Cut(e.Param(), ":")
		return "Deve ser um número entre " + lo + " e " + hi
	case "datetime":
		return "Data inválida, use o formato AAAA-MM-DD"
	case "min":
		if e.Kind() == reflect.String {
			return "Deve ter no mínimo " + e.Param() + " caracteres"
		}
		return "Deve ser no mínimo " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Deve ter no máximo " + e.Param() + " caracteres"
		}
		return "Deve ser no máximo " + e.Param()
	case "len":
		return "Deve ter exatamente " + e.Param() + " caracteres"
	case "uuid":
		return "Identificador inválido"
	case "oneof":
		return "Deve ser um dos valores: " + e.Param()
	case "gte":
		return "Deve ser maior ou igual a " + e.Param()
	case "lte":
		return "Deve ser menor ou igual a " + e.Param()
	case "gt":
		return "Deve ser maior que " + e.Param()
	case "lt":
		return "Deve ser menor que " + e.Param()
	default:
		return "Valor inválido"
	}
}
