package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidations(v))
	return v
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestCustomValidations(t *testing.T) {
	type input struct {
		CPF      string  `json:"cpf" binding:"omitempty,cpf"`
		CNPJ     string  `json:"cnpj" binding:"omitempty,cnpj"`
		Taxa     *string `json:"taxa" binding:"omitempty,decimal_range=0:100"`
		Valor    string  `json:"valor" binding:"omitempty,decimal_range=0.01:999999999999.99"`
		Previsao *string `json:"previsao" binding:"omitempty,datetime=2006-01-02"`
	}
	str := func(s string) *string { return &s }
	v := newTestValidator(t)

	tests := []struct {
		name    string
		in      input
		invalid string
	}{
		{"empty passes", input{}, ""},
		{"valid cpf with punctuation", input{CPF: "529.982.247-25"}, ""},
		{"valid cpf digits", input{CPF: "52998224725"}, ""},
		{"cpf bad check digit", input{CPF: "52998224724"}, "cpf"},
		{"cpf repeated digits", input{CPF: "11111111111"}, "cpf"},
		{"valid cnpj", input{CNPJ: "11.222.333/0001-81"}, ""},
		{"invalid cnpj", input{CNPJ: "11222333000182"}, "cnpj"},
		{"percentage at bounds", input{Taxa: str("100")}, ""},
		{"percentage zero", input{Taxa: str("0")}, ""},
		{"percentage above range", input{Taxa: str("100.01")}, "taxa"},
		{"percentage negative", input{Taxa: str("-1")}, "taxa"},
		{"percentage not a number", input{Taxa: str("abc")}, "taxa"},
		{"valor minimum", input{Valor: "0.01"}, ""},
		{"valor zero", input{Valor: "0"}, "valor"},
		{"valid date", input{Previsao: str("2026-03-31")}, ""},
		{"invalid date", input{Previsao: str("31/03/2026")}, "previsao"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.invalid == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.invalid, errs[0].Field())
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type TestStruct struct {
		Email string `json:"email" binding:"required,email"`
		CPF   string `json:"cpf" binding:"required,cpf"`
	}

	require.NoError(t, SetupValidator())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req TestStruct
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("returns validation errors for invalid input", func(t *testing.T) {
		body := strings.NewReader(`{"email": "invalid", "cpf": "123"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Dados inválidos", resp.Error.Message)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "email", resp.Error.Details[0].Field)
		assert.Equal(t, "E-mail inválido", resp.Error.Details[0].Message)
		assert.Equal(t, "cpf", resp.Error.Details[1].Field)
		assert.Equal(t, "CPF inválido", resp.Error.Details[1].Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"email":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("wrong json type names the field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"email": 10, "cpf": "52998224725"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "email", resp.Error.Details[0].Field)
	})

	t.Run("returns success for valid input", func(t *testing.T) {
		body := strings.NewReader(`{"email": "ana@example.com", "cpf": "529.982.247-25"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type TestStruct struct {
		Required string  `binding:"required"`
		Min      string  `binding:"min=5"`
		Max      string  `binding:"max=3"`
		OneOf    string  `binding:"oneof=a b c"`
		GTE      int     `binding:"gte=10"`
		Range    *string `binding:"decimal_range=0:100"`
	}

	over := "150"
	v := newTestValidator(t)
	err := v.Struct(TestStruct{Max: "long value", OneOf: "d", Range: &over})
	require.Error(t, err)

	messages := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		messages[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "Campo obrigatório", messages["Required"])
	assert.Equal(t, "Deve ter no mínimo 5 caracteres", messages["Min"])
	assert.Equal(t, "Deve ter no máximo 3 caracteres", messages["Max"])
	assert.Equal(t, "Deve ser um dos valores: a b c", messages["OneOf"])
	assert.Equal(t, "Deve ser maior ou igual a 10", messages["GTE"])
	assert.Equal(t, "Deve ser um número entre 0 e 100", messages["Range"])
}

func TestRegisterCustom_RejectsBadRegistration(t *testing.T) {
	always := func(validator.FieldLevel) bool { return true }

	err := registerCustom(validator.New(), []customValidation{{TagCPF, always}, {"", always}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "" validation`)

	err = registerCustom(validator.New(), []customValidation{{TagCNPJ, nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TagCNPJ)
}
