package valueobject

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCPF is returned when a CPF fails the length or check-digit rules
	ErrInvalidCPF = errors.New("CPF inválido")
	// ErrInvalidCNPJ is returned when a CNPJ fails the length or check-digit rules
	ErrInvalidCNPJ = errors.New("CNPJ inválido")
)

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits strips every non-digit rune from s
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF reports whether s is a valid CPF. Punctuation is ignored.
func ValidateCPF(s string) bool {
	d := digitsOf(OnlyDigits(s))
	if len(d) != 11 || allEqual(d) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (10 - i)
	}
	if cpfCheckDigit(sum) != d[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += d[i] * (11 - i)
	}
	return cpfCheckDigit(sum) == d[10]
}

func cpfCheckDigit(sum int) int {
	r := 11 - sum%11
	if r >= 10 {
		return 0
	}
	return r
}

// ValidateCNPJ reports whether s is a valid CNPJ. Punctuation is ignored.
func ValidateCNPJ(s string) bool {
	d := digitsOf(OnlyDigits(s))
	if len(d) != 14 || allEqual(d) {
		return false
	}
	return cnpjCheckDigit(d[:12], cnpjWeightsFirst) == d[12] &&
		cnpjCheckDigit(d[:13], cnpjWeightsSecond) == d[13]
}

func cnpjCheckDigit(d, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += d[i] * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func digitsOf(s string) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = int(s[i] - '0')
	}
	return out
}

func allEqual(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}

// CPF is a validated Brazilian individual taxpayer number, stored as digits
type CPF struct {
	digits string
}

// NewCPF validates and normalizes a CPF
func NewCPF(s string) (CPF, error) {
	if !ValidateCPF(s) {
		return CPF{}, ErrInvalidCPF
	}
	return CPF{digits: OnlyDigits(s)}, nil
}

// String returns the 11 digits without punctuation
func (c CPF) String() string {
	return c.digits
}

// Formatted returns the CPF as 000.000.000-00
func (c CPF) Formatted() string {
	if len(c.digits) != 11 {
		return c.digits
	}
	return c.digits[0:3] + "." + c.digits[3:6] + "." + c.digits[6:9] + "-" + c.digits[9:11]
}

// IsZero reports whether the CPF is empty
func (c CPF) IsZero() bool {
	return c.digits == ""
}

// CNPJ is a validated Brazilian company registration number, stored as digits
type CNPJ struct {
	digits string
}

// NewCNPJ validates and normalizes a CNPJ
func NewCNPJ(s string) (CNPJ, error) {
	if !ValidateCNPJ(s) {
		return CNPJ{}, ErrInvalidCNPJ
	}
	return CNPJ{digits: OnlyDigits(s)}, nil
}

// NewOptionalCNPJ accepts an empty string as "no CNPJ"
func NewOptionalCNPJ(s string) (CNPJ, error) {
	if strings.TrimSpace(s) == "" {
		return CNPJ{}, nil
	}
	return NewCNPJ(s)
}

// String returns the 14 digits without punctuation
func (c CNPJ) String() string {
	return c.digits
}

// Formatted returns the CNPJ as 00.000.000/0000-00
func (c CNPJ) Formatted() string {
	if len(c.digits) != 14 {
		return c.digits
	}
	return c.digits[0:2] + "." + c.digits[2:5] + "." + c.digits[5:8] + "/" + c.digits[8:12] + "-" + c.digits[12:14]
}

// IsZero reports whether the CNPJ is empty
func (c CNPJ) IsZero() bool {
	return c.digits == ""
}
