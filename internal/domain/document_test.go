package domain_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"formatted valid", "529.982.247-25", true},
		{"digits only valid", "52998224725", true},
		{"another valid", "111.444.777-35", true},
		{"valid with first check digit zero", "12345678909", true},
		{"wrong last digit", "52998224726", false},
		{"wrong first check digit", "52998224715", false},
		{"repeated digits", "000.000.000-00", false},
		{"repeated nines", "99999999999", false},
		{"too short", "5299822472", false},
		{"too long", "529982247250", false},
		{"empty", "", false},
		{"letters only", "abc.def.ghi-jk", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ValidateCPF(tc.cpf))
		})
	}
}

func TestValidateCNPJ(t *testing.T) {
	tests := []struct {
		name string
		cnpj string
		want bool
	}{
		{"formatted valid", "11.222.333/0001-81", true},
		{"digits only valid", "11222333000181", true},
		{"another valid", "45.723.174/0001-10", true},
		{"leading zero valid", "04252011000110", true},
		{"wrong last digit", "11222333000182", false},
		{"wrong first check digit", "11222333000191", false},
		{"too short", "1122233300018", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ValidateCNPJ(tc.cnpj))
		})
	}
}

func TestValidateCNPJ_RepeatedDigitsRejected(t *testing.T) {
	for d := 0; d <= 9; d++ {
		cnpj := strings.Repeat(fmt.Sprint(d), 14)
		assert.False(t, domain.ValidateCNPJ(cnpj), cnpj)
	}
}

// referenceCPF builds a valid CPF from nine base digits
func referenceCPF(base [9]int) string {
	digits := base[:]
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += digits[i] * (n + 1 - i)
		}
		r := sum * 10 % 11
		if r == 10 {
			r = 0
		}
		digits = append(digits, r)
	}
	s := ""
	for _, v := range digits {
		s += fmt.Sprint(v)
	}
	return s
}

// referenceCNPJ builds a valid CNPJ from twelve base digits
func referenceCNPJ(base [12]int) string {
	weights := [][]int{
		{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
		{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
	}
	digits := base[:]
	for _, w := range weights {
		sum := 0
		for i, wt := range w {
			sum += digits[i] * wt
		}
		r := sum % 11
		if r < 2 {
			r = 0
		} else {
			r = 11 - r
		}
		digits = append(digits, r)
	}
	s := ""
	for _, v := range digits {
		s += fmt.Sprint(v)
	}
	return s
}

func TestValidateCPF_CheckDigitMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		var base [9]int
		for i := range base {
			base[i] = rng.Intn(10)
		}
		cpf := referenceCPF(base)
		if cpf == strings.Repeat(cpf[:1], 11) {
			continue
		}

		assert.True(t, domain.ValidateCPF(cpf), cpf)

		for _, pos := range []int{9, 10} {
			for d := byte('0'); d <= '9'; d++ {
				if cpf[pos] == d {
					continue
				}
				mutated := []byte(cpf)
				mutated[pos] = d
				assert.False(t, domain.ValidateCPF(string(mutated)), "mutated %s -> %s", cpf, mutated)
			}
		}
	}
}

func TestValidateCNPJ_GeneratedAreValid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		var base [12]int
		for i := range base {
			base[i] = rng.Intn(10)
		}
		cnpj := referenceCNPJ(base)
		assert.True(t, domain.ValidateCNPJ(cnpj), cnpj)

		mutated := []byte(cnpj)
		mutated[13] = '0' + (mutated[13]-'0'+1)%10
		assert.False(t, domain.ValidateCNPJ(string(mutated)), string(mutated))
	}
}

func TestValidateDocumento(t *testing.T) {
	assert.True(t, domain.ValidateDocumento(domain.TipoDocumentoCPF, "529.982.247-25"))
	assert.False(t, domain.ValidateDocumento(domain.TipoDocumentoCNPJ, "529.982.247-25"))
	assert.True(t, domain.ValidateDocumento(domain.TipoDocumentoCNPJ, "11.222.333/0001-81"))
	assert.False(t, domain.ValidateDocumento(domain.TipoDocumento("RG"), "123456789"))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "529.982.247-25", domain.FormatCPF("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", domain.FormatCNPJ("11222333000181"))
	assert.Equal(t, "11.222.333/0001-81", domain.FormatDocumento(domain.TipoDocumentoCNPJ, "11222333000181"))
	assert.Equal(t, "(11) 98765-4321", domain.FormatPhone("11987654321"))
	assert.Equal(t, "(11) 3456-7890", domain.FormatPhone("1134567890"))
	assert.Equal(t, "123", domain.FormatPhone("123"))
	assert.Equal(t, "01310-100", domain.FormatCEP("01310100"))
	assert.Equal(t, "52998224725", domain.OnlyDigits("529.982.247-25"))
}
