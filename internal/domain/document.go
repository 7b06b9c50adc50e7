package domain

import (
	"strings"
)

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
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

func toDigits(s string) []int {
	d := make([]int, len(s))
	for i, r := range s {
		d[i] = int(r - '0')
	}
	return d
}

func allSame(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}

// ValidateCPF reports whether cpf is a well-formed CPF. Formatting characters are ignored.
func ValidateCPF(cpf string) bool {
	s := OnlyDigits(cpf)
	if len(s) != 11 {
		return false
	}
	d := toDigits(s)
	if allSame(d) {
		return false
	}
	return cpfCheckDigit(d[:9]) == d[9] && cpfCheckDigit(d[:10]) == d[10]
}

// cpfCheckDigit computes the next CPF check digit over base, using weights
// len(base)+1 down to 2.
func cpfCheckDigit(base []int) int {
	sum := 0
	w := len(base) + 1
	for i, v := range base {
		sum += v * (w - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

// ValidateCNPJ reports whether cnpj is a well-formed CNPJ. Formatting characters are ignored.
func ValidateCNPJ(cnpj string) bool {
	s := OnlyDigits(cnpj)
	if len(s) != 14 {
		return false
	}
	d := toDigits(s)
	if allSame(d) {
		return false
	}
	return cnpjCheckDigit(d[:12], cnpjWeights1) == d[12] && cnpjCheckDigit(d[:13], cnpjWeights2) == d[13]
}

func cnpjCheckDigit(base, weights []int) int {
	sum := 0
	for i, v := range base {
		sum += v * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// ValidateDocumento validates documento according to its declared type
func ValidateDocumento(tipo TipoDocumento, documento string) bool {
	switch tipo {
	case TipoDocumentoCPF:
		return ValidateCPF(documento)
	case TipoDocumentoCNPJ:
		return ValidateCNPJ(documento)
	}
	return false
}

// FormatCPF renders an 11 digit CPF as ###.###.###-##; other input is returned unchanged
func FormatCPF(cpf string) string {
	d := OnlyDigits(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// FormatCNPJ renders a 14 digit CNPJ as ##.###.###/####-##; other input is returned unchanged
func FormatCNPJ(cnpj string) string {
	d := OnlyDigits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// FormatDocumento formats documento for its type
func FormatDocumento(tipo TipoDocumento, documento string) string {
	if tipo == TipoDocumentoCNPJ {
		return FormatCNPJ(documento)
	}
	return FormatCPF(documento)
}

// FormatPhone renders 10 or 11 digit Brazilian phone numbers as (##) ####-#### or (##) #####-####
func FormatPhone(phone string) string {
	d := OnlyDigits(phone)
	switch len(d) {
	case 11:
		return "(" + d[0:2] + ") " + d[2:7] + "-" + d[7:11]
	case 10:
		return "(" + d[0:2] + ") " + d[2:6] + "-" + d[6:10]
	}
	return phone
}

// FormatCEP renders an 8 digit CEP as #####-###
func FormatCEP(cep string) string {
	d := OnlyDigits(cep)
	if len(d) != 8 {
		return cep
	}
	return d[0:5] + "-" + d[5:8]
}
