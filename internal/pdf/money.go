package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats a money amount the Brazilian way, e.g. "R$ 1.234,56"
func BRL(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "R$ " + ptBR.Sprint(number.Decimal(f, number.Scale(2)))
}

// Quantity formats an item quantity without trailing zeros, e.g. "1,5"
func Quantity(d decimal.Decimal) string {
	f, _ := d.Float64()
	if d.Equal(d.Truncate(0)) {
		return ptBR.Sprint(number.Decimal(f, number.MaxFractionDigits(0)))
	}
	return ptBR.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}
