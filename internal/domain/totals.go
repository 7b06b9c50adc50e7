package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to
const MoneyPlaces = 2

// ValidateItem rejects a line whose quantity is not positive or whose unit price is negative
func ValidateItem(index int, quantidade, valorUnitario decimal.Decimal) error {
	if !quantidade.IsPositive() {
		return &InvalidItemError{Index: index, Reason: "quantidade must be greater than zero"}
	}
	if valorUnitario.IsNegative() {
		return &InvalidItemError{Index: index, Reason: "valor_unitario must not be negative"}
	}
	return nil
}

// LineTotal returns quantidade * valorUnitario rounded to cents
func LineTotal(quantidade, valorUnitario decimal.Decimal) decimal.Decimal {
	return quantidade.Mul(valorUnitario).Round(MoneyPlaces)
}

// PriceItem validates item and sets its ValorTotal
func PriceItem(index int, item *OSItem) error {
	if err := ValidateItem(index, item.Quantidade, item.ValorUnitario); err != nil {
		return err
	}
	item.ValorTotal = LineTotal(item.Quantidade, item.ValorUnitario)
	return nil
}

// RecomputeTotal returns the sum of quantidade * valor_unitario over items.
// Every item is validated before anything is summed.
func RecomputeTotal(items []OSItem) (decimal.Decimal, error) {
	for i := range items {
		if err := ValidateItem(i, items[i].Quantidade, items[i].ValorUnitario); err != nil {
			return decimal.Zero, err
		}
	}
	total := decimal.Zero
	for i := range items {
		total = total.Add(LineTotal(items[i].Quantidade, items[i].ValorUnitario))
	}
	return total, nil
}

// PaymentsTotal sums the payments of an order
func PaymentsTotal(pagamentos []Pagamento) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pagamentos {
		total = total.Add(p.Valor)
	}
	return total
}

// FormatOrderNumber renders prefix followed by n zero-padded to width digits
func FormatOrderNumber(prefix string, n int64, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
