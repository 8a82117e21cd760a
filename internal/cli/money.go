package cli

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a currency code is empty or unknown.
const DefaultCurrency = money.USD

// currency resolves an ISO code, falling back to DefaultCurrency.
func currency(code string) *money.Currency {
	if cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))); cur != nil {
		return cur
	}
	return money.GetCurrency(DefaultCurrency)
}

// FormatCurrency renders amount in the given currency, e.g. $1,200.50.
// Amounts are rounded to the currency's minor unit.
func FormatCurrency(amount float64, code string) string {
	cur := currency(code)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Formatter binds FormatCurrency to one currency.
type Formatter struct {
	code string
}

// NewFormatter returns a formatter for code.
func NewFormatter(code string) Formatter {
	return Formatter{code: currency(code).Code}
}

// Format renders amount.
func (f Formatter) Format(amount float64) string {
	return FormatCurrency(amount, f.code)
}

// Code returns the resolved ISO code.
func (f Formatter) Code() string {
	return f.code
}
