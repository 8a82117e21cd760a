package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		want   string
		amount float64
	}{
		{name: "dollars with cents", amount: 1200.50, code: "USD", want: "$1,200.50"},
		{name: "lowercase code", amount: 8500, code: "usd", want: "$8,500.00"},
		{name: "negative cash", amount: -50, code: "USD", want: "-$50.00"},
		{name: "rounds to cents", amount: 0.125, code: "USD", want: "$0.13"},
		{name: "unknown code falls back", amount: 15000, code: "XXQ", want: "$15,000.00"},
		{name: "empty code falls back", amount: 1, code: "", want: "$1.00"},
		{name: "no minor unit", amount: 1200, code: "JPY", want: "¥1,200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.code))
		})
	}
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("bogus")
	assert.Equal(t, DefaultCurrency, f.Code())
	assert.Equal(t, "$2,500.00", f.Format(2500))

	assert.Equal(t, "EUR", NewFormatter(" eur ").Code())
}
