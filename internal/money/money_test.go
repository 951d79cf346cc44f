package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tapterm/tapterm/internal/money"
)

func TestNormalize_BankersRounding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"midpoint rounds down to even", "2.005", "2.00"},
		{"midpoint rounds up to even", "2.015", "2.02"},
		{"midpoint already even", "2.025", "2.02"},
		{"midpoint rounds up to even eight", "2.675", "2.68"},
		{"negative midpoint", "-2.005", "-2.00"},
		{"below midpoint", "1.0049", "1.00"},
		{"above midpoint", "19.999", "20.00"},
		{"whole number unchanged", "5", "5"},
		{"two digits unchanged", "12.34", "12.34"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.Normalize(decimal.RequireFromString(tt.input))
			want := decimal.RequireFromString(tt.want)
			assert.True(t, got.Equal(want), "Normalize(%s) = %s, want %s", tt.input, got, want)
		})
	}
}

func TestNormalize_AtMostTwoFractionalDigits(t *testing.T) {
	inputs := []string{"0.123456789", "99999.999999", "0.001", "-3.14159", "2.005"}
	for _, in := range inputs {
		got := money.Normalize(decimal.RequireFromString(in))
		assert.GreaterOrEqual(t, got.Exponent(), int32(-2), "Normalize(%s) = %s has more than 2 fractional digits", in, got)
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5.00", 500},
		{"2.015", 202},
		{"0.005", 0},
		{"10", 1000},
		{"-1.50", -150},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, money.MinorUnits(decimal.RequireFromString(tt.input)), "MinorUnits(%s)", tt.input)
	}
}
