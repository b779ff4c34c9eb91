package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for every balance and amount.
const MoneyScale int32 = 2

// RateScale is the number of fractional digits stored for an interest rate.
const RateScale int32 = 6

// RoundMoney rounds half away from zero to MoneyScale digits.
func RoundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(MoneyScale)
}

// ApplyRate multiplies at full precision and rounds the product once.
func ApplyRate(base decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(base.Mul(rate))
}

func ParseMoney(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidArgument)
	}

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount must be numeric", ErrInvalidArgument)
	}
	if value.Exponent() < -MoneyScale && !value.Equal(RoundMoney(value)) {
		return decimal.Zero, fmt.Errorf("%w: amount supports at most %d decimal places", ErrInvalidArgument, MoneyScale)
	}

	return RoundMoney(value), nil
}

// CheckRate rejects negative rates and rates with more than RateScale fractional digits.
func CheckRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", ErrInvalidArgument, name)
	}
	if !rate.Equal(rate.Round(RateScale)) {
		return fmt.Errorf("%w: %s supports at most %d decimal places", ErrInvalidArgument, name, RateScale)
	}
	return nil
}

func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(MoneyScale)
}
