package utils

import (
	"errors"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotal is price × quantity, computed in decimal.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal sums the order lines and adds the delivery charge.
func OrderTotal(items []models.OrderItem, delivery decimal.Decimal) decimal.Decimal {
	total := delivery
	for _, item := range items {
		total = total.Add(LineTotal(item.Price, item.Quantity))
	}
	return total.Round(2)
}

// ParsePrice reads a catalog price. It must be positive with at most two
// decimal places, so per-unit provider amounts and order totals agree.
func ParsePrice(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return 0, errors.New("price must be a positive number")
	}
	if !d.Equal(d.Round(2)) {
		return 0, errors.New("price must have at most two decimal places")
	}
	return d.InexactFloat64(), nil
}

// RoundPrice rounds a stored unit price to the cent.
func RoundPrice(price float64) float64 {
	return decimal.NewFromFloat(price).Round(2).InexactFloat64()
}

// ToMinorUnits converts an amount to the provider's smallest unit
// (paise, cents), rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// TotalsMatch reports whether a client-submitted total equals the computed
// one to the cent.
func TotalsMatch(submitted float64, computed decimal.Decimal) bool {
	return decimal.NewFromFloat(submitted).Round(2).Equal(computed.Round(2))
}
