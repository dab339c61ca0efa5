// Package pricing computes unit prices for buy and rental transactions.
// It is pure: cart-add and order settlement both call through here so
// the price shown when a line is added is the same number used at
// settlement.
package pricing

import (
	"errors"
	"math"

	"github.com/wearvault/storefront-service/internal/domain"
)

var ErrInvalidDuration = errors.New("invalid rental duration")

// Rental discount tiers, evaluated as a non-overlapping step function
// on the duration in weeks.
const (
	longTermWeeks    = 4
	midTermWeeks     = 2
	longTermDiscount = 0.8
	midTermDiscount  = 0.9
)

// PriceFor returns the unit price for a transaction. Buy returns the
// buy price unchanged. Rent multiplies the weekly price by the
// duration, applies the duration tier (>=4 weeks 20% off, >=2 weeks
// 10% off, 1 week full price) and rounds half-up to the nearest whole
// currency unit. rentalWeeks is ignored for buy transactions.
func PriceFor(txType domain.TransactionType, buyPrice, weeklyRentPrice float64, rentalWeeks int) (float64, error) {
	if txType == domain.TransactionBuy {
		return buyPrice, nil
	}
	if rentalWeeks < 1 {
		return 0, ErrInvalidDuration
	}

	price := weeklyRentPrice * float64(rentalWeeks)
	switch {
	case rentalWeeks >= longTermWeeks:
		price *= longTermDiscount
	case rentalWeeks >= midTermWeeks:
		price *= midTermDiscount
	}
	return math.Round(price), nil
}
