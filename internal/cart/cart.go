// Package cart merges and prices line items for a single session.
// A Cart is not safe for concurrent use; every cart is scoped to one
// request or one client session.
package cart

import (
	"errors"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/pricing"
)

var (
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

const (
	freeShippingThreshold = 100
	flatShippingFee       = 9.99
)

type Cart struct {
	lines map[string]*domain.CartLine
	order []string // line ids in insertion order
}

func New() *Cart {
	return &Cart{lines: make(map[string]*domain.CartLine)}
}

// AddLine adds one unit of a product to the cart. Lines are keyed by
// (product, type, size, rental weeks); adding a key that already exists
// increments the existing line's quantity instead of duplicating it.
// The unit price is computed once, when the line is first created.
func (c *Cart) AddLine(p *domain.Product, txType domain.TransactionType, size string, rentalWeeks int) (domain.CartLine, error) {
	if !p.HasSize(size) {
		return domain.CartLine{}, ErrInvalidSize
	}

	key := domain.LineKey(p.ProductID, txType, size, rentalWeeks)
	if line, ok := c.lines[key]; ok {
		line.Quantity++
		return *line, nil
	}

	price, err := pricing.PriceFor(txType, p.BuyPrice, p.RentPrice, rentalWeeks)
	if err != nil {
		return domain.CartLine{}, err
	}

	line := &domain.CartLine{
		LineID:      key,
		ProductID:   p.ProductID,
		ProductName: p.Name,
		Type:        txType,
		Size:        size,
		Quantity:    1,
		UnitPrice:   price,
	}
	if txType == domain.TransactionRent {
		line.RentalWeeks = rentalWeeks
	}
	c.lines[key] = line
	c.order = append(c.order, key)
	return *line, nil
}

// SetQuantity sets a line's quantity. Zero removes the line; setting
// quantity on an absent line is a no-op for zero and an error for
// anything negative.
func (c *Cart) SetQuantity(lineID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		c.RemoveLine(lineID)
		return nil
	}
	if line, ok := c.lines[lineID]; ok {
		line.Quantity = quantity
	}
	return nil
}

// RemoveLine removes a line. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(lineID string) {
	if _, ok := c.lines[lineID]; !ok {
		return
	}
	delete(c.lines, lineID)
	for i, id := range c.order {
		if id == lineID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Lines returns snapshots of the cart lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, line := range c.lines {
		sum += line.UnitPrice * float64(line.Quantity)
	}
	return sum
}

// ShippingFee is free above the threshold, flat below. A subtotal of
// exactly 100 still pays shipping.
func ShippingFee(subtotal float64) float64 {
	if subtotal > freeShippingThreshold {
		return 0
	}
	return flatShippingFee
}

func (c *Cart) Total() float64 {
	subtotal := c.Subtotal()
	return subtotal + ShippingFee(subtotal)
}
