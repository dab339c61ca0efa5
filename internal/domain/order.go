package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusFailed  OrderStatus = "failed"
)

// CartLine is one entry in a cart or order. Lines are keyed by the
// (product, transaction type, size, rental weeks) tuple; the unit price
// is snapshotted when the line is created and never recomputed from the
// live catalog afterwards.
type CartLine struct {
	LineID      string          `dynamodbav:"line_id"      json:"line_id"`
	ProductID   string          `dynamodbav:"product_id"   json:"product_id"`
	ProductName string          `dynamodbav:"product_name" json:"product_name"`
	Type        TransactionType `dynamodbav:"type"         json:"type"`
	Size        string          `dynamodbav:"size"         json:"size"`
	RentalWeeks int             `dynamodbav:"rental_weeks" json:"rental_weeks,omitempty"`
	Quantity    int             `dynamodbav:"quantity"     json:"quantity"`
	UnitPrice   float64         `dynamodbav:"unit_price"   json:"unit_price"`
}

// LineKey builds the identity key for a cart line. Buy lines carry no
// rental duration, matching the key shape "{id}-{type}-{size}-".
func LineKey(productID string, txType TransactionType, size string, rentalWeeks int) string {
	weeks := ""
	if txType == TransactionRent {
		weeks = fmt.Sprintf("%d", rentalWeeks)
	}
	return fmt.Sprintf("%s-%s-%s-%s", productID, txType, size, weeks)
}

type ShippingAddress struct {
	Street  string `dynamodbav:"street"   json:"street"`
	City    string `dynamodbav:"city"     json:"city"`
	State   string `dynamodbav:"state"    json:"state"`
	ZipCode string `dynamodbav:"zip_code" json:"zip_code"`
}

// Order is an immutable snapshot of a settled cart. Only Status may
// change after creation.
type Order struct {
	OrderID         string          `dynamodbav:"order_id"         json:"order_id"`
	UserID          string          `dynamodbav:"user_id"          json:"user_id"`
	Lines           []CartLine      `dynamodbav:"lines"            json:"lines"`
	Total           float64         `dynamodbav:"total"            json:"total"`
	ShippingAddress ShippingAddress `dynamodbav:"shipping_address" json:"shipping_address"`
	Status          OrderStatus     `dynamodbav:"status"           json:"status"`
	CreatedAt       time.Time       `dynamodbav:"created_at"       json:"created_at"`
}

type OrderLineRequest struct {
	ProductID   string          `json:"product_id"   binding:"required"`
	Type        TransactionType `json:"type"         binding:"required,oneof=buy rent"`
	Size        string          `json:"size"         binding:"required"`
	RentalWeeks int             `json:"rental_weeks"`
	Quantity    int             `json:"quantity"     binding:"required,min=1"`
}

// CreateOrderRequest carries the cart snapshot submitted at checkout.
// Total is optional; when present it is cross-checked against the
// server-side recomputation and a mismatch rejects the order.
type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items"            binding:"required,min=1,dive"`
	Total           *float64           `json:"total"`
	ShippingAddress ShippingAddress    `json:"shipping_address" binding:"required"`
}
