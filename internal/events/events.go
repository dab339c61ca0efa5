package events

import (
	"time"

	"github.com/wearvault/storefront-service/internal/domain"
)

// Published after an order settles and its stock is reserved.
type OrderCreatedEvent struct {
	EventID   string            `json:"event_id"`
	OrderID   string            `json:"order_id"`
	UserID    string            `json:"user_id"`
	Total     float64           `json:"total"`
	Items     []domain.CartLine `json:"items"`
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id"`
}

type StockDeductedEvent struct {
	EventID     string                 `json:"event_id"`
	OrderID     string                 `json:"order_id"`
	ProductID   string                 `json:"product_id"`
	Type        domain.TransactionType `json:"type"`
	Size        string                 `json:"size"`
	Quantity    int                    `json:"quantity"`
	RentalWeeks int                    `json:"rental_weeks,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Compensation event emitted when settlement aborted after the order
// record was written.
type StockDeductionFailedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
