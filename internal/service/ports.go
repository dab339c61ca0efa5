package service

import (
	"context"

	"github.com/wearvault/storefront-service/internal/domain"
)

// Store interfaces are satisfied by the DynamoDB repositories and
// injected into the services, so settlement never touches ambient
// state and tests can swap in fakes.

type ProductStore interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// InventoryLedger applies an order's stock decrements as one atomic
// unit: either every line is applied or none is.
type InventoryLedger interface {
	Reserve(ctx context.Context, lines []domain.CartLine) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrders(ctx context.Context, orderIDs []string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

type UserStore interface {
	CreateProfile(ctx context.Context, profile *domain.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	PutProfile(ctx context.Context, profile *domain.UserProfile) error
	AppendOrder(ctx context.Context, userID, orderID string) error
}

// EventPublisher emits settlement events. A nil publisher disables
// event emission; publish failures never fail the order.
type EventPublisher interface {
	PublishOrderCreated(order *domain.Order, requestID string) error
	PublishStockDeducted(orderID string, line domain.CartLine) error
	PublishStockDeductionFailed(orderID, productID, reason string) error
}
