package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/cart"
	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/repository"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrTotalMismatch     = errors.New("submitted total does not match computed total")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
)

// totalTolerance absorbs float noise when cross-checking a
// client-submitted total against the server-side recomputation.
const totalTolerance = 0.005

// OrderService settles carts into orders: it validates the submitted
// lines against the live catalog, recomputes the total server-side,
// persists the order, and applies the inventory decrement as one
// atomic unit.
type OrderService struct {
	products ProductStore
	ledger   InventoryLedger
	orders   OrderStore
	users    UserStore
	events   EventPublisher
	logger   *zap.Logger
}

func NewOrderService(products ProductStore, ledger InventoryLedger, orders OrderStore, users UserStore, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		products: products,
		ledger:   ledger,
		orders:   orders,
		users:    users,
		events:   events,
		logger:   logger,
	}
}

// CreateOrder runs settlement for an authenticated caller.
//
// The order record is persisted with status "pending" before the
// inventory decrement runs. If the decrement is rejected the order is
// marked "failed" rather than deleted, so no pending record is left
// implying stock it never received.
func (s *OrderService) CreateOrder(ctx context.Context, identity domain.Identity, req domain.CreateOrderRequest, requestID string) (*domain.Order, error) {
	if identity.ID == "" {
		return nil, ErrUnauthorized
	}

	orderCart, err := s.buildCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	total := orderCart.Total()
	if req.Total != nil && math.Abs(*req.Total-total) > totalTolerance {
		s.logger.Warn("Rejected order with mismatched total",
			zap.String("user_id", identity.ID),
			zap.Float64("submitted", *req.Total),
			zap.Float64("computed", total))
		return nil, ErrTotalMismatch
	}

	order := &domain.Order{
		OrderID:         "order_" + uuid.NewString(),
		UserID:          identity.ID,
		Lines:           orderCart.Lines(),
		Total:           total,
		ShippingAddress: req.ShippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.Error("Failed to persist order",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return nil, err
	}

	if err := s.users.AppendOrder(ctx, identity.ID, order.OrderID); err != nil {
		s.logger.Error("Failed to append order to history",
			zap.String("order_id", order.OrderID),
			zap.String("user_id", identity.ID),
			zap.Error(err))
		s.failOrder(ctx, order)
		return nil, err
	}

	if err := s.ledger.Reserve(ctx, order.Lines); err != nil {
		s.failOrder(ctx, order)
		if errors.Is(err, repository.ErrInsufficientStock) {
			s.logger.Warn("Order rejected by inventory",
				zap.String("order_id", order.OrderID),
				zap.Error(err))
			s.publishReservationFailure(order, "stock_insufficient")
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, err)
		}
		s.logger.Error("Failed to reserve stock",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		s.publishReservationFailure(order, "reserve_error")
		return nil, err
	}

	s.publishSettled(order, requestID)

	s.logger.Info("Order settled successfully",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", identity.ID),
		zap.Int("lines", len(order.Lines)),
		zap.Float64("total", order.Total))

	return order, nil
}

// buildCart revalidates every submitted line against the live catalog
// and reprices it through the same cart path the storefront uses at
// add-to-cart time, merging duplicate identity keys along the way.
func (s *OrderService) buildCart(ctx context.Context, items []domain.OrderLineRequest) (*cart.Cart, error) {
	orderCart := cart.New()
	catalog := make(map[string]*domain.Product)

	for _, item := range items {
		if item.Type != domain.TransactionBuy && item.Type != domain.TransactionRent {
			return nil, ErrInvalidType
		}
		if item.Quantity < 1 {
			return nil, cart.ErrInvalidQuantity
		}

		product, ok := catalog[item.ProductID]
		if !ok {
			var err error
			product, err = s.products.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrProductNotFound)
				}
				return nil, err
			}
			catalog[item.ProductID] = product
		}

		line, err := orderCart.AddLine(product, item.Type, item.Size, item.RentalWeeks)
		if err != nil {
			return nil, err
		}
		if item.Quantity > 1 {
			if err := orderCart.SetQuantity(line.LineID, line.Quantity+item.Quantity-1); err != nil {
				return nil, err
			}
		}
	}

	// early, advisory availability check; the transactional reserve
	// remains the authoritative gate
	for _, line := range orderCart.Lines() {
		count, constrained := catalog[line.ProductID].Available(line.Type, line.Size)
		if constrained && count < line.Quantity {
			return nil, fmt.Errorf("product %s size %s: %w", line.ProductID, line.Size, ErrInsufficientStock)
		}
	}

	return orderCart, nil
}

// failOrder is best-effort compensation: the order stays on record but
// must not remain "pending" after settlement was aborted.
func (s *OrderService) failOrder(ctx context.Context, order *domain.Order) {
	if err := s.orders.UpdateStatus(ctx, order.OrderID, domain.OrderStatusFailed); err != nil {
		s.logger.Error("Failed to mark order as failed",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}
}

func (s *OrderService) publishSettled(order *domain.Order, requestID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderCreated(order, requestID); err != nil {
		s.logger.Error("Failed to publish order created event",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}
	for _, line := range order.Lines {
		if err := s.events.PublishStockDeducted(order.OrderID, line); err != nil {
			s.logger.Error("Failed to publish stock deducted event",
				zap.String("order_id", order.OrderID),
				zap.String("product_id", line.ProductID),
				zap.Error(err))
		}
	}
}

func (s *OrderService) publishReservationFailure(order *domain.Order, reason string) {
	if s.events == nil {
		return
	}
	for _, line := range order.Lines {
		if err := s.events.PublishStockDeductionFailed(order.OrderID, line.ProductID, reason); err != nil {
			s.logger.Error("Failed to publish compensation event",
				zap.String("order_id", order.OrderID),
				zap.Error(err))
		}
	}
}

// ListOrders returns the caller's orders, newest last, skipping ids
// whose records are gone.
func (s *OrderService) ListOrders(ctx context.Context, identity domain.Identity) ([]domain.Order, error) {
	if identity.ID == "" {
		return nil, ErrUnauthorized
	}

	profile, err := s.users.GetProfile(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if len(profile.Orders) == 0 {
		return []domain.Order{}, nil
	}

	return s.orders.GetOrders(ctx, profile.Orders)
}

// GetOrder returns one of the caller's orders; callers cannot read
// other users' orders.
func (s *OrderService) GetOrder(ctx context.Context, identity domain.Identity, orderID string) (*domain.Order, error) {
	if identity.ID == "" {
		return nil, ErrUnauthorized
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != identity.ID {
		return nil, ErrOrderNotFound
	}

	return order, nil
}
