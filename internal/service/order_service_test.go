package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/cart"
	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/pricing"
	"github.com/wearvault/storefront-service/internal/repository"
)

// ---- fakes shared by the service tests ----

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newFakeCatalog(products ...*domain.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]*domain.Product)}
	for _, p := range products {
		f.products[p.ProductID] = p
	}
	return f
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ProductID] = p
	return nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

// fakeLedger constrains only the keys present in its stock map,
// mirroring the lenient default for products without availability
// records. Reserve is all-or-nothing under one lock.
type fakeLedger struct {
	mu    sync.Mutex
	stock map[string]int
}

func ledgerKey(productID string, txType domain.TransactionType, size string) string {
	return fmt.Sprintf("%s/%s/%s", productID, txType, size)
}

func newFakeLedger(stock map[string]int) *fakeLedger {
	if stock == nil {
		stock = make(map[string]int)
	}
	return &fakeLedger{stock: stock}
}

func (f *fakeLedger) Reserve(_ context.Context, lines []domain.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, line := range lines {
		key := ledgerKey(line.ProductID, line.Type, line.Size)
		count, constrained := f.stock[key]
		if constrained && count < line.Quantity {
			return fmt.Errorf("product %s: %w", line.ProductID, repository.ErrInsufficientStock)
		}
	}
	for _, line := range lines {
		key := ledgerKey(line.ProductID, line.Type, line.Size)
		if _, constrained := f.stock[key]; constrained {
			f.stock[key] -= line.Quantity
		}
	}
	return nil
}

func (f *fakeLedger) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[key]
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]domain.Order)}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.OrderID] = *order
	return nil
}

func (f *fakeOrderStore) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		return &o, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeOrderStore) GetOrders(_ context.Context, orderIDs []string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	return nil
}

func (f *fakeOrderStore) statuses() map[domain.OrderStatus]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[domain.OrderStatus]int)
	for _, o := range f.orders {
		out[o.Status]++
	}
	return out
}

type fakeUserStore struct {
	mu        sync.Mutex
	profiles  map[string]*domain.UserProfile
	appendErr error
}

func newFakeUserStore(profiles ...*domain.UserProfile) *fakeUserStore {
	f := &fakeUserStore{profiles: make(map[string]*domain.UserProfile)}
	for _, p := range profiles {
		f.profiles[p.UserID] = p
	}
	return f
}

func (f *fakeUserStore) CreateProfile(_ context.Context, p *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; ok {
		return repository.ErrUserExists
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeUserStore) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeUserStore) GetProfileByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeUserStore) PutProfile(_ context.Context, p *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeUserStore) AppendOrder(_ context.Context, userID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Orders = append(p.Orders, orderID)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	created  int
	deducted int
	failed   int
}

func (f *fakePublisher) PublishOrderCreated(*domain.Order, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return nil
}

func (f *fakePublisher) PublishStockDeducted(string, domain.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deducted++
	return nil
}

func (f *fakePublisher) PublishStockDeductionFailed(string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
	return nil
}

// ---- fixtures ----

func summerDress() *domain.Product {
	return &domain.Product{
		ProductID: "1",
		Name:      "Elegant Summer Dress",
		BuyPrice:  89,
		RentPrice: 25,
		Sizes:     []string{"XS", "S", "M", "L"},
		Availability: domain.Availability{
			domain.TransactionBuy:  {"M": 10},
			domain.TransactionRent: {"M": 4},
		},
	}
}

func alice() domain.Identity {
	return domain.Identity{ID: "user-1", Email: "alice@example.com", Name: "Alice"}
}

func aliceProfile() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:   "user-1",
		Email:    "alice@example.com",
		Name:     "Alice",
		Wishlist: []string{},
		Orders:   []string{},
	}
}

type settlementEnv struct {
	catalog   *fakeCatalog
	ledger    *fakeLedger
	orders    *fakeOrderStore
	users     *fakeUserStore
	publisher *fakePublisher
	svc       *OrderService
}

func newSettlementEnv(catalog *fakeCatalog, ledger *fakeLedger) *settlementEnv {
	env := &settlementEnv{
		catalog:   catalog,
		ledger:    ledger,
		orders:    newFakeOrderStore(),
		users:     newFakeUserStore(aliceProfile()),
		publisher: &fakePublisher{},
	}
	env.svc = NewOrderService(env.catalog, env.ledger, env.orders, env.users, env.publisher, zap.NewNop())
	return env
}

func checkoutRequest(items ...domain.OrderLineRequest) domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			Street: "123 Main St", City: "New York", State: "NY", ZipCode: "10001",
		},
	}
}

// ---- tests ----

func TestCreateOrderSettlesSuccessfully(t *testing.T) {
	env := newSettlementEnv(
		newFakeCatalog(summerDress()),
		newFakeLedger(map[string]int{
			ledgerKey("1", domain.TransactionBuy, "M"):  10,
			ledgerKey("1", domain.TransactionRent, "M"): 4,
		}),
	)

	order, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionRent, Size: "M", RentalWeeks: 4, Quantity: 1},
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	require.NoError(t, err)

	// rent 4 weeks at 25/week -> 80, buy -> 89, subtotal 169 ships free
	assert.Equal(t, 169.0, order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 80.0, order.Lines[0].UnitPrice)
	assert.Equal(t, 89.0, order.Lines[1].UnitPrice)

	stored, err := env.orders.GetOrder(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)

	profile, err := env.users.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{order.OrderID}, profile.Orders)

	assert.Equal(t, 9, env.ledger.count(ledgerKey("1", domain.TransactionBuy, "M")))
	assert.Equal(t, 3, env.ledger.count(ledgerKey("1", domain.TransactionRent, "M")))

	assert.Equal(t, 1, env.publisher.created)
	assert.Equal(t, 2, env.publisher.deducted)
	assert.Equal(t, 0, env.publisher.failed)
}

func TestCreateOrderUnauthorized(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	_, err := env.svc.CreateOrder(context.Background(), domain.Identity{}, checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, env.orders.statuses(), "nothing may be persisted before auth")
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "404", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, env.orders.statuses())
}

func TestCreateOrderValidationErrors(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "XXL", Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, cart.ErrInvalidSize)

	_, err = env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionRent, Size: "M", RentalWeeks: 0, Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, pricing.ErrInvalidDuration)

	_, err = env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: "lease", Size: "M", Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 0},
	), "req-1")
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	assert.Empty(t, env.orders.statuses(), "validation errors must precede any mutation")
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	order, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 2},
	), "req-1")
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, 3, order.Lines[0].Quantity)
}

func TestCreateOrderTotalMismatch(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	submitted := 1.0
	req := checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 2},
	)
	req.Total = &submitted

	_, err := env.svc.CreateOrder(context.Background(), alice(), req, "req-1")
	assert.ErrorIs(t, err, ErrTotalMismatch)
	assert.Empty(t, env.orders.statuses())
}

func TestCreateOrderAcceptsMatchingTotal(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	submitted := 178.0 // 2 * 89, free shipping
	req := checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 2},
	)
	req.Total = &submitted

	order, err := env.svc.CreateOrder(context.Background(), alice(), req, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 178.0, order.Total)
}

func TestCreateOrderRejectsShortStockBeforePersisting(t *testing.T) {
	// catalog shows the shortage up front
	product := summerDress()
	product.Availability[domain.TransactionRent]["M"] = 0
	env := newSettlementEnv(newFakeCatalog(product), newFakeLedger(nil))

	_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionRent, Size: "M", RentalWeeks: 2, Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, env.orders.statuses(), "no order record for an up-front shortage")
}

func TestCreateOrderInventoryRejectionMarksOrderFailed(t *testing.T) {
	// catalog is unconstrained but the ledger is short, as happens when
	// a concurrent order drained the stock after validation
	product := summerDress()
	product.Availability = nil
	env := newSettlementEnv(
		newFakeCatalog(product),
		newFakeLedger(map[string]int{ledgerKey("1", domain.TransactionBuy, "M"): 0}),
	)

	_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	statuses := env.orders.statuses()
	assert.Equal(t, 1, statuses[domain.OrderStatusFailed], "rejected order must be compensated, not left pending")
	assert.Equal(t, 0, statuses[domain.OrderStatusPending])
	assert.Equal(t, 0, env.ledger.count(ledgerKey("1", domain.TransactionBuy, "M")), "stock never goes negative")
	assert.Equal(t, 1, env.publisher.failed)
	assert.Equal(t, 0, env.publisher.created)
}

func TestCreateOrderHistoryFailureCompensates(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))
	env.users.appendErr = fmt.Errorf("throttled")

	_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	require.Error(t, err)

	statuses := env.orders.statuses()
	assert.Equal(t, 1, statuses[domain.OrderStatusFailed])
	assert.Equal(t, 0, statuses[domain.OrderStatusPending])
}

func TestCreateOrderConcurrentOverdraw(t *testing.T) {
	// stock {M: 1}: of two concurrent orders exactly one may win
	product := summerDress()
	product.Availability[domain.TransactionBuy]["M"] = 1
	env := newSettlementEnv(
		newFakeCatalog(product),
		newFakeLedger(map[string]int{ledgerKey("1", domain.TransactionBuy, "M"): 1}),
	)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
				domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
			), "req-1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, shortfalls int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrInsufficientStock):
			shortfalls++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, shortfalls)
	assert.Equal(t, 0, env.ledger.count(ledgerKey("1", domain.TransactionBuy, "M")))
}

func TestListOrders(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	first, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	require.NoError(t, err)

	// a dangling history entry must be dropped, not error
	require.NoError(t, env.users.AppendOrder(context.Background(), "user-1", "order_gone"))

	orders, err := env.svc.ListOrders(context.Background(), alice())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.OrderID, orders[0].OrderID)

	_, err = env.svc.ListOrders(context.Background(), domain.Identity{ID: "ghost"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = env.svc.ListOrders(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	env := newSettlementEnv(newFakeCatalog(summerDress()), newFakeLedger(nil))

	order, err := env.svc.CreateOrder(context.Background(), alice(), checkoutRequest(
		domain.OrderLineRequest{ProductID: "1", Type: domain.TransactionBuy, Size: "M", Quantity: 1},
	), "req-1")
	require.NoError(t, err)

	got, err := env.svc.GetOrder(context.Background(), alice(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, got.OrderID)

	_, err = env.svc.GetOrder(context.Background(), domain.Identity{ID: "intruder"}, order.OrderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
