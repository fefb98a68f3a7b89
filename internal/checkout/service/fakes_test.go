package service

import (
	"context"
	"errors"
	"sync"
	"time"

	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	fulfillmentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/locks"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	event *paymentdomain.Event
	err   error
	calls int
}

func (f *fakeVerifier) ConstructEvent(payload []byte, signature string) (*paymentdomain.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

type fakeGateway struct {
	items     []paymentdomain.LineItem
	listErr   error
	metadata  map[string]map[string]string
	metaErr   error
	listCalls int
	metaCalls int
}

func (f *fakeGateway) ListLineItems(ctx context.Context, sessionID string) ([]paymentdomain.LineItem, error) {
	f.listCalls++
	return f.items, f.listErr
}

func (f *fakeGateway) ProductMetadata(ctx context.Context, priceID string) (map[string]string, error) {
	f.metaCalls++
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.metadata[priceID], nil
}

type fakeCatalog struct {
	products map[string]catalogdomain.Product
	err      error
	calls    int
}

func (f *fakeCatalog) GetBySlug(ctx context.Context, slug string) (*catalogdomain.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[slug]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) Import(ctx context.Context, products []catalogdomain.Product) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeCatalog) List(ctx context.Context) ([]catalogdomain.Product, error) {
	return nil, errors.New("not implemented")
}

type fakeFulfillment struct {
	id       string
	err      error
	requests []fulfillmentdomain.OrderRequest
}

func (f *fakeFulfillment) CreateOrder(ctx context.Context, req fulfillmentdomain.OrderRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeOrders struct {
	mu        sync.Mutex
	node      *snowflake.Node
	orders    []*orderdomain.Order
	createErr error
	findErr   error
	creates   int
	reads     int
	// stale is served by Get, oldest first, before the live orders.
	stale []*orderdomain.Order
}

func newFakeOrders() *fakeOrders {
	node, _ := snowflake.NewNode(7)
	return &fakeOrders{node: node}
}

func (f *fakeOrders) Create(ctx context.Context, order *orderdomain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = f.node.Generate()
	order.Status = orderdomain.StatusFor(order.FulfillmentOrderID)
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrders) Get(ctx context.Context, id string) (*orderdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if len(f.stale) > 0 {
		o := f.stale[0]
		f.stale = f.stale[1:]
		return o, nil
	}
	for _, o := range f.orders {
		if o.ID.String() == id {
			return o, nil
		}
	}
	return nil, orderdomain.ErrNotFound
}

func (f *fakeOrders) FindBySessionID(ctx context.Context, sessionID string) (*orderdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, o := range f.orders {
		if o.SessionID == sessionID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) List(ctx context.Context, req orderdomain.ListRequest) ([]orderdomain.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrders) MarkSubmitted(ctx context.Context, id snowflake.ID, fulfillmentOrderID string) (*orderdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID != id {
			continue
		}
		if o.Status != orderdomain.StatusPending {
			return nil, orderdomain.ErrNotPending
		}
		o.Status = orderdomain.StatusSubmitted
		o.FulfillmentOrderID = &fulfillmentOrderID
		return o, nil
	}
	return nil, orderdomain.ErrNotFound
}

type harness struct {
	cfg         config.Config
	verifier    *fakeVerifier
	gateway     *fakeGateway
	catalog     *fakeCatalog
	fulfillment *fakeFulfillment
	orders      *fakeOrders
	locker      locks.Locker
}

func newHarness() *harness {
	var cfg config.Config
	cfg.Payments.WebhooksEnabled = true
	cfg.Checkout.DedupeSessions = true
	cfg.Checkout.LockTTL = time.Minute

	return &harness{
		cfg:         cfg,
		verifier:    &fakeVerifier{},
		gateway:     &fakeGateway{metadata: map[string]map[string]string{}},
		catalog:     &fakeCatalog{products: map[string]catalogdomain.Product{}},
		fulfillment: &fakeFulfillment{id: "gel_123"},
		orders:      newFakeOrders(),
		locker:      locks.NewMemoryLocker(),
	}
}

func (h *harness) service() *Service {
	return NewService(ServiceParam{
		Config:      h.cfg,
		Log:         zap.NewNop(),
		Verifier:    h.verifier,
		Gateway:     h.gateway,
		Catalog:     h.catalog,
		Orders:      h.orders,
		Fulfillment: h.fulfillment,
		Locker:      h.locker,
	}).(*Service)
}

// contentStoreCalls counts every read or write against the order store and catalog.
func (h *harness) contentStoreCalls() int {
	return h.orders.creates + h.orders.reads + h.catalog.calls
}

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return nil, locks.ErrLockHeld
}
