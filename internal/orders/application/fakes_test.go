package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
)

// memStore is an in-memory ports.Store. WithinTx snapshots all tables and
// restores them when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	orders   map[string]*domain.Order
	payments map[string]*domain.Payment
	products map[string]ports.Product
	cart     map[string]map[string]int

	failCart bool
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[string]*domain.Order),
		payments: make(map[string]*domain.Payment),
		products: make(map[string]ports.Product),
		cart:     make(map[string]map[string]int),
	}
}

func (s *memStore) addProduct(id, name, price string, stock int) {
	s.products[id] = ports.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func (s *memStore) addToCart(userID, productID string, qty int) {
	if s.cart[userID] == nil {
		s.cart[userID] = make(map[string]int)
	}
	s.cart[userID][productID] = qty
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) payment(id string) *domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPayment(s.payments[id])
}

func (s *memStore) Orders() ports.OrderRepository     { return memOrders{s} }
func (s *memStore) Payments() ports.PaymentRepository { return memPayments{s} }
func (s *memStore) Products() ports.ProductRepository { return memProducts{s} }
func (s *memStore) Cart() ports.CartRepository        { return memCart{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(tx ports.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	orders, payments, products, cart := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.orders, s.payments, s.products, s.cart = orders, payments, products, cart
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) snapshot() (map[string]*domain.Order, map[string]*domain.Payment, map[string]ports.Product, map[string]map[string]int) {
	orders := make(map[string]*domain.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = copyOrder(v)
	}
	payments := make(map[string]*domain.Payment, len(s.payments))
	for k, v := range s.payments {
		payments[k] = copyPayment(v)
	}
	products := make(map[string]ports.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	cart := make(map[string]map[string]int, len(s.cart))
	for u, items := range s.cart {
		cart[u] = make(map[string]int, len(items))
		for k, v := range items {
			cart[u][k] = v
		}
	}
	return orders, payments, products, cart
}

func copyOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]domain.LineItem(nil), o.Lines...)
	return &c
}

func copyPayment(p *domain.Payment) *domain.Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r memOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return copyOrder(o), nil
}

func (r memOrders) GetForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrders) Update(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[order.ID]
	if !ok {
		return domain.NewOrderNotFound(order.ID)
	}
	c := copyOrder(order)
	c.Lines = cur.Lines
	r.s.orders[order.ID] = c
	return nil
}

func (r memOrders) ReplaceLines(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[order.ID]
	if !ok {
		return domain.NewOrderNotFound(order.ID)
	}
	cur.Lines = append([]domain.LineItem(nil), order.Lines...)
	return nil
}

func (r memOrders) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.orders, id)
	return nil
}

func (r memOrders) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.PaymentID == paymentID {
			return copyOrder(o), nil
		}
	}
	return nil, errors.NewNotFound("order for payment", paymentID)
}

type memPayments struct{ s *memStore }

func (r memPayments) Create(ctx context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[payment.ID] = copyPayment(payment)
	return nil
}

func (r memPayments) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domain.NewPaymentNotFound(id)
	}
	return copyPayment(p), nil
}

func (r memPayments) GetByExternalRef(ctx context.Context, ref string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ExternalRef != "" && p.ExternalRef == ref {
			return copyPayment(p), nil
		}
	}
	return nil, domain.NewPaymentNotFound(ref)
}

func (r memPayments) SetMethod(ctx context.Context, id string, method domain.PaymentMethod) error {
	return r.update(id, func(p *domain.Payment) {
		p.Method = method
		p.ExternalRef = ""
		p.PaymentURL = ""
	})
}

func (r memPayments) AttachExternalRef(ctx context.Context, id, ref, paymentURL string) error {
	return r.update(id, func(p *domain.Payment) {
		p.ExternalRef = ref
		p.PaymentURL = paymentURL
	})
}

func (r memPayments) MarkPaid(ctx context.Context, ref, transactionID string, paidAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ExternalRef == ref && p.Status == domain.PaymentStatusPending {
			p.Status = domain.PaymentStatusPaid
			p.TransactionID = transactionID
			p.PaidAt = &paidAt
			return true, nil
		}
	}
	return false, nil
}

func (r memPayments) SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return r.update(id, func(p *domain.Payment) {
		p.Status = status
		p.PaidAt = nil
		if status == domain.PaymentStatusPaid {
			now := time.Now().UTC()
			p.PaidAt = &now
		}
	})
}

func (r memPayments) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payments, id)
	return nil
}

func (r memPayments) ListPendingGateway(ctx context.Context, since, before time.Time, limit int) ([]*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.Payment
	for _, o := range r.s.orders {
		p := r.s.payments[o.PaymentID]
		if p == nil || o.Status != domain.OrderStatusPending || p.Status != domain.PaymentStatusPending {
			continue
		}
		if !p.Method.RequiresGateway() || p.CreatedAt.Before(since) || !p.CreatedAt.Before(before) {
			continue
		}
		out = append(out, copyPayment(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPayments) update(id string, fn func(p *domain.Payment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return domain.NewPaymentNotFound(id)
	}
	fn(p)
	return nil
}

type memProducts struct{ s *memStore }

func (r memProducts) GetForUpdate(ctx context.Context, ids []string) (map[string]ports.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]ports.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r memProducts) Reserve(ctx context.Context, productID string, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.s.products[productID] = p
	return true, nil
}

func (r memProducts) Release(ctx context.Context, productID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return nil
	}
	p.Stock += quantity
	r.s.products[productID] = p
	return nil
}

type memCart struct{ s *memStore }

func (r memCart) RemoveItems(ctx context.Context, userID string, productIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCart {
		return errors.NewInternal("cart unavailable", nil)
	}
	for _, id := range productIDs {
		delete(r.s.cart[userID], id)
	}
	return nil
}

// fakeGateway is a scriptable payment provider
type fakeGateway struct {
	mu          sync.Mutex
	initiateErr error
	verifyErr   error
	nextRef     string
	seq         int
	initiated   []ports.InitiateRequest
	txns        map[string]ports.Transaction
	verifyCalls int
	verifyDelay time.Duration
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{txns: make(map[string]ports.Transaction)}
}

func (g *fakeGateway) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	g.initiated = append(g.initiated, req)
	ref := g.nextRef
	if ref == "" {
		g.seq++
		ref = fmt.Sprintf("pidx-%d", g.seq)
	}
	g.nextRef = ""
	return &ports.InitiateResult{
		ExternalRef: ref,
		RedirectURL: "https://pay.example.com/?pidx=" + ref,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, ref string) (*ports.Transaction, error) {
	if g.verifyDelay > 0 {
		time.Sleep(g.verifyDelay)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewGatewayUnavailable("lookup aborted", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	txn, ok := g.txns[ref]
	if !ok {
		return &ports.Transaction{ExternalRef: ref, State: domain.TransactionInitiated}, nil
	}
	return &txn, nil
}

func (g *fakeGateway) setState(ref string, state domain.TransactionState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.txns[ref] = ports.Transaction{ExternalRef: ref, State: state}
}

func (g *fakeGateway) complete(ref string, amountMinor int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.txns[ref] = ports.Transaction{
		ExternalRef:   ref,
		State:         domain.TransactionCompleted,
		AmountMinor:   amountMinor,
		TransactionID: "txn-" + ref,
	}
}

// fakePublisher records published events
type fakePublisher struct {
	mu              sync.Mutex
	created         []string
	statusChanged   []string
	completed       []string
	verifyRequested []string
	err             error
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, order *domain.Order, method domain.PaymentMethod) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, order.ID)
	return p.err
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, prev, next domain.OrderStatus, actorID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanged = append(p.statusChanged, string(prev)+"->"+string(next))
	return p.err
}

func (p *fakePublisher) PublishPaymentCompleted(ctx context.Context, payment *domain.Payment, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, payment.ID)
	return p.err
}

func (p *fakePublisher) PublishVerifyRequested(ctx context.Context, ref string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.verifyRequested = append(p.verifyRequested, ref)
	return nil
}

func (p *fakePublisher) completedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.completed)
}

// fakeQueryRepo serves canned views
type fakeQueryRepo struct {
	views map[string]*domain.OrderView
}

func (r *fakeQueryRepo) ListByUser(ctx context.Context, userID string) ([]*domain.OrderView, error) {
	var out []*domain.OrderView
	for _, v := range r.views {
		if v.UserID == userID {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeQueryRepo) GetView(ctx context.Context, id string) (*domain.OrderView, error) {
	v, ok := r.views[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	c := *v
	c.Lines = append([]domain.LineItemView(nil), v.Lines...)
	return &c, nil
}

func (r *fakeQueryRepo) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.OrderView, int64, error) {
	var out []*domain.OrderView
	for _, v := range r.views {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		c := *v
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}
