package payments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory Store, used when no database is
// configured and in tests. The mutex gives CompareAndTransition the same
// atomicity the SQL implementation gets from its guarded UPDATE.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]*Order
}

// NewMemoryStore creates a new in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*Order)}
}

func (m *MemoryStore) Insert(_ context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.OrderID]; exists {
		return ErrDuplicateOrder
	}
	cp := *order
	m.orders[order.OrderID] = &cp
	return nil
}

func (m *MemoryStore) GetByOrderID(_ context.Context, orderID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *MemoryStore) FindCapturedBySubject(_ context.Context, subjectID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.SubjectID == subjectID && order.Status == StatusCaptured {
			cp := *order
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MemoryStore) CompareAndTransition(_ context.Context, orderID string, expected, next Status, paymentID, signature string) (TransitionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return TransitionNoop, ErrOrderNotFound
	}

	if order.Status != expected {
		// Lost the race or a redelivery: the row is already terminal.
		return TransitionNoop, nil
	}

	order.Status = next
	order.GatewayPaymentID = paymentID
	order.GatewaySignature = signature
	order.UpdatedAt = time.Now().UTC()
	return TransitionApplied, nil
}

func (m *MemoryStore) ListBySubject(_ context.Context, subjectID string) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Order
	for _, order := range m.orders {
		if order.SubjectID == subjectID {
			cp := *order
			result = append(result, &cp)
		}
	}
	sortOrders(result)
	return result, nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Order
	for _, order := range m.orders {
		cp := *order
		result = append(result, &cp)
	}
	sortOrders(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortOrders orders newest-first for stable listings.
func sortOrders(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
