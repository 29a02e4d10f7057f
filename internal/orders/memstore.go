package orders

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrVariantNotFound = errors.New("variant not found")

// MemStore: implementasi in-memory untuk semua store interface milik engine.
// Dipakai sebagai test double di service & handler test, dan buat main
// jalan lokal tanpa postgres.
type MemStore struct {
	mu       sync.Mutex
	variants map[string]*SaleVariant
	orders   map[string]*Order
	items    map[string][]OrderItem
	counters map[string]int
}

var _ VariantStore = (*MemStore)(nil)
var _ Store = (*MemStore)(nil)
var _ InvoiceSequence = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		variants: make(map[string]*SaleVariant),
		orders:   make(map[string]*Order),
		items:    make(map[string][]OrderItem),
		counters: make(map[string]int),
	}
}

func (m *MemStore) PutVariant(v SaleVariant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := v
	m.variants[v.ID] = &cp
}

func (m *MemStore) DeleteVariant(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.variants, id)
}

func (m *MemStore) StockOf(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.variants[id]; ok {
		return v.Stock
	}
	return -1
}

func (m *MemStore) GetForSale(ctx context.Context, ids []string) ([]SaleVariant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SaleVariant, 0, len(ids))
	for _, id := range ids {
		if v, ok := m.variants[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *MemStore) TryDecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok {
		return false, ErrVariantNotFound
	}
	if v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	return true, nil
}

func (m *MemStore) AddStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok {
		return ErrVariantNotFound
	}
	v.Stock += qty
	return nil
}

func (m *MemStore) InsertOrder(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.orders {
		if ex.InvoiceNo == o.InvoiceNo {
			return errors.New("duplicate invoice_no")
		}
	}
	cp := *o
	cp.Items = nil
	m.orders[o.ID] = &cp
	return nil
}

func (m *MemStore) InsertItems(ctx context.Context, items []OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.items[it.OrderID] = append(m.items[it.OrderID], it)
	}
	return nil
}

func (m *MemStore) DeleteItems(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, orderID)
	return nil
}

func (m *MemStore) DeleteOrder(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, orderID)
	return nil
}

func (m *MemStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), m.items[orderID]...)
	return &cp, nil
}

func (m *MemStore) MarkReversed(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != StatusCreated {
		return false, nil
	}
	o.Status = StatusReversed
	return true, nil
}

func (m *MemStore) Next(ctx context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := day.Format("2006-01-02")
	m.counters[k]++
	return m.counters[k], nil
}

// OrderCount bantu test verifikasi tidak ada row yang nyangkut.
func (m *MemStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *MemStore) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, its := range m.items {
		n += len(its)
	}
	return n
}
