package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products map[int]Product
	stock    map[int]Stock
}

func NewMemStore(products []Product, stock []Stock) *MemStore {
	s := &MemStore{
		products: make(map[int]Product, len(products)),
		stock:    make(map[int]Stock, len(stock)),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, st := range stock {
		s.stock[st.ID] = st
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) GetStock(ctx context.Context, id int) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stock[id]
	return st, ok, nil
}

// SetStock overwrites the units available for id.
func (s *MemStore) SetStock(id, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = Stock{ID: id, Amount: amount}
}
