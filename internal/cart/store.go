// Package cart holds the shopper's cart: the line items, the catalog loaded
// at startup, and the operations that mutate the cart and persist it.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/pkg/kit"
)

const (
	MsgStockExhausted = "Estoque esgotado!"
	MsgAddFailed      = "Erro na adição do produto"
	MsgRemoveFailed   = "Erro na remoção do produto"
	MsgUpdateFailed   = "Erro na alteração de quantidade do produto"
)

const DefaultTimeout = 3 * time.Second

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opLoad   = "load_catalog"

	resultOK      = "ok"
	resultNoop    = "noop"
	resultFailed  = "failed"
	resultIgnored = "ignored"
)

type Deps struct {
	Catalog  Catalog
	Slot     slot.Slot
	Notifier notify.Notifier
	Log      *zap.Logger
	Metrics  *kit.CartMetrics

	// Timeout bounds each remote catalog read.
	Timeout time.Duration
	// Key overrides the slot key; defaults to slot.CartKey.
	Key string
}

// Store is the single cart of one shopper. Snapshots returned by Cart and
// Products are copies; every mutation builds a new slice, writes it to the
// slot and only then replaces the in-memory snapshot.
type Store struct {
	catalog  Catalog
	slot     slot.Slot
	notifier notify.Notifier
	log      *zap.Logger
	metrics  *kit.CartMetrics
	timeout  time.Duration
	key      string

	// opMu serializes mutating operations, including their remote reads.
	opMu sync.Mutex

	mu       sync.RWMutex
	cart     []Product
	products []Product
}

// New builds the store and restores the cart from the slot. A missing or
// unreadable slot yields an empty cart.
func New(ctx context.Context, deps Deps) *Store {
	s := &Store{
		catalog:  deps.Catalog,
		slot:     deps.Slot,
		notifier: deps.Notifier,
		log:      deps.Log,
		metrics:  deps.Metrics,
		timeout:  deps.Timeout,
		key:      deps.Key,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.key == "" {
		s.key = slot.CartKey
	}
	if s.slot == nil {
		s.slot = slot.NewMemory()
	}

	s.cart = s.restore(ctx)
	s.products = []Product{}
	return s
}

func (s *Store) restore(ctx context.Context) []Product {
	raw, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("read cart slot failed", zap.String("key", s.key), zap.Error(err))
		return []Product{}
	}
	if !ok {
		return []Product{}
	}

	items, err := DecodeCart(raw)
	if err != nil {
		s.log.Warn("discarding unreadable cart", zap.String("key", s.key), zap.Error(err))
		return []Product{}
	}
	return items
}

// Cart returns a copy of the current line items in first-added order.
func (s *Store) Cart() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cart)
}

// Products returns a copy of the catalog loaded by LoadCatalog.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.products)
}

// LoadCatalog fetches the product list once. On failure the catalog keeps
// its previous contents.
func (s *Store) LoadCatalog(ctx context.Context) {
	var products []Product
	err := s.remote(ctx, func(ctx context.Context) error {
		var err error
		products, err = s.catalog.ListProducts(ctx)
		return err
	})
	if err != nil {
		s.log.Warn("load catalog failed", zap.Error(err))
		s.metrics.Op(opLoad, resultFailed)
		return
	}

	s.mu.Lock()
	s.products = clone(products)
	s.mu.Unlock()

	s.log.Info("catalog loaded", zap.Int("products", len(products)))
	s.metrics.Op(opLoad, resultOK)
}

// AddProduct puts one unit of productID in the cart. A product already in
// the cart has its amount incremented without consulting the catalog. A new
// product is checked against remote stock; exhausted stock is reported to
// the shopper but does not stop the add.
func (s *Store) AddProduct(ctx context.Context, productID int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	log := s.log.With(zap.String("op", opAdd), zap.Int("product_id", productID))

	err := recovered(func() error {
		cur := s.Cart()

		if i := indexOf(cur, productID); i >= 0 {
			next := clone(cur)
			next[i].Amount++
			return s.commit(ctx, next)
		}

		var stock Stock
		err := s.remote(ctx, func(ctx context.Context) error {
			var err error
			stock, err = s.catalog.GetStock(ctx, productID)
			return err
		})
		if err != nil {
			return fmt.Errorf("stock: %w", err)
		}
		if stock.Amount < 1 {
			log.Info("stock exhausted", zap.Int("available", stock.Amount))
			s.notify(notify.KindStockExhausted, notify.LevelWarn, MsgStockExhausted)
		}

		var p Product
		err = s.remote(ctx, func(ctx context.Context) error {
			var err error
			p, err = s.catalog.GetProduct(ctx, productID)
			return err
		})
		if err != nil {
			return fmt.Errorf("product: %w", err)
		}

		next := append(clone(cur), Product{
			ID:     productID,
			Title:  p.Title,
			Price:  p.Price,
			Image:  p.Image,
			Amount: 1,
		})
		return s.commit(ctx, next)
	})
	if err != nil {
		log.Warn("add product failed", zap.Error(err))
		s.metrics.Op(opAdd, resultFailed)
		s.notify(notify.KindAddFailed, notify.LevelError, MsgAddFailed)
		return
	}
	s.metrics.Op(opAdd, resultOK)
}

// RemoveProduct drops productID from the cart. Removing an id that is not
// in the cart changes nothing and writes nothing.
func (s *Store) RemoveProduct(ctx context.Context, productID int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	result := resultOK
	err := recovered(func() error {
		cur := s.Cart()
		i := indexOf(cur, productID)
		if i < 0 {
			result = resultNoop
			return nil
		}

		next := make([]Product, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		return s.commit(ctx, next)
	})
	if err != nil {
		s.log.Warn("remove product failed", zap.Int("product_id", productID), zap.Error(err))
		s.metrics.Op(opRemove, resultFailed)
		s.notify(notify.KindRemoveFailed, notify.LevelError, MsgRemoveFailed)
		return
	}
	s.metrics.Op(opRemove, result)
}

// UpdateProductAmount ignores requests with an amount below one. Otherwise
// the matching entry is incremented by one unit; the requested amount only
// gates the operation.
func (s *Store) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) {
	if req.Amount < 1 {
		s.metrics.Op(opUpdate, resultIgnored)
		return
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	result := resultOK
	err := recovered(func() error {
		cur := s.Cart()
		i := indexOf(cur, req.ProductID)
		if i < 0 {
			result = resultNoop
			return nil
		}

		next := clone(cur)
		next[i].Amount++
		return s.commit(ctx, next)
	})
	if err != nil {
		s.log.Warn("update product amount failed",
			zap.Int("product_id", req.ProductID),
			zap.Int("amount", req.Amount),
			zap.Error(err),
		)
		s.metrics.Op(opUpdate, resultFailed)
		s.notify(notify.KindUpdateFailed, notify.LevelError, MsgUpdateFailed)
		return
	}
	s.metrics.Op(opUpdate, result)
}

// commit persists next and then swaps it in. A failed write leaves the
// current snapshot untouched.
func (s *Store) commit(ctx context.Context, next []Product) error {
	raw, err := EncodeCart(next)
	if err != nil {
		return err
	}
	if err := s.slot.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *Store) remote(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.catalog == nil {
		return ErrCatalogUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func (s *Store) notify(kind notify.Kind, level notify.Level, msg string) {
	s.metrics.Notified(string(kind))
	if s.notifier != nil {
		s.notifier.Notify(kind, level, msg)
	}
}

func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func indexOf(items []Product, id int) int {
	for i, p := range items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(items []Product) []Product {
	out := make([]Product, len(items))
	copy(out, items)
	return out
}
