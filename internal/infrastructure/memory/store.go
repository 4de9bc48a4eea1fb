// Package memory implementa los puertos del libro de movimientos en memoria.
// Se usa en pruebas y con LEDGER_STORE=memory; los datos se pierden al reiniciar.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Store guarda catálogo, movimientos y stock. Cada producto tiene un candado propio que
// una unidad de trabajo mantiene desde GetForUpdate hasta Commit/Rollback.
type Store struct {
	mu        sync.RWMutex
	products  map[string]entity.Product
	movements []entity.StockMovement
	stock     map[string]entity.Stock

	seq atomic.Int64

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout limita la espera por el candado de un producto. Al vencer se devuelve
// domain.ErrSerialization y el libro mayor reintenta. 0 = esperar hasta que el contexto termine.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products: make(map[string]entity.Product),
		stock:    make(map[string]entity.Stock),
		locks:    make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddProduct registra un producto en el catálogo en memoria.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.products[p.ID] = p
}

func (s *Store) productLock(productID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[productID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[productID] = l
	}
	return l
}

// lock toma el candado del producto respetando el contexto y el timeout configurado.
func (s *Store) lock(ctx context.Context, productID string) (func(), error) {
	l := s.productLock(productID)
	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		t := time.NewTimer(s.lockTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-timeout:
		return nil, domain.ErrSerialization
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) getStock(productID string) (entity.Stock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stock[productID]
	return st, ok
}

// selectMovements copia los movimientos que cumplen keep, en orden (OccurredAt, Sequence).
func (s *Store) selectMovements(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := []*entity.StockMovement{}
	for i := range s.movements {
		if keep(&s.movements[i]) {
			list = append(list, cloneMovement(&s.movements[i]))
		}
	}
	sortMovements(list)
	return list
}

// commit publica de una vez lo preparado por una unidad de trabajo.
func (s *Store) commit(movements []*entity.StockMovement, stock map[string]entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range movements {
		s.movements = append(s.movements, *cloneMovement(m))
	}
	for id, st := range stock {
		s.stock[id] = st
	}
}

func sortMovements(list []*entity.StockMovement) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.Before(list[j].OccurredAt)
		}
		return list[i].Sequence < list[j].Sequence
	})
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.UnitPrice != nil {
		p := *m.UnitPrice
		c.UnitPrice = &p
	}
	return &c
}

func between(from, to time.Time) func(*entity.StockMovement) bool {
	return func(m *entity.StockMovement) bool {
		return !m.OccurredAt.Before(from) && m.OccurredAt.Before(to)
	}
}

// ParseProducts interpreta "id=nombre,id2=nombre2" (formato de LEDGER_SEED_PRODUCTS).
// Entradas sin "=" usan el id como nombre; las vacías se ignoran.
func ParseProducts(raw string) []entity.Product {
	var out []entity.Product
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, ok := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			name = id
		}
		if id == "" {
			continue
		}
		out = append(out, entity.Product{ID: id, SKU: id, Name: name})
	}
	return out
}
