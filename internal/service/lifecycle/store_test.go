package lifecycle_test

import (
	"context"
	"sync"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ports/dispatchtx"
)

// memStore is a transactional in-memory dispatch store. A failing callback leaves no trace.
type memStore struct {
	mu       sync.Mutex
	orders   map[string]*domain.DeliveryOrder
	couriers map[int64]*domain.Courier
	logs     []domain.HistoryEntry
	failLog  error
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[string]*domain.DeliveryOrder{},
		couriers: map[int64]*domain.Courier{},
	}
}

func (s *memStore) putOrder(o domain.DeliveryOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o.Clone()
}

func (s *memStore) putCourier(c domain.Courier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.couriers[c.ID] = &cp
}

func (s *memStore) order(id string) domain.DeliveryOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id].Clone()
}

func (s *memStore) courier(id int64) domain.Courier {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.couriers[id]
	return c
}

func (s *memStore) history() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryEntry(nil), s.logs...)
}

func (s *memStore) GetOrder(_ context.Context, id string) (*domain.DeliveryOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (s *memStore) WithTx(_ context.Context, fn func(tx dispatchtx.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		orders:   make(map[string]*domain.DeliveryOrder, len(s.orders)),
		couriers: make(map[int64]*domain.Courier, len(s.couriers)),
		failLog:  s.failLog,
	}
	for k, v := range s.orders {
		tx.orders[k] = v.Clone()
	}
	for k, v := range s.couriers {
		c := *v
		tx.couriers[k] = &c
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.orders = tx.orders
	s.couriers = tx.couriers
	s.logs = append(s.logs, tx.logs...)
	return nil
}

type memTx struct {
	orders   map[string]*domain.DeliveryOrder
	couriers map[int64]*domain.Courier
	logs     []domain.HistoryEntry
	failLog  error
}

func (t *memTx) GetOrderForUpdate(_ context.Context, id string) (*domain.DeliveryOrder, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (t *memTx) UpdateOrder(_ context.Context, o *domain.DeliveryOrder) error {
	t.orders[o.ID] = o.Clone()
	return nil
}

func (t *memTx) GetCourierForUpdate(_ context.Context, id int64) (*domain.Courier, error) {
	c, ok := t.couriers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) UpdateCourier(_ context.Context, c *domain.Courier) error {
	cp := *c
	t.couriers[c.ID] = &cp
	return nil
}

func (t *memTx) CreateLog(_ context.Context, e domain.HistoryEntry) error {
	if t.failLog != nil {
		return t.failLog
	}
	t.logs = append(t.logs, e)
	return nil
}
