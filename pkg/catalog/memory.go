package catalog

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kompare/pkg/models"
)

// Memory is an in-process Store used as a test double for the pipeline and
// upsert engine. Semantics mirror the Mongo implementation.
type Memory struct {
	mu         sync.Mutex
	businesses map[string]models.Business
	products   map[string]*models.Product
}

func NewMemory() *Memory {
	return &Memory{
		businesses: make(map[string]models.Business),
		products:   make(map[string]*models.Product),
	}
}

func (m *Memory) EnsureBusiness(_ context.Context, b models.Business) (models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.businesses[b.Name]; ok {
		return existing, nil
	}
	b.ID = primitive.NewObjectID()
	m.businesses[b.Name] = b
	return b, nil
}

func (m *Memory) FindProductByURL(_ context.Context, productURL string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productURL]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.PriceHistory = append([]models.PricePoint(nil), p.PriceHistory...)
	return &cp, nil
}

func (m *Memory) InsertProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ProductURL] = &p
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, productURL string, u ProductUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productURL]
	if !ok {
		return nil
	}
	p.UpdatedAt = u.UpdatedAt
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Image != "" {
		p.Image = u.Image
	}
	if u.HistoryAppend != nil {
		p.PriceHistory = append(p.PriceHistory, *u.HistoryAppend)
	}
	return nil
}

func (m *Memory) DeleteStale(_ context.Context, businessName string, passStartedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for url, p := range m.products {
		if p.BusinessName != businessName {
			continue
		}
		if p.CreatedAt.Equal(p.UpdatedAt) && p.UpdatedAt.Before(passStartedAt) {
			delete(m.products, url)
			deleted++
		}
	}
	return deleted, nil
}

// BusinessCount reports how many distinct sellers exist; test helper.
func (m *Memory) BusinessCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.businesses)
}

// ProductCount reports how many products exist; test helper.
func (m *Memory) ProductCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}
