// Package store serves cleaned listings to the API
package store

import (
	"context"
	"sync"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tabular"
)

// Reader lists the current cleaned listings
type Reader interface {
	List(ctx context.Context) ([]*models.Listing, error)
}

// Memory holds listings in process
type Memory struct {
	mu       sync.RWMutex
	listings []*models.Listing
}

func NewMemory(listings []*models.Listing) *Memory {
	return &Memory{listings: listings}
}

// LoadFile reads a cleaned CSV written by the pipeline
func LoadFile(path string) (*Memory, error) {
	listings, err := tabular.ReadListings(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(listings), nil
}

// Replace swaps the held listings
func (m *Memory) Replace(listings []*models.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = listings
}

// List returns copies of the held listings
func (m *Memory) List(_ context.Context) ([]*models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Listing, len(m.listings))
	for i, l := range m.listings {
		out[i] = l.Clone()
	}
	return out, nil
}
