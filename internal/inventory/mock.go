package inventory

import (
	"context"
	"sync"
)

// MockClient is an in-memory inventory app for tests.
type MockClient struct {
	mu     sync.Mutex
	Series map[string]*RemoteSeries
	Sales  map[string]int
	Synced []string

	SaleErr error
}

func NewMockClient() *MockClient {
	return &MockClient{
		Series: make(map[string]*RemoteSeries),
		Sales:  make(map[string]int),
	}
}

func (m *MockClient) GetFeaturedSeries(ctx context.Context) ([]RemoteSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RemoteSeries
	for _, s := range m.Series {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *MockClient) GetSeries(ctx context.Context, ref string) (*RemoteSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Series[ref]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockClient) GetSeriesSales(ctx context.Context, ref string) (*SeriesSales, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &SeriesSales{Ref: ref, UnitsSold: m.Sales[ref]}, nil
}

func (m *MockClient) RecordPackSale(ctx context.Context, ref string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaleErr != nil {
		return m.SaleErr
	}
	m.Sales[ref] += quantity
	return nil
}

func (m *MockClient) SyncUser(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Synced = append(m.Synced, email)
	return nil
}

func (m *MockClient) GetDailyChecklist(ctx context.Context) ([]ChecklistEntry, error) {
	return nil, nil
}

func (m *MockClient) GetAvailableDates(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Compile-time interface check
var _ Client = (*MockClient)(nil)
