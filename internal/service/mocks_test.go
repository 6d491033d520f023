package service

import (
	"context"
	"sync"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/stretchr/testify/mock"
)

type gatewayMock struct {
	mock.Mock
	connected bool
}

func newGatewayMock() *gatewayMock {
	return &gatewayMock{connected: true}
}

func (m *gatewayMock) Execute(ctx context.Context, procedure string, params domain.Params) (*domain.RecordsetResult, error) {
	args := m.Called(ctx, procedure, params)
	res, _ := args.Get(0).(*domain.RecordsetResult)
	return res, args.Error(1)
}

func (m *gatewayMock) ExecuteRaw(ctx context.Context, query string, params domain.Params) (*domain.RecordsetResult, error) {
	args := m.Called(ctx, query, params)
	res, _ := args.Get(0).(*domain.RecordsetResult)
	return res, args.Error(1)
}

func (m *gatewayMock) DashboardInfo(ctx context.Context) (*domain.DashboardInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(*domain.DashboardInfo)
	return info, args.Error(1)
}

func (m *gatewayMock) Connected() bool { return m.connected }

func (m *gatewayMock) Close() error { return nil }

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Dropdowns
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*domain.Dropdowns{}}
}

func (c *memoryCache) GetDropdowns(_ context.Context, procedure string) (*domain.Dropdowns, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[procedure]
	return d, ok, nil
}

func (c *memoryCache) SetDropdowns(_ context.Context, procedure string, d *domain.Dropdowns) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[procedure] = d
	return nil
}

func (c *memoryCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*domain.Dropdowns{}
	return nil
}

func (c *memoryCache) Close() error { return nil }

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStorage) UploadObject(_ context.Context, key string, data []byte, contentType string) error {
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memoryStorage) PresignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?expires=" + expiry.String(), nil
}
