package registry_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/mtenant/pkg/registry"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Add(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	args := m.Called(ctx, tenant, settings)
	return args.Get(0).(registry.Record), args.Error(1)
}

func (m *mockStorage) Remove(ctx context.Context, tenant string) (int64, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStorage) Exists(ctx context.Context, tenant string) (bool, error) {
	args := m.Called(ctx, tenant)
	return args.Bool(0), args.Error(1)
}

func (m *mockStorage) UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	args := m.Called(ctx, tenant, settings)
	return args.Get(0).(registry.Record), args.Error(1)
}

func (m *mockStorage) Get(ctx context.Context, tenant string) (registry.Record, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(registry.Record), args.Error(1)
}

func (m *mockStorage) List(ctx context.Context) ([]registry.Record, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]registry.Record)
	return recs, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Has(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
