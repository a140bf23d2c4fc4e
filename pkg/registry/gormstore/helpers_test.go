package gormstore_test

import (
	"testing"

	"github.com/dmitrymomot/mtenant/pkg/cache"
)

func newMemoryCache(t *testing.T) *cache.Memory {
	t.Helper()
	c := cache.NewMemory(0)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
