package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

func TestResultCacheGetSet(t *testing.T) {
	c := NewCache(10, time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("k", &lookup.Result{CaseNumber: "CRL 1/2023"})
	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "CRL 1/2023", got.CaseNumber)

	got.CaseNumber = "mutated"
	again, _ := c.Get("k")
	assert.Equal(t, "CRL 1/2023", again.CaseNumber)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
}

func TestResultCacheEvictsWhenFull(t *testing.T) {
	c := NewCache(2, time.Minute)
	c.Set("a", &lookup.Result{})
	time.Sleep(2 * time.Millisecond)
	c.Set("b", &lookup.Result{})
	time.Sleep(2 * time.Millisecond)
	c.Set("c", &lookup.Result{})

	assert.Equal(t, 2, c.Stats().Size)
	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
}

func TestGenerateCacheKey(t *testing.T) {
	key := GenerateCacheKey(lookup.Query{CaseType: "CRL", CaseNumber: "12/A", FilingYear: 2020})
	assert.Equal(t, "case:CRL:12/A:2020", key)
}

func TestCachedClient(t *testing.T) {
	calls := 0
	next := lookup.ClientFunc(func(_ context.Context, q lookup.Query) (*lookup.Result, error) {
		calls++
		if q.CaseNumber == "404" {
			return nil, apperr.NotFound(apperr.MsgNotFound)
		}
		return &lookup.Result{CaseNumber: q.Display()}, nil
	})

	client := NewCachedClient(next, NewCache(10, time.Minute), logger.NewNop())
	q := lookup.Query{CaseType: "CRL", CaseNumber: "1", FilingYear: 2023}

	first, err := client.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := client.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, calls)

	missing := lookup.Query{CaseType: "CRL", CaseNumber: "404", FilingYear: 2023}
	_, err = client.Search(context.Background(), missing)
	assert.Error(t, err)
	_, err = client.Search(context.Background(), missing)
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}
