package product

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestMemStore_AddAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	prev := 0
	for i := 0; i < 5; i++ {
		p, err := s.Add(ctx, NewProduct{Name: "p", Price: 1})
		require.NoError(t, err)
		assert.Greater(t, p.ID, prev)
		prev = p.ID
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, p := range list {
		assert.Equal(t, i+1, p.ID, "list keeps insertion order")
	}
}

func TestMemStore_ConcurrentAddsNeverShareID(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	const n = 200
	ids := make(chan int, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p, err := s.Add(ctx, NewProduct{Name: "p", Sizes: []string{"M"}})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- p.ID
		}()
		go func() {
			defer wg.Done()
			_, _ = s.List(ctx)
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestMemStore_Get(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	added, err := s.Add(ctx, NewProduct{Name: "Shirt", Price: 19.99, Sizes: []string{"S", "M"}, ImageURL: "a.png"})
	require.NoError(t, err)

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	_, err = s.Get(ctx, added.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	sizes := []string{"S", "M"}
	s := NewMemStore()

	p, err := s.Add(ctx, NewProduct{Name: "Shirt", Sizes: sizes})
	require.NoError(t, err)

	sizes[0] = "XXL"
	p.Sizes[1] = "XXL"

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "M"}, got.Sizes)
}

func TestMemStore_Filter(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(
		NewProduct{Name: "cheap", Price: 5, Sizes: []string{"Category1"}},
		NewProduct{Name: "low-edge", Price: 10, Sizes: []string{"Category1"}},
		NewProduct{Name: "mid-other", Price: 15, Sizes: []string{"Category2"}},
		NewProduct{Name: "mid", Price: 15, Sizes: []string{"Category2", "Category1"}},
		NewProduct{Name: "high-edge", Price: 20, Sizes: []string{"Category1"}},
		NewProduct{Name: "pricey", Price: 20.01, Sizes: []string{"Category1"}},
	)

	got, err := s.Filter(ctx, Filter{MinPrice: ptr(10.0), MaxPrice: ptr(20.0), Category: ptr("Category1")})
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"low-edge", "mid", "high-edge"}, names)

	all, err := s.Filter(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	onlyMin, err := s.Filter(ctx, Filter{MinPrice: ptr(20.0)})
	require.NoError(t, err)
	assert.Len(t, onlyMin, 2)

	none, err := s.Filter(ctx, Filter{Category: ptr("category1")})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSeedProducts(t *testing.T) {
	s := NewMemStore(SeedProducts()...)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].ID)

	p, err := s.Add(context.Background(), NewProduct{Name: "next"})
	require.NoError(t, err)
	assert.Equal(t, 4, p.ID)
	assert.NotNil(t, p.Sizes)
}
