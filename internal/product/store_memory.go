package product

import (
	"context"
	"sync"
)

// MemStore keeps products in insertion order. Ids start at 1 and are assigned
// under the write lock, so concurrent adds never share an id.
type MemStore struct {
	mu     sync.RWMutex
	items  []Product
	nextID int
}

var _ Store = (*MemStore)(nil)

func NewMemStore(seed ...NewProduct) *MemStore {
	s := &MemStore{nextID: 1}
	for _, in := range seed {
		s.add(in)
	}
	return s
}

// SeedProducts is the demo catalog loaded when seeding is enabled.
func SeedProducts() []NewProduct {
	return []NewProduct{
		{Name: "Product 1", Price: 19.99, Sizes: []string{"Category1"}, ImageURL: "https://picsum.photos/seed/product1/400"},
		{Name: "Product 2", Price: 29.99, Sizes: []string{"Category2"}, ImageURL: "https://picsum.photos/seed/product2/400"},
		{Name: "Product 3", Price: 39.99, Sizes: []string{"Category1", "Category3"}, ImageURL: "https://picsum.photos/seed/product3/400"},
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p.clone())
	}
	return out, nil
}

func (s *MemStore) Add(ctx context.Context, in NewProduct) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	return s.add(in), nil
}

func (s *MemStore) add(in NewProduct) Product {
	p := Product{
		Name:     in.Name,
		Price:    in.Price,
		Sizes:    append([]string{}, in.Sizes...),
		ImageURL: in.ImageURL,
	}

	s.mu.Lock()
	p.ID = s.nextID
	s.nextID++
	s.items = append(s.items, p)
	s.mu.Unlock()

	return p.clone()
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *MemStore) Filter(ctx context.Context, f Filter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range s.items {
		if f.Match(p) {
			out = append(out, p.clone())
		}
	}
	return out, nil
}
