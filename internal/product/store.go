package product

import (
	"context"
	"errors"
	"slices"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrValidation = errors.New("invalid product input")
)

type Product struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Sizes    []string `json:"sizes"`
	ImageURL string   `json:"imageUrl"`
}

// NewProduct is the input to Store.Add. The store assigns the id.
type NewProduct struct {
	Name     string
	Price    float64
	Sizes    []string
	ImageURL string
}

// Filter narrows a listing. Nil fields do not constrain the result.
type Filter struct {
	MinPrice *float64
	MaxPrice *float64
	Category *string
}

func (f Filter) Match(p Product) bool {
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Category != nil && !slices.Contains(p.Sizes, *f.Category) {
		return false
	}
	return true
}

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Add(ctx context.Context, in NewProduct) (Product, error)
	Get(ctx context.Context, id int) (Product, error)
	Filter(ctx context.Context, f Filter) ([]Product, error)
	Ping(ctx context.Context) error
}

func (p Product) clone() Product {
	p.Sizes = slices.Clone(p.Sizes)
	return p
}
