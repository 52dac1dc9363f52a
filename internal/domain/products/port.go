package products

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	// FindByNameAndURL looks up a non-manual product by exact (name, url).
	// Returns (nil, nil) when no such row exists.
	FindByNameAndURL(ctx context.Context, name, url string) (*Product, error)
}
