package postgres

import (
	"context"
	"database/sql"

	domain "github.com/virouzrx/petfood-verifai/internal/domain/products"
)

type ProductRepository struct{ db *sql.DB }

func NewProductRepository(db *sql.DB) *ProductRepository { return &ProductRepository{db: db} }

// FindByNameAndURL matches on the exact pair among non-manual rows only.
// Manual products are never looked up: every manual submission is a new row.
func (r *ProductRepository) FindByNameAndURL(ctx context.Context, name, url string) (*domain.Product, error) {
	const q = `
SELECT id, name, url, is_manual_entry, created_at
FROM products
WHERE name=$1 AND url=$2 AND NOT is_manual_entry
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, name, url)
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.URL, &p.IsManualEntry, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
