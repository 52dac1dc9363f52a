package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	"github.com/virouzrx/petfood-verifai/internal/domain/products"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Create writes the product (when new) and the analysis in one transaction.
// A concurrent insert of the same non-manual (name, url) pair hits the
// partial unique index; the losing insert re-reads and reuses the winner.
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis, newProduct *products.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if newProduct != nil {
		id, err := insertProduct(ctx, tx, newProduct)
		if err != nil {
			return err
		}
		a.ProductID = id
	}

	concerns, err := json.Marshal(a.Concerns)
	if err != nil {
		return err
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	const q = `
INSERT INTO analyses
(id, user_id, product_id, recommendation, justification, ingredients_text,
 species, breed, age, additional_info, concerns_json, snapshot_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`
	if _, err := tx.ExecContext(ctx, q,
		a.ID, a.UserID, a.ProductID, a.Recommendation, a.Justification, a.IngredientsText,
		a.Pet.Species, a.Pet.Breed, a.Pet.Age, a.Pet.AdditionalInfo, string(concerns), a.SnapshotURL, createdAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func insertProduct(ctx context.Context, tx *sql.Tx, p *products.Product) (products.ProductID, error) {
	if p.IsManualEntry {
		const q = `
INSERT INTO products (id, name, url, is_manual_entry, created_at)
VALUES ($1,$2,NULL,TRUE,$3);`
		_, err := tx.ExecContext(ctx, q, p.ID, p.Name, p.CreatedAt)
		return p.ID, err
	}

	const q = `
INSERT INTO products (id, name, url, is_manual_entry, created_at)
VALUES ($1,$2,$3,FALSE,$4)
ON CONFLICT (name, url) WHERE NOT is_manual_entry DO NOTHING;`
	res, err := tx.ExecContext(ctx, q, p.ID, p.Name, *p.URL, p.CreatedAt)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n > 0 {
		return p.ID, nil
	}

	// lost the find-or-create race: reuse the existing row
	const sel = `
SELECT id FROM products
WHERE name=$1 AND url=$2 AND NOT is_manual_entry
LIMIT 1;`
	var existing products.ProductID
	if err := tx.QueryRowContext(ctx, sel, p.Name, *p.URL).Scan(&existing); err != nil {
		return "", err
	}
	return existing, nil
}

// Get by ID + user
func (r *AnalysisRepository) Get(ctx context.Context, userID string, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, user_id, product_id, recommendation, justification, ingredients_text,
       species, breed, age, additional_info, concerns_json, snapshot_url, created_at
FROM analyses
WHERE user_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, userID, id)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// Paginate returns a page of analyses for one user, newest first
func (r *AnalysisRepository) Paginate(ctx context.Context, userID string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, user_id, product_id, recommendation, justification, ingredients_text,
       species, breed, age, additional_info, concerns_json, snapshot_url, created_at
FROM analyses
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var concerns string
	if err := row.Scan(
		&a.ID, &a.UserID, &a.ProductID, &a.Recommendation, &a.Justification, &a.IngredientsText,
		&a.Pet.Species, &a.Pet.Breed, &a.Pet.Age, &a.Pet.AdditionalInfo, &concerns, &a.SnapshotURL, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(concerns), &a.Concerns); err != nil {
		return nil, err
	}
	return &a, nil
}
