package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/virouzrx/petfood-verifai/internal/domain/analyses"
)

type FailureRepository struct{ db *sql.DB }

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

// Record inserts a pipeline failure entry for support lookups
func (r *FailureRepository) Record(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures (user_id, stage, message, correlation_id, created_at)
VALUES ($1,$2,$3,$4,$5);`
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, f.UserID, f.Stage, f.Message, f.CorrelationID, createdAt)
	return err
}
