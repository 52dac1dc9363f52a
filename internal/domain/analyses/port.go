package analyses

import (
	"context"

	"github.com/virouzrx/petfood-verifai/internal/domain/products"
)

// Repository port (interface untuk persistence)
type Repository interface {
	// Create writes the analysis and, when newProduct is non-nil, the product
	// in one transaction. If a concurrent request already created the same
	// non-manual (name, url) product, the existing row is reused and
	// a.ProductID is updated to point at it.
	Create(ctx context.Context, a *Analysis, newProduct *products.Product) error
	Get(ctx context.Context, userID string, id AnalysisID) (*Analysis, error)
	Paginate(ctx context.Context, userID string, page, pageSize int) ([]*Analysis, error)
}

// FailureRecorder port untuk audit trail
type FailureRecorder interface {
	Record(ctx context.Context, f *Failure) error
}

// SnapshotStore port (interface untuk penyimpanan raw page snapshots)
type SnapshotStore interface {
	Put(ctx context.Context, key string, html []byte) (string, error)
}
