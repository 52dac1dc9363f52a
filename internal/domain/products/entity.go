package products

import "time"

// ID tipe untuk Product
type ProductID string

// Product is the canonical record a submission resolves to.
// URL is nil exactly when the product was entered manually.
type Product struct {
	ID            ProductID `json:"id"`
	Name          string    `json:"name"`
	URL           *string   `json:"url,omitempty"`
	IsManualEntry bool      `json:"is_manual_entry"`
	CreatedAt     time.Time `json:"created_at"`
}
