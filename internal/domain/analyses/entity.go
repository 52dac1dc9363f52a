package analyses

import (
	"time"

	"github.com/virouzrx/petfood-verifai/internal/domain/products"
)

// ID tipe untuk Analysis
type AnalysisID string

// Recommendation enum
type Recommendation string

const (
	Recommended    Recommendation = "Recommended"
	NotRecommended Recommendation = "NotRecommended"
)

// Species enum
type Species string

const (
	SpeciesCat Species = "cat"
	SpeciesDog Species = "dog"
)

// ConcernType enum. Exactly two severities exist; anything else coming back
// from the reasoning service is a contract violation, not a valid state.
type ConcernType string

const (
	ConcernQuestionable ConcernType = "questionable"
	ConcernUnacceptable ConcernType = "unacceptable"
)

// IngredientConcern value object
type IngredientConcern struct {
	Type       ConcernType `json:"type"`
	Ingredient string      `json:"ingredient"`
	Reason     string      `json:"reason"`
}

// PetProfile snapshot stored with each analysis. Breed and AdditionalInfo are
// opaque display values.
type PetProfile struct {
	Species        Species `json:"species"`
	Breed          string  `json:"breed"`
	Age            int     `json:"age"`
	AdditionalInfo string  `json:"additional_info,omitempty"`
}

// Aggregate Root: Analysis
// IngredientsText holds the text that was actually sent to the reasoning
// service, persisted for audit and reanalysis.
type Analysis struct {
	ID              AnalysisID         `json:"id"`
	UserID          string             `json:"user_id"`
	ProductID       products.ProductID `json:"product_id"`
	Recommendation  Recommendation     `json:"recommendation"`
	Justification   string             `json:"justification"`
	IngredientsText string             `json:"ingredients_text"`
	Pet             PetProfile         `json:"pet"`
	Concerns        []IngredientConcern `json:"concerns"`
	SnapshotURL     string             `json:"snapshot_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Failure represents a persisted pipeline failure entry, looked up by the
// correlation id returned to the caller.
type Failure struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	Stage         string    `json:"stage"` // acquire | resolve | analyze | persist
	Message       string    `json:"message"`
	CorrelationID string    `json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
}
