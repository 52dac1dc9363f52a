package ai

import (
	"context"

	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
)

// Result is the validated shape of a reasoning-service reply.
type Result struct {
	IsRecommended bool
	Justification string
	Concerns      []analyses.IngredientConcern
}

type Analyzer interface {
	Analyze(ctx context.Context, ingredientsText string, pet analyses.PetProfile) (*Result, error)
}
