package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/virouzrx/petfood-verifai/internal/application"
	domai "github.com/virouzrx/petfood-verifai/internal/domain/ai"
	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
	"github.com/virouzrx/petfood-verifai/internal/domain/products"
)

// ScrapeCache abstraction over the redis cache supaya gampang ditest
type ScrapeCache interface {
	Get(ctx context.Context, url string) (*ingredients.Acquisition, bool)
	Set(ctx context.Context, url string, acq *ingredients.Acquisition) error
}

// Service implements use-cases untuk Analysis
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Products products.Repository
	Analyses analyses.Repository
	Scraper  ingredients.Scraper
	Analyzer domai.Analyzer
	Clock    application.Clock
	Log      *zap.Logger

	// optional collaborators
	Failures  analyses.FailureRecorder
	Cache     ScrapeCache
	Snapshots analyses.SnapshotStore
}

//
// ==== USE CASES ====
//

// Command untuk create analysis
type CreateAnalysisCommand struct {
	UserID          string `validate:"required"`
	IsManual        bool
	ProductName     string
	ProductURL      string
	IngredientsText string
	Species         string `validate:"required"`
	Breed           string `validate:"required"`
	Age             int    `validate:"min=0"`
	AdditionalInfo  string
}

type CreateAnalysisResult struct {
	AnalysisID      string                        `json:"analysisId"`
	ProductID       string                        `json:"productId"`
	Recommendation  analyses.Recommendation       `json:"recommendation"`
	Justification   string                        `json:"justification"`
	Concerns        []analyses.IngredientConcern  `json:"concerns"`
	IngredientsText string                        `json:"ingredientsText"`
	SnapshotURL     string                        `json:"snapshotUrl,omitempty"`
	CreatedAt       time.Time                     `json:"createdAt"`
}

// CreateAnalysis runs the whole pipeline synchronously inside the request:
// validate → acquire → resolve → analyze → persist. Nothing is written until
// the reasoning service has replied with a valid result.
func (s *Service) CreateAnalysis(ctx context.Context, cmd CreateAnalysisCommand) (*CreateAnalysisResult, error) {
	pet, verr := validateCommand(&cmd)
	if verr != nil {
		return nil, verr
	}

	acq, fromCache, err := s.acquire(ctx, cmd)
	if err != nil {
		return nil, s.fail(ctx, cmd.UserID, "acquire", err)
	}

	newProduct, productID, err := s.resolveProduct(ctx, cmd, acq)
	if err != nil {
		return nil, s.fail(ctx, cmd.UserID, "resolve", err)
	}

	result, err := s.Analyzer.Analyze(ctx, acq.IngredientsText, pet)
	if err != nil {
		return nil, s.fail(ctx, cmd.UserID, "analyze", err)
	}

	snapshotURL := s.archiveSnapshot(ctx, acq, fromCache)

	recommendation := analyses.NotRecommended
	if result.IsRecommended {
		recommendation = analyses.Recommended
	}
	a := &analyses.Analysis{
		ID:              analyses.AnalysisID(uuid.New().String()),
		UserID:          cmd.UserID,
		ProductID:       productID,
		Recommendation:  recommendation,
		Justification:   result.Justification,
		IngredientsText: acq.IngredientsText,
		Pet:             pet,
		Concerns:        result.Concerns,
		SnapshotURL:     snapshotURL,
		CreatedAt:       s.Clock.Now(),
	}
	if err := s.Analyses.Create(ctx, a, newProduct); err != nil {
		return nil, s.fail(ctx, cmd.UserID, "persist", err)
	}

	return &CreateAnalysisResult{
		AnalysisID:      string(a.ID),
		ProductID:       string(a.ProductID),
		Recommendation:  a.Recommendation,
		Justification:   a.Justification,
		Concerns:        a.Concerns,
		IngredientsText: a.IngredientsText,
		SnapshotURL:     a.SnapshotURL,
		CreatedAt:       a.CreatedAt,
	}, nil
}

// Get ambil 1 analysis by id, scoped ke user
func (s *Service) Get(ctx context.Context, userID string, id analyses.AnalysisID) (*analyses.Analysis, error) {
	a, err := s.Analyses.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, analyses.ErrNotFound
	}
	return a, nil
}

// History ambil halaman analyses milik user, terbaru dulu
func (s *Service) History(ctx context.Context, userID string, page, pageSize int) ([]*analyses.Analysis, error) {
	return s.Analyses.Paginate(ctx, userID, page, pageSize)
}

//
// ==== PIPELINE STAGES ====
//

// acquire returns the ingredient source output for the chosen mode. The bool
// reports a cache hit, in which case there is no raw page to archive.
func (s *Service) acquire(ctx context.Context, cmd CreateAnalysisCommand) (*ingredients.Acquisition, bool, error) {
	if cmd.IsManual {
		// passthrough, no I/O
		return &ingredients.Acquisition{
			ProductName:     strings.TrimSpace(cmd.ProductName),
			IngredientsText: strings.TrimSpace(cmd.IngredientsText),
		}, false, nil
	}

	if s.Cache != nil {
		if acq, ok := s.Cache.Get(ctx, cmd.ProductURL); ok {
			return acq, true, nil
		}
	}

	acq, err := s.Scraper.Scrape(ctx, cmd.ProductURL)
	if err != nil {
		return nil, false, err
	}

	// caller-supplied values only fill gaps the scraper left
	if acq.ProductName == ingredients.UnknownProductName && strings.TrimSpace(cmd.ProductName) != "" {
		acq.ProductName = strings.TrimSpace(cmd.ProductName)
	}
	if acq.IngredientsText == "" {
		acq.IngredientsText = strings.TrimSpace(cmd.IngredientsText)
	}
	if acq.IngredientsText == "" {
		return nil, false, analyses.ErrIngredientsNotFound
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, cmd.ProductURL, acq); err != nil && s.Log != nil {
			s.Log.Warn("scrape cache set failed", zap.String("url", cmd.ProductURL), zap.Error(err))
		}
	}
	return acq, false, nil
}

// resolveProduct returns the product to create (nil when reusing) and the id
// the analysis will reference. Manual entries are never deduplicated; url
// submissions reuse an existing non-manual (name, url) row when one exists.
func (s *Service) resolveProduct(ctx context.Context, cmd CreateAnalysisCommand, acq *ingredients.Acquisition) (*products.Product, products.ProductID, error) {
	if cmd.IsManual {
		p := &products.Product{
			ID:            products.ProductID(uuid.New().String()),
			Name:          acq.ProductName,
			IsManualEntry: true,
			CreatedAt:     s.Clock.Now(),
		}
		return p, p.ID, nil
	}

	existing, err := s.Products.FindByNameAndURL(ctx, acq.ProductName, cmd.ProductURL)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, existing.ID, nil
	}

	productURL := cmd.ProductURL
	p := &products.Product{
		ID:        products.ProductID(uuid.New().String()),
		Name:      acq.ProductName,
		URL:       &productURL,
		CreatedAt: s.Clock.Now(),
	}
	return p, p.ID, nil
}

// archiveSnapshot uploads the raw fetched page, best effort. Upload failures
// never fail the pipeline.
func (s *Service) archiveSnapshot(ctx context.Context, acq *ingredients.Acquisition, fromCache bool) string {
	if s.Snapshots == nil || fromCache || len(acq.RawHTML) == 0 {
		return ""
	}
	key := fmt.Sprintf("pages/%s/%s.html", s.Clock.Now().UTC().Format("2006/01/02"), uuid.New().String())
	url, err := s.Snapshots.Put(ctx, key, acq.RawHTML)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("page snapshot upload failed", zap.Error(err))
		}
		return ""
	}
	return url
}

// fail logs the stage failure under a fresh correlation id, records it for
// support lookups, and wraps the cause so the router can map it to a status.
func (s *Service) fail(ctx context.Context, userID, stage string, err error) error {
	correlationID := uuid.New().String()
	if s.Log != nil {
		s.Log.Warn("analysis pipeline failure",
			zap.String("stage", stage),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
	}
	if s.Failures != nil {
		record := &analyses.Failure{
			UserID:        userID,
			Stage:         stage,
			Message:       err.Error(),
			CorrelationID: correlationID,
			CreatedAt:     s.Clock.Now(),
		}
		if rerr := s.Failures.Record(ctx, record); rerr != nil && s.Log != nil {
			s.Log.Warn("failure audit write failed", zap.Error(rerr))
		}
	}
	return &analyses.PipelineError{Stage: stage, CorrelationID: correlationID, Err: err}
}
