package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appanalyses "github.com/virouzrx/petfood-verifai/internal/application/analyses"
	domai "github.com/virouzrx/petfood-verifai/internal/domain/ai"
	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
	"github.com/virouzrx/petfood-verifai/internal/domain/products"
	"github.com/virouzrx/petfood-verifai/internal/infra/httpserver"
)

//
// ==== PORT STUBS ====
//

type stubProducts struct {
	find func(ctx context.Context, name, url string) (*products.Product, error)
}

func (s *stubProducts) FindByNameAndURL(ctx context.Context, name, url string) (*products.Product, error) {
	if s.find == nil {
		return nil, nil
	}
	return s.find(ctx, name, url)
}

type stubAnalyses struct {
	created []*analyses.Analysis
	get     func(ctx context.Context, userID string, id analyses.AnalysisID) (*analyses.Analysis, error)
	list    func(ctx context.Context, userID string, page, pageSize int) ([]*analyses.Analysis, error)
}

func (s *stubAnalyses) Create(ctx context.Context, a *analyses.Analysis, newProduct *products.Product) error {
	s.created = append(s.created, a)
	return nil
}

func (s *stubAnalyses) Get(ctx context.Context, userID string, id analyses.AnalysisID) (*analyses.Analysis, error) {
	if s.get == nil {
		return nil, nil
	}
	return s.get(ctx, userID, id)
}

func (s *stubAnalyses) Paginate(ctx context.Context, userID string, page, pageSize int) ([]*analyses.Analysis, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx, userID, page, pageSize)
}

type stubScraper struct {
	scrape func(ctx context.Context, url string) (*ingredients.Acquisition, error)
}

func (s *stubScraper) Scrape(ctx context.Context, url string) (*ingredients.Acquisition, error) {
	return s.scrape(ctx, url)
}

type stubAnalyzer struct {
	analyze func(ctx context.Context, ingredientsText string, pet analyses.PetProfile) (*domai.Result, error)
}

func (s *stubAnalyzer) Analyze(ctx context.Context, ingredientsText string, pet analyses.PetProfile) (*domai.Result, error) {
	if s.analyze == nil {
		return &domai.Result{IsRecommended: true, Justification: "Looks fine."}, nil
	}
	return s.analyze(ctx, ingredientsText, pet)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

//
// ==== SETUP ====
//

const testAPIKey = "test-key"

type fixture struct {
	handler  http.Handler
	analyses *stubAnalyses
	scraper  *stubScraper
	analyzer *stubAnalyzer
	products *stubProducts
}

func newFixture() *fixture {
	f := &fixture{
		analyses: &stubAnalyses{},
		scraper:  &stubScraper{scrape: func(ctx context.Context, url string) (*ingredients.Acquisition, error) {
			return &ingredients.Acquisition{ProductName: "Premium Chicken Dinner", IngredientsText: "Chicken, rice"}, nil
		}},
		analyzer: &stubAnalyzer{},
		products: &stubProducts{},
	}
	svc := &appanalyses.Service{
		Products: f.products,
		Analyses: f.analyses,
		Scraper:  f.scraper,
		Analyzer: f.analyzer,
		Clock:    fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Log:      zap.NewNop(),
	}
	f.handler = httpserver.NewRouter(svc, zap.NewNop(), map[string]string{"user-1": testAPIKey}, nil, nil, nil)
	return f
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const manualBody = `{
	"isManual": true,
	"productName": "Homemade Chicken Mix",
	"ingredientsText": "Chicken, rice, carrots",
	"species": "dog",
	"breed": "Beagle",
	"age": 4
}`

const urlBody = `{
	"productUrl": "https://shop.example.com/products/premium-chicken",
	"species": "cat",
	"breed": "Siamese",
	"age": 2
}`

//
// ==== TESTS ====
//

func TestCreateManualAnalysis(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", manualBody, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got["analysisId"])
	assert.NotEmpty(t, got["productId"])
	assert.Equal(t, "Recommended", got["recommendation"])
	require.Len(t, f.analyses.created, 1)
	assert.Equal(t, "user-1", f.analyses.created[0].UserID)
}

func TestCreateFromURLSourceUnreachable(t *testing.T) {
	f := newFixture()
	f.scraper.scrape = func(ctx context.Context, url string) (*ingredients.Acquisition, error) {
		return nil, ingredients.ErrFetchFailed
	}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", urlBody, true)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "source_unreachable", got["error"])
	assert.NotEmpty(t, got["correlation_id"])
	assert.Empty(t, f.analyses.created, "a failed fetch must not persist anything")
}

func TestCreateFromURLNoIngredientsRecognized(t *testing.T) {
	f := newFixture()
	f.scraper.scrape = func(ctx context.Context, url string) (*ingredients.Acquisition, error) {
		return &ingredients.Acquisition{ProductName: ingredients.UnknownProductName}, nil
	}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", urlBody, true)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ingredients_not_found", got["error"])
	assert.Empty(t, f.analyses.created)
}

func TestCreateAnalysisServiceBadReply(t *testing.T) {
	f := newFixture()
	f.analyzer.analyze = func(ctx context.Context, ingredientsText string, pet analyses.PetProfile) (*domai.Result, error) {
		return nil, domai.ErrBadReply
	}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", manualBody, true)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "analysis_unavailable", got["error"])
	assert.Empty(t, f.analyses.created)
}

func TestCreateValidationFailure(t *testing.T) {
	f := newFixture()
	body := `{"isManual": true, "species": "parrot", "breed": "", "age": -2}`

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", body, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "invalid_request", got.Error)
	assert.Contains(t, got.Fields, "species")
	assert.Contains(t, got.Fields, "breed")
	assert.Contains(t, got.Fields, "age")
	assert.Contains(t, got.Fields, "productName")
}

func TestCreateMalformedBody(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", `{"species": `, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "body")
}

func TestRequestsWithoutAPIKeyAreRejected(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/analyses", manualBody, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.analyses.created)
}

func TestRequestsWithWrongAPIKeyAreRejected(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(manualBody))
	req.Header.Set("Authorization", "Bearer not-the-key")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUnknownAnalysis(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/analyses/nope", "", true)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestGetOwnedAnalysis(t *testing.T) {
	f := newFixture()
	f.analyses.get = func(ctx context.Context, userID string, id analyses.AnalysisID) (*analyses.Analysis, error) {
		if userID == "user-1" && id == "a-1" {
			return &analyses.Analysis{ID: "a-1", UserID: "user-1", Recommendation: analyses.Recommended}, nil
		}
		return nil, nil
	}

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/analyses/a-1", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a-1"`)
}

func TestListIsEmptyArrayNotNull(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/analyses", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHealthNeedsNoAuth(t *testing.T) {
	f := newFixture()

	rec := doJSON(t, f.handler, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
}
