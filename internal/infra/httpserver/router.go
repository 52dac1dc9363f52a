package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appanalyses "github.com/virouzrx/petfood-verifai/internal/application/analyses"
	domai "github.com/virouzrx/petfood-verifai/internal/domain/ai"
	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
	"github.com/virouzrx/petfood-verifai/internal/middleware"
)

type Router struct {
	svc *appanalyses.Service
	log *zap.Logger
}

func NewRouter(
	svc *appanalyses.Service,
	log *zap.Logger,
	apiKeys map[string]string,
	limiter *middleware.RateLimiter,
	allowedOrigins []string,
	checkers map[string]middleware.HealthChecker,
) http.Handler {
	r := &Router{svc: svc, log: log}
	mux := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(apiKeys))
		if limiter != nil {
			rt.Use(middleware.RateLimitMiddleware(limiter))
		}
		rt.Post("/analyses", r.wrap(r.handleCreate))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorResponse struct {
	Error         string   `json:"error"`
	Message       string   `json:"message"`
	Fields        []string `json:"fields,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// wrap maps the failure taxonomy onto status codes: validation → 400,
// acquisition/reasoning failures → 503, everything else → 500 with a
// correlation id and no internal detail.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var verr *analyses.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, errorResponse{
				Error:   "invalid_request",
				Message: "one or more fields are invalid",
				Fields:  verr.Fields,
			})
			return
		}

		if errors.Is(err, analyses.ErrNotFound) {
			writeError(w, http.StatusNotFound, errorResponse{
				Error:   "not_found",
				Message: "analysis not found",
			})
			return
		}

		var perr *analyses.PipelineError
		if errors.As(err, &perr) {
			middleware.IncrementAnalysesFailed()
			switch {
			case errors.Is(err, ingredients.ErrFetchFailed):
				writeError(w, http.StatusServiceUnavailable, errorResponse{
					Error:         "source_unreachable",
					Message:       "the product page could not be fetched; try again or enter the ingredients manually",
					CorrelationID: perr.CorrelationID,
				})
			case errors.Is(err, analyses.ErrIngredientsNotFound):
				writeError(w, http.StatusServiceUnavailable, errorResponse{
					Error:         "ingredients_not_found",
					Message:       "the page was reached but no ingredient text was recognized; enter the ingredients manually",
					CorrelationID: perr.CorrelationID,
				})
			case errors.Is(err, domai.ErrUnavailable), errors.Is(err, domai.ErrBadReply):
				writeError(w, http.StatusServiceUnavailable, errorResponse{
					Error:         "analysis_unavailable",
					Message:       "the analysis service is temporarily unavailable; try again later",
					CorrelationID: perr.CorrelationID,
				})
			default:
				writeError(w, http.StatusInternalServerError, errorResponse{
					Error:         "internal_error",
					Message:       "an unexpected error occurred",
					CorrelationID: perr.CorrelationID,
				})
			}
			return
		}

		correlationID := uuid.New().String()
		r.log.Error("unhandled error",
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, errorResponse{
			Error:         "internal_error",
			Message:       "an unexpected error occurred",
			CorrelationID: correlationID,
		})
	}
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type createAnalysisRequest struct {
	IsManual        bool   `json:"isManual"`
	ProductName     string `json:"productName"`
	ProductURL      string `json:"productUrl"`
	IngredientsText string `json:"ingredientsText"`
	Species         string `json:"species"`
	Breed           string `json:"breed"`
	Age             *int   `json:"age"`
	AdditionalInfo  string `json:"additionalInfo"`
}

// POST /v1/analyses
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body createAnalysisRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &analyses.ValidationError{Fields: []string{"body"}}
	}

	// a missing age fails the non-negative check together with other fields
	age := -1
	if body.Age != nil {
		age = *body.Age
	}

	cmd := appanalyses.CreateAnalysisCommand{
		UserID:          middleware.GetUserFromContext(req.Context()),
		IsManual:        body.IsManual,
		ProductName:     body.ProductName,
		ProductURL:      body.ProductURL,
		IngredientsText: body.IngredientsText,
		Species:         body.Species,
		Breed:           body.Breed,
		Age:             age,
		AdditionalInfo:  body.AdditionalInfo,
	}

	result, err := r.svc.CreateAnalysis(req.Context(), cmd)
	if err != nil {
		return err
	}
	middleware.IncrementAnalysesCreated()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.History(req.Context(), userID, page, size)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*analyses.Analysis{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	id := chi.URLParam(req, "id")

	a, err := r.svc.Get(req.Context(), userID, analyses.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}
