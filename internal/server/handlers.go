package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/internal/service/plan"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
)

type CatalogIndexer interface {
	Index(ctx context.Context, bypass bool) (*domain.CatalogIndex, domain.CatalogSource, error)
	Ready() bool
}

type ExerciseResolver interface {
	Resolve(ctx context.Context, query string) (*domain.CatalogEntry, error)
}

type ModelHealth interface {
	PrimaryName() string
	CircuitStatus() util.CircuitBreakerStatus
}

type PlanGenerator interface {
	GenerateMealPlan(ctx context.Context, req domain.MealPlanRequest, opts plan.Options) (*domain.PlanResult, error)
	GenerateWorkoutPlan(ctx context.Context, req domain.WorkoutPlanRequest, opts plan.Options) (*domain.PlanResult, error)
}

type Handler struct {
	catalog  CatalogIndexer
	resolver ExerciseResolver
	plans    PlanGenerator
	models   ModelHealth
}

func NewHandler(catalog CatalogIndexer, resolver ExerciseResolver, plans PlanGenerator, models ModelHealth) *Handler {
	return &Handler{catalog: catalog, resolver: resolver, plans: plans, models: models}
}

type catalogResponse struct {
	Names          []string             `json:"names"`
	FetchedAt      time.Time            `json:"fetchedAt"`
	Count          int                  `json:"count"`
	PagesProcessed int                  `json:"pagesProcessed"`
	Truncated      bool                 `json:"truncated"`
	Source         domain.CatalogSource `json:"source"`
}

type healthResponse struct {
	Status       string                    `json:"status"`
	CatalogReady bool                      `json:"catalogReady"`
	Model        string                    `json:"model"`
	ModelCircuit util.CircuitBreakerStatus `json:"modelCircuit"`
}

// Health always answers 200; an open circuit is reported as "degraded".
func (h *Handler) Health(c *gin.Context) {
	circuit := h.models.CircuitStatus()
	status := "ok"
	if circuit.State == util.CircuitStateOpen {
		status = "degraded"
	}
	RespondOK(c, healthResponse{
		Status:       status,
		CatalogReady: h.catalog.Ready(),
		Model:        h.models.PrimaryName(),
		ModelCircuit: circuit,
	})
}

func (h *Handler) GetCatalog(c *gin.Context) {
	debug, err := debugFlag(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	idx, source, err := h.catalog.Index(c.Request.Context(), debug)
	if err != nil {
		RespondError(c, err)
		return
	}

	names := idx.Names
	if names == nil {
		names = []string{}
	}
	RespondOK(c, catalogResponse{
		Names:          names,
		FetchedAt:      idx.FetchedAt,
		Count:          idx.Len(),
		PagesProcessed: idx.PagesProcessed,
		Truncated:      idx.Truncated,
		Source:         source,
	})
}

func (h *Handler) GetExercise(c *gin.Context) {
	entry, err := h.resolver.Resolve(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, entry)
}

func (h *Handler) GenerateMealPlan(c *gin.Context) {
	debug, err := debugFlag(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req domain.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, bodyError(err))
		return
	}

	result, err := h.plans.GenerateMealPlan(c.Request.Context(), req, plan.Options{Debug: debug})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *Handler) GenerateWorkoutPlan(c *gin.Context) {
	debug, err := debugFlag(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var req domain.WorkoutPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, bodyError(err))
		return
	}

	result, err := h.plans.GenerateWorkoutPlan(c.Request.Context(), req, plan.Options{Debug: debug})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

// debugFlag reads the optional ?debug= query parameter.
func debugFlag(c *gin.Context) (bool, error) {
	raw, ok := c.GetQuery("debug")
	if !ok || raw == "" {
		return false, nil
	}
	debug, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewInvalidRequestError("debug must be a boolean", "debug", raw)
	}
	return debug, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewInvalidRequestError("request body too large", "body", tooLarge.Limit)
	}
	return errors.NewInvalidRequestError("request body is not valid JSON: "+err.Error(), "body", nil)
}
