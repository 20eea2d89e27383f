package plan

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/internal/prompt"
	"github.com/kapu/fitplan-engine-go/internal/service/ai"
	"github.com/kapu/fitplan-engine-go/internal/service/cache"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.uber.org/zap"
)

// Stage names used in logs.
const (
	stageValidateInput  = "VALIDATE_INPUT"
	stageCacheLookup    = "CACHE_LOOKUP"
	stageBuildPrompt    = "BUILD_PROMPT"
	stageInvokeModel    = "INVOKE_MODEL"
	stageExtractJSON    = "EXTRACT_JSON"
	stageParseValidate  = "PARSE_AND_VALIDATE"
	stageReconcileNames = "RECONCILE_NAMES"
	stageStoreAndReturn = "STORE_AND_RETURN"
)

// CatalogIndexer supplies the exercise names a workout plan may use.
type CatalogIndexer interface {
	Index(ctx context.Context, bypass bool) (*domain.CatalogIndex, domain.CatalogSource, error)
}

// Options control a single generation request.
type Options struct {
	// Debug skips the cache lookup and the cache write.
	Debug bool
}

// Gateway turns plan requests into validated plans. Each request passes
// through the stages above in order; any failure is terminal and nothing is
// cached.
type Gateway struct {
	generator     ai.TextGenerator
	catalog       CatalogIndexer
	store         cache.PlanStore
	prompts       *prompt.PromptBuilder
	invokeTimeout time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func NewGateway(generator ai.TextGenerator, catalog CatalogIndexer, store cache.PlanStore, prompts *prompt.PromptBuilder, logger *zap.Logger) *Gateway {
	return &Gateway{
		generator:     generator,
		catalog:       catalog,
		store:         store,
		prompts:       prompts,
		invokeTimeout: constants.ModelDefaults.InvokeTimeout,
		now:           time.Now,
		logger:        logger,
	}
}

// generated is what a kind-specific pipeline hands back for storing.
type generated struct {
	plan     json.RawMessage
	provider string
	model    string
	dropped  []domain.DroppedExercise
}

func (g *Gateway) GenerateMealPlan(ctx context.Context, req domain.MealPlanRequest, opts Options) (*domain.PlanResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		g.logStageFailure(domain.PlanKindMeal, stageValidateInput, err)
		return nil, err
	}

	return g.run(ctx, domain.PlanKindMeal, req.Fields(), opts, func(ctx context.Context) (*generated, error) {
		p, err := g.prompts.BuildMealPlan(prompt.MealPlanVars{
			Age:    req.Age.Value,
			Weight: req.Weight.Value,
			Height: req.Height.Value,
			Goal:   req.Goal,
			Diet:   req.Diet,
		})
		if err != nil {
			g.logStageFailure(domain.PlanKindMeal, stageBuildPrompt, err)
			return nil, errors.NewEngineError("failed to build meal plan prompt", errors.CodeInternal, http.StatusInternalServerError, nil).WithCause(err)
		}

		gen, doc, err := g.invokeAndParse(ctx, domain.PlanKindMeal, p)
		if err != nil {
			return nil, err
		}

		plan, err := parseMealPlan(doc)
		if err != nil {
			g.logStageFailure(domain.PlanKindMeal, stageParseValidate, err)
			return nil, err
		}

		data, err := json.Marshal(plan)
		if err != nil {
			return nil, err
		}
		return &generated{plan: data, provider: gen.Provider, model: gen.Model}, nil
	})
}

func (g *Gateway) GenerateWorkoutPlan(ctx context.Context, req domain.WorkoutPlanRequest, opts Options) (*domain.PlanResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		g.logStageFailure(domain.PlanKindWorkout, stageValidateInput, err)
		return nil, err
	}

	return g.run(ctx, domain.PlanKindWorkout, req.Fields(), opts, func(ctx context.Context) (*generated, error) {
		idx, _, err := g.catalog.Index(ctx, false)
		if err != nil {
			g.logStageFailure(domain.PlanKindWorkout, stageBuildPrompt, err)
			return nil, err
		}

		vars := prompt.NewWorkoutPlanVars(req.Gender, req.Level, req.Goal, req.Split, req.DayCount(), idx.Names)
		p, err := g.prompts.BuildWorkoutPlan(vars)
		if err != nil {
			g.logStageFailure(domain.PlanKindWorkout, stageBuildPrompt, err)
			return nil, errors.NewEngineError("failed to build workout plan prompt", errors.CodeInternal, http.StatusInternalServerError, nil).WithCause(err)
		}

		gen, doc, err := g.invokeAndParse(ctx, domain.PlanKindWorkout, p)
		if err != nil {
			return nil, err
		}

		plan, err := parseWorkoutPlan(doc)
		if err != nil {
			g.logStageFailure(domain.PlanKindWorkout, stageParseValidate, err)
			return nil, err
		}

		dropped := reconcile(plan, idx)
		if len(dropped) > 0 {
			g.logger.Warn("Generated exercises not in catalog were removed",
				zap.String("stage", stageReconcileNames),
				zap.Int("dropped", len(dropped)),
				zap.Any("exercises", dropped),
			)
		}

		data, err := json.Marshal(plan)
		if err != nil {
			return nil, err
		}
		return &generated{plan: data, provider: gen.Provider, model: gen.Model, dropped: dropped}, nil
	})
}

// run handles the stages shared by every plan kind: fingerprinting, cache
// lookup and store.
func (g *Gateway) run(ctx context.Context, kind domain.PlanKind, fields map[string]any, opts Options, produce func(context.Context) (*generated, error)) (*domain.PlanResult, error) {
	fingerprint, err := Fingerprint(kind, fields)
	if err != nil {
		return nil, errors.NewInvalidRequestError("request cannot be fingerprinted", "", nil)
	}

	if !opts.Debug {
		if result := g.lookup(ctx, kind, fingerprint); result != nil {
			return result, nil
		}
	}

	out, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	entry := &domain.PlanCacheEntry{
		Kind:        kind,
		Fingerprint: fingerprint,
		Plan:        out.plan,
		FetchedAt:   g.now().UTC(),
		Provider:    out.provider,
		Model:       out.model,
		Dropped:     out.dropped,
	}

	if !opts.Debug {
		if err := g.store.Put(context.WithoutCancel(ctx), fingerprint, entry); err != nil {
			g.logger.Warn("Plan cache write failed",
				zap.String("stage", stageStoreAndReturn),
				zap.String("kind", kind.String()),
				zap.Error(err),
			)
		}
	}

	g.logger.Info("Plan generated",
		zap.String("kind", kind.String()),
		zap.String("provider", out.provider),
		zap.String("model", out.model),
		zap.Bool("debug", opts.Debug),
		zap.Int("dropped", len(out.dropped)),
	)

	return resultFromEntry(entry, domain.PlanSourceGenerated), nil
}

func (g *Gateway) lookup(ctx context.Context, kind domain.PlanKind, fingerprint string) *domain.PlanResult {
	entry, ok, err := g.store.Get(ctx, fingerprint)
	if err != nil {
		g.logger.Warn("Plan cache read failed, treating as miss",
			zap.String("stage", stageCacheLookup),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return nil
	}
	if !ok {
		return nil
	}

	g.logger.Debug("Plan cache hit", zap.String("kind", kind.String()))
	return resultFromEntry(entry, domain.PlanSourceCache)
}

// invokeAndParse calls the model once and decodes the first JSON object in its
// answer. The call is detached from the caller's cancellation so an
// abandoned request still completes and can be cached.
func (g *Gateway) invokeAndParse(ctx context.Context, kind domain.PlanKind, p prompt.Prompt) (*ai.Generation, map[string]any, error) {
	invokeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.invokeTimeout)
	defer cancel()

	gen, err := g.generator.GenerateText(invokeCtx, p.User, presetFor(kind), &ai.GenerateOptions{
		JSONMode:          true,
		SystemInstruction: p.System,
	})
	if err != nil {
		g.logStageFailure(kind, stageInvokeModel, err)
		return nil, nil, err
	}

	preview := util.Truncate(gen.Text, constants.ModelDefaults.PreviewLength)

	span, ok := ai.ExtractJSONObject(gen.Text)
	if !ok {
		err := errors.NewMalformedModelOutputError("model output contains no JSON object", preview, nil)
		g.logStageFailure(kind, stageExtractJSON, err)
		return nil, nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(span), &doc); err != nil {
		malformed := errors.NewMalformedModelOutputError("model output is not valid JSON", preview, err)
		g.logStageFailure(kind, stageExtractJSON, malformed)
		return nil, nil, malformed
	}

	return gen, doc, nil
}

// presetFor keeps workout sampling tight so names stay on the allowed list.
func presetFor(kind domain.PlanKind) ai.ModelPreset {
	if kind == domain.PlanKindWorkout {
		return ai.PresetPrecise
	}
	return ai.PresetBalanced
}

func (g *Gateway) logStageFailure(kind domain.PlanKind, stage string, err error) {
	level := g.logger.Error
	if errors.StatusOf(err) < 500 {
		level = g.logger.Warn
	}
	level("Plan generation failed",
		zap.String("kind", kind.String()),
		zap.String("stage", stage),
		zap.String("code", errors.CodeOf(err)),
		zap.Error(err),
	)
}

func resultFromEntry(entry *domain.PlanCacheEntry, source domain.PlanSource) *domain.PlanResult {
	return &domain.PlanResult{
		Kind:        entry.Kind,
		Plan:        entry.Plan,
		Source:      source,
		FetchedAt:   entry.FetchedAt,
		Fingerprint: entry.Fingerprint,
		Provider:    entry.Provider,
		Model:       entry.Model,
		Dropped:     entry.Dropped,
	}
}
