package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const tracerName = "github.com/kapu/fitplan-engine-go/internal/service/ai"

var (
	statusCodePattern = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodePattern = regexp.MustCompile(`"code":\s*(\d{3})`)
	openaiCodePattern = regexp.MustCompile(`^(\d{3})\s`)
)

// ModelManager routes generation to the primary provider, optionally falls
// back to a second one, and trips a circuit breaker on repeated service
// failures.
type ModelManager struct {
	primary        Provider
	fallback       Provider
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

type ModelManagerConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	EnableFallback bool
}

// NewModelManager uses Gemini as primary when a key is set and OpenAI
// otherwise. OpenAI becomes the fallback only when both are configured and
// fallback is enabled.
func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	geminiModel := cfg.GeminiModel
	if geminiModel == "" {
		geminiModel = constants.ModelDefaults.GeminiModel
	}
	openaiModel := cfg.OpenAIModel
	if openaiModel == "" {
		openaiModel = constants.ModelDefaults.OpenAIModel
	}

	var gemini *GeminiProvider
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		gemini = NewGeminiProvider(client, geminiModel, logger)
	}

	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, openaiModel, logger)

	var primary, fallback Provider
	switch {
	case gemini != nil:
		primary = gemini
		if cfg.EnableFallback && openaiProvider != nil {
			fallback = openaiProvider
		}
	case openaiProvider != nil:
		primary = openaiProvider
	default:
		return nil, fmt.Errorf("no model provider configured")
	}

	logger.Info("Model providers configured",
		zap.String("primary", primary.Name()),
		zap.Bool("fallback", fallback != nil),
	)

	return NewModelManagerWithProviders(primary, fallback, logger), nil
}

// NewModelManagerWithProviders wires explicit providers; fallback may be nil.
func NewModelManagerWithProviders(primary, fallback Provider, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(
		"model",
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)
	return mm
}

// GenerateText performs exactly one call to the primary provider, plus one to
// the fallback when enabled. Every failure surfaces as a
// GenerationUnavailableError.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (*Generation, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ai.GenerateText")
	defer span.End()

	gen, err := mm.generate(ctx, prompt, preset, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("ai.provider", gen.Provider),
		attribute.String("ai.model", gen.Model),
		attribute.Bool("ai.fallback", gen.UsedFallback),
		attribute.Int("ai.response_length", len(gen.Text)),
	)
	return gen, nil
}

func (mm *ModelManager) generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (*Generation, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.Status()
		mm.logger.Error("Model service unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.Timep("next_retry", status.NextRetryTime),
		)
		return nil, errors.NewGenerationUnavailableError("model service temporarily unavailable", mm.primary.Name(), nil)
	}

	primaryResult, primaryErr := mm.primary.Generate(ctx, prompt, preset, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return &Generation{
			Text:     primaryResult.Text,
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	if mm.fallback != nil {
		mm.logger.Warn("Primary model failed, trying fallback",
			zap.String("primary", mm.primary.Name()),
			zap.String("fallback", mm.fallback.Name()),
			zap.Error(primaryErr),
		)

		fallbackResult, fallbackErr := mm.fallback.Generate(ctx, prompt, preset, opts)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return &Generation{
				Text:         fallbackResult.Text,
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)
		return nil, errors.NewGenerationUnavailableError("model generation failed", mm.fallback.Name(),
			stderrors.Join(primaryErr, fallbackErr))
	}

	mm.recordFailure(primaryErr)
	return nil, errors.NewGenerationUnavailableError("model generation failed", mm.primary.Name(), primaryErr)
}

// Ping reports whether any configured provider answers.
func (mm *ModelManager) Ping(ctx context.Context) bool {
	if mm.primary.Ping(ctx) {
		return true
	}
	return mm.fallback != nil && mm.fallback.Ping(ctx)
}

func (mm *ModelManager) PrimaryName() string {
	return mm.primary.Name()
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	healthy := mm.Ping(ctx)
	mm.logger.Info("Model health check", zap.Bool("healthy", healthy))
	return healthy
}

// isServiceFailure separates provider outages from request errors; only the
// former count against the circuit.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}
	if code, ok := providerStatus(msg); ok {
		return code >= 500 && code < 600
	}
	return statusCodePattern.MatchString(msg)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}
	code, ok := providerStatus(msg)
	return ok && code == 429
}

func providerStatus(msg string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{geminiCodePattern, openaiCodePattern} {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}
