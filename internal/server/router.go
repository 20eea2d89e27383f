package server

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	ServiceName  string
	AllowOrigins []string
	MaxBodyBytes int64
	Handler      *Handler
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		cfg.Logger.Error("Handler panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		RespondError(c, errors.NewEngineError(fmt.Sprintf("panic: %v", recovered), errors.CodeInternal, http.StatusInternalServerError, nil))
	}))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(RequestID())
	router.Use(RequestLogger(cfg.Logger))
	router.Use(cors.New(corsConfig(cfg.AllowOrigins)))
	if cfg.MaxBodyBytes > 0 {
		router.Use(BodyLimit(cfg.MaxBodyBytes))
	}

	router.GET("/healthz", cfg.Handler.Health)

	router.GET("/catalog", cfg.Handler.GetCatalog)
	router.GET("/catalog/:name", cfg.Handler.GetExercise)

	plan := router.Group("/plan")
	{
		plan.POST("/meal", cfg.Handler.GenerateMealPlan)
		plan.POST("/workout", cfg.Handler.GenerateWorkoutPlan)
	}

	router.NoRoute(func(c *gin.Context) {
		RespondError(c, errors.NewNotFoundError("route", c.Request.URL.Path))
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
