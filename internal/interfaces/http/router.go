package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/interfaces/http/handlers"
	"github.com/curately/ResearchTools-Intelligence/internal/interfaces/http/middleware"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
)

// NewRouter assembles the gin engine with all routes and middleware.
// metricsHandler may be nil when the deployment does not expose metrics.
func NewRouter(
	mode string,
	service toolmining.MiningService,
	registries toolmining.RegistrySource,
	checkers []handlers.HealthChecker,
	metricsHandler http.Handler,
	logger logging.Logger,
) *gin.Engine {
	gin.SetMode(ginMode(mode))

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogging(logger))

	health := handlers.NewHealthHandler(checkers...)
	engine.GET("/healthz", health.Liveness)
	engine.GET("/readyz", health.Readiness)

	if metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(metricsHandler))
	}

	mining := handlers.NewMiningHandler(service, logger)
	reg := handlers.NewRegistryHandler(registries)
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/mine", mining.MinePublication)
		v1.POST("/mine/batch", mining.BatchMine)
		v1.GET("/jobs", mining.ListJobs)
		v1.GET("/jobs/:id", mining.GetJob)
		v1.GET("/registry", reg.Summary)
		v1.GET("/registry/aliases/:name", reg.Aliases)
	}

	return engine
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
