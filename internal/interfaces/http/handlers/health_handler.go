package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the readiness of one backing dependency.
type HealthChecker interface {
	Name() string
	Healthy(c *gin.Context) error
}

// HealthCheckFunc adapts a function into a named HealthChecker.
type HealthCheckFunc struct {
	CheckName string
	Check     func(c *gin.Context) error
}

func (f HealthCheckFunc) Name() string               { return f.CheckName }
func (f HealthCheckFunc) Healthy(c *gin.Context) error { return f.Check(c) }

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
}

// NewHealthHandler builds a HealthHandler over the given dependency checks.
func NewHealthHandler(checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Liveness reports that the process is up.  It never consults dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness runs every dependency check and reports per-check status.  Any
// failing check yields 503 so the load balancer stops routing traffic.
func (h *HealthHandler) Readiness(c *gin.Context) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for _, checker := range h.checkers {
		if err := checker.Healthy(c); err != nil {
			checks[checker.Name()] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[checker.Name()] = "ok"
	}

	body := gin.H{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
