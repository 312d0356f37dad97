package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// MiningHandler exposes the mining pipeline over REST.
type MiningHandler struct {
	service toolmining.MiningService
	logger  logging.Logger
}

// NewMiningHandler builds a MiningHandler.
func NewMiningHandler(service toolmining.MiningService, logger logging.Logger) *MiningHandler {
	if service == nil {
		panic("handlers: mining service must not be nil")
	}
	if logger == nil {
		panic("handlers: logger must not be nil")
	}
	return &MiningHandler{service: service, logger: logger}
}

// MinePublication handles POST /api/v1/mine.
func (h *MiningHandler) MinePublication(c *gin.Context) {
	var req toolmining.MiningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("mining_request", "invalid request body").WithCause(err))
		return
	}

	result, err := h.service.MinePublication(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BatchMine handles POST /api/v1/mine/batch.  The response is the accepted
// job; callers poll GET /api/v1/jobs/:id for progress.
func (h *MiningHandler) BatchMine(c *gin.Context) {
	var req toolmining.BatchMiningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("batch_mining_request", "invalid request body").WithCause(err))
		return
	}

	job, err := h.service.BatchMine(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/jobs/:id.
func (h *MiningHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetMiningJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs.
func (h *MiningHandler) ListJobs(c *gin.Context) {
	jobs, err := h.service.ListMiningJobs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}
