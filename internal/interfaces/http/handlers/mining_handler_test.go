package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

type fakeMiningService struct {
	mineFn     func(ctx context.Context, req *toolmining.MiningRequest) (*toolmining.PublicationResult, error)
	batchFn    func(ctx context.Context, req *toolmining.BatchMiningRequest) (*toolmining.MiningJob, error)
	getJobFn   func(ctx context.Context, jobID string) (*toolmining.MiningJob, error)
	listJobsFn func(ctx context.Context) ([]*toolmining.MiningJob, error)
}

func (f *fakeMiningService) MinePublication(ctx context.Context, req *toolmining.MiningRequest) (*toolmining.PublicationResult, error) {
	return f.mineFn(ctx, req)
}

func (f *fakeMiningService) BatchMine(ctx context.Context, req *toolmining.BatchMiningRequest) (*toolmining.MiningJob, error) {
	return f.batchFn(ctx, req)
}

func (f *fakeMiningService) GetMiningJob(ctx context.Context, jobID string) (*toolmining.MiningJob, error) {
	return f.getJobFn(ctx, jobID)
}

func (f *fakeMiningService) ListMiningJobs(ctx context.Context) ([]*toolmining.MiningJob, error) {
	return f.listJobsFn(ctx)
}

func newTestRouter(t *testing.T, svc toolmining.MiningService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewMiningHandler(svc, logging.NewNopLogger())
	engine := gin.New()
	engine.POST("/api/v1/mine", h.MinePublication)
	engine.POST("/api/v1/mine/batch", h.BatchMine)
	engine.GET("/api/v1/jobs", h.ListJobs)
	engine.GET("/api/v1/jobs/:id", h.GetJob)
	return engine
}

func TestMiningHandler_MinePublication(t *testing.T) {
	svc := &fakeMiningService{
		mineFn: func(_ context.Context, req *toolmining.MiningRequest) (*toolmining.PublicationResult, error) {
			assert.Equal(t, "PMID:1", string(req.PublicationID))
			return &toolmining.PublicationResult{PublicationID: req.PublicationID, TotalMentions: 3}, nil
		},
	}

	body := `{"publication_id":"PMID:1","sections":{"methods":"text"}}`
	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/mine", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var result toolmining.PublicationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.TotalMentions)
}

func TestMiningHandler_MinePublicationBadJSON(t *testing.T) {
	svc := &fakeMiningService{
		mineFn: func(context.Context, *toolmining.MiningRequest) (*toolmining.PublicationResult, error) {
			t.Fatal("service must not be called on malformed input")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/mine", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMiningHandler_MinePublicationServiceError(t *testing.T) {
	svc := &fakeMiningService{
		mineFn: func(context.Context, *toolmining.MiningRequest) (*toolmining.PublicationResult, error) {
			return nil, errors.Validation("mining_request", "publication_id is required")
		},
	}

	body := `{"sections":{"methods":"text"}}`
	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/mine", strings.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeValidation.String(), resp.Code)
}

func TestMiningHandler_BatchMineAccepted(t *testing.T) {
	svc := &fakeMiningService{
		batchFn: func(_ context.Context, req *toolmining.BatchMiningRequest) (*toolmining.MiningJob, error) {
			require.Len(t, req.Publications, 1)
			return &toolmining.MiningJob{JobID: "job-1", Status: toolmining.JobStatusPending}, nil
		},
	}

	body := `{"publications":[{"publication_id":"PMID:1","sections":{"abstract":"text"}}]}`
	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/mine/batch", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var job toolmining.MiningJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, toolmining.JobStatusPending, job.Status)
}

func TestMiningHandler_GetJobNotFound(t *testing.T) {
	svc := &fakeMiningService{
		getJobFn: func(_ context.Context, jobID string) (*toolmining.MiningJob, error) {
			assert.Equal(t, "missing", jobID)
			return nil, errors.New(errors.ErrCodeMiningJobNotFound, "mining job missing not found")
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiningHandler_ListJobs(t *testing.T) {
	svc := &fakeMiningService{
		listJobsFn: func(context.Context) ([]*toolmining.MiningJob, error) {
			return []*toolmining.MiningJob{
				{JobID: "job-2", Status: toolmining.JobStatusCompleted},
				{JobID: "job-1", Status: toolmining.JobStatusFailed},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Jobs  []*toolmining.MiningJob `json:"jobs"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "job-2", resp.Jobs[0].JobID)
}
