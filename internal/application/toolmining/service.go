package toolmining

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/catalog"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// JobStatus represents the lifecycle state of an asynchronous batch mining job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ---------------------------------------------------------------------------
// Request / Response DTOs
// ---------------------------------------------------------------------------

// MiningRequest asks for one publication's sections to be mined.
type MiningRequest struct {
	PublicationID commontypes.PublicationID `json:"publication_id" validate:"required"`

	// Title is the publication title, consumed by the novelty heuristics.
	Title string `json:"title,omitempty"`

	// Sections maps section name to section text.  Missing or short sections
	// are skipped, never an error.
	Sections map[mention.Section]string `json:"sections" validate:"required"`

	// Categories restricts the search; empty means all categories.
	Categories []mention.ToolCategory `json:"categories,omitempty"`

	// FieldValues supplies per-tool attribute values for completeness
	// scoring, keyed by normalized tool name.
	FieldValues map[string]map[string]string `json:"field_values,omitempty"`

	// CompletenessThreshold overrides the service default when in (0,1].
	CompletenessThreshold float64 `json:"completeness_threshold,omitempty"`
}

// PublicationResult is the partitioned output for one publication: excluded
// mentions for audit, existing-tool mentions as candidate catalog links, and
// scored novel-tool records.
type PublicationResult struct {
	PublicationID commontypes.PublicationID `json:"publication_id"`

	Excluded []mention.ClassifiedTool `json:"excluded,omitempty"`
	Existing []mention.ClassifiedTool `json:"existing,omitempty"`
	Novel    []mention.ScoredRecord   `json:"novel,omitempty"`

	TotalMentions   int       `json:"total_mentions"`
	SectionsScanned int       `json:"sections_scanned"`
	DurationMs      int64     `json:"duration_ms"`
	MinedAt         time.Time `json:"mined_at"`
}

// BatchMiningRequest asks for multiple publications to be mined asynchronously.
type BatchMiningRequest struct {
	Publications []MiningRequest `json:"publications" validate:"required,min=1"`
}

// MiningJob tracks the state of an asynchronous batch mining run.
type MiningJob struct {
	JobID             string               `json:"job_id"`
	Status            JobStatus            `json:"status"`
	TotalPublications int                  `json:"total_publications"`
	ProcessedCount    int                  `json:"processed_count"`
	FailedCount       int                  `json:"failed_count"`
	Results           []*PublicationResult `json:"results,omitempty"`
	ErrorMessage      string               `json:"error_message,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
}

// ---------------------------------------------------------------------------
// Collaborator contracts
// ---------------------------------------------------------------------------

// RegistrySource supplies the current alias/pattern registry.  The hot-reload
// provider satisfies it; StaticRegistry wraps a fixed registry for tests and
// one-shot CLI runs.
type RegistrySource interface {
	Current() *registry.Registry
}

type staticSource struct{ reg *registry.Registry }

func (s staticSource) Current() *registry.Registry { return s.reg }

// StaticRegistry returns a RegistrySource that always serves reg.
func StaticRegistry(reg *registry.Registry) RegistrySource { return staticSource{reg: reg} }

// ResultCache caches publication results keyed by publication ID.  Only
// results of default-shaped requests are stored (see cacheableRequest).  The
// redis implementation lives in the infrastructure layer; nil disables caching.
type ResultCache interface {
	Get(ctx context.Context, id commontypes.PublicationID) (*PublicationResult, bool, error)
	Set(ctx context.Context, id commontypes.PublicationID, result *PublicationResult) error
}

// Metrics receives pipeline counters.  The prometheus implementation lives in
// the infrastructure layer.
type Metrics interface {
	ObserveMining(d time.Duration)
	MentionsExtracted(section mention.Section, count int)
	DispositionCounted(category mention.ToolCategory, disposition mention.Disposition)
	CacheLookup(hit bool)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveMining(time.Duration)                                {}
func (NopMetrics) MentionsExtracted(mention.Section, int)                     {}
func (NopMetrics) DispositionCounted(mention.ToolCategory, mention.Disposition) {}
func (NopMetrics) CacheLookup(bool)                                           {}

// ---------------------------------------------------------------------------
// Service Interface
// ---------------------------------------------------------------------------

// MiningService defines the application-layer contract for tool mining.
type MiningService interface {
	// MinePublication runs the full pipeline over one publication's sections.
	MinePublication(ctx context.Context, req *MiningRequest) (*PublicationResult, error)

	// BatchMine creates an asynchronous job mining multiple publications.
	BatchMine(ctx context.Context, req *BatchMiningRequest) (*MiningJob, error)

	// GetMiningJob returns the current state of a batch mining job.
	GetMiningJob(ctx context.Context, jobID string) (*MiningJob, error)

	// ListMiningJobs returns all known jobs, newest first.
	ListMiningJobs(ctx context.Context) ([]*MiningJob, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

// miningServiceImpl orchestrates the pipeline stages over the domain layer.
type miningServiceImpl struct {
	registries RegistrySource
	catalogRepo catalog.Repository
	cache      ResultCache
	metrics    Metrics
	logger     logging.Logger

	// completenessThreshold is the default minimum filled fraction.
	completenessThreshold float64

	// stages caches the extractor/classifier pair built for one registry
	// value; a hot reload swaps the registry pointer and invalidates it.
	stagesMu sync.Mutex
	stages   *pipelineStages

	jobs   map[string]*MiningJob
	jobsMu sync.RWMutex
}

type pipelineStages struct {
	reg        *registry.Registry
	extractor  Extractor
	classifier *Classifier
}

// NewMiningService constructs a MiningService.  cache may be nil; metrics may
// be nil (a no-op sink is used).
func NewMiningService(
	registries RegistrySource,
	catalogRepo catalog.Repository,
	cache ResultCache,
	metrics Metrics,
	logger logging.Logger,
	completenessThreshold float64,
) MiningService {
	if registries == nil {
		panic("toolmining: registry source must not be nil")
	}
	if catalogRepo == nil {
		panic("toolmining: catalog repository must not be nil")
	}
	if logger == nil {
		panic("toolmining: logger must not be nil")
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if completenessThreshold <= 0 || completenessThreshold > 1 {
		completenessThreshold = DefaultCompletenessThreshold
	}
	return &miningServiceImpl{
		registries:            registries,
		catalogRepo:           catalogRepo,
		cache:                 cache,
		metrics:               metrics,
		logger:                logger,
		completenessThreshold: completenessThreshold,
		jobs:                  make(map[string]*MiningJob),
	}
}

func validateMiningRequest(req *MiningRequest) error {
	if req == nil {
		return errors.Validation("mining_request", "must not be nil")
	}
	if req.PublicationID == "" {
		return errors.Validation("mining_request", "publication_id is required")
	}
	if len(req.Sections) == 0 {
		return errors.Validation("mining_request", "at least one section is required")
	}
	for _, cat := range req.Categories {
		if !cat.IsValid() {
			return errors.Validation("mining_request", fmt.Sprintf("unknown tool category: %s", cat))
		}
	}
	return nil
}

// currentStages returns the extractor/classifier for the current registry,
// rebuilding them when a hot reload has swapped the registry value.
func (s *miningServiceImpl) currentStages(ctx context.Context) (*pipelineStages, error) {
	reg := s.registries.Current()
	if reg == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "no registry available")
	}

	s.stagesMu.Lock()
	defer s.stagesMu.Unlock()
	if s.stages != nil && s.stages.reg == reg {
		return s.stages, nil
	}

	knownNames := make(map[mention.ToolCategory][]string)
	for _, cat := range mention.AllCategories() {
		names, err := s.catalogRepo.KnownNames(ctx, cat)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading catalog known names")
		}
		if len(names) > 0 {
			knownNames[cat] = names
		}
	}

	classifier, err := NewClassifier(ctx, reg, s.catalogRepo)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "building classifier catalog index")
	}

	s.stages = &pipelineStages{
		reg:        reg,
		extractor:  NewExtractor(reg, knownNames),
		classifier: classifier,
	}
	s.logger.Info("pipeline stages rebuilt",
		logging.Int("categories", len(reg.Categories())),
		logging.Int("catalog_categories", len(knownNames)),
	)
	return s.stages, nil
}

// MinePublication runs extract → deduplicate → classify → score for one
// publication.  Classification and scoring happen only after every section
// has been extracted and merged; the unit of atomicity is the publication.
func (s *miningServiceImpl) MinePublication(ctx context.Context, req *MiningRequest) (*PublicationResult, error) {
	if err := validateMiningRequest(req); err != nil {
		return nil, err
	}

	// The cache is keyed by publication ID alone, so only default-shaped
	// requests go through it: a category restriction, a threshold override,
	// or supplied field values would poison the entry for other callers.
	useCache := s.cache != nil && cacheableRequest(req)
	if useCache {
		cached, hit, err := s.cache.Get(ctx, req.PublicationID)
		s.metrics.CacheLookup(hit && err == nil)
		if err != nil {
			s.logger.Warn("result cache lookup failed",
				logging.String("publication_id", string(req.PublicationID)),
				logging.Err(err),
			)
		} else if hit {
			return cached, nil
		}
	} else {
		s.metrics.CacheLookup(false)
	}

	start := time.Now()
	stages, err := s.currentStages(ctx)
	if err != nil {
		return nil, err
	}

	categories := req.Categories
	if len(categories) == 0 {
		categories = mention.AllCategories()
	}

	// 1. Extract every section first; deduplication needs the full set.
	var allMentions []mention.ToolMention
	sectionsScanned := 0
	for _, section := range []mention.Section{mention.SectionAbstract, mention.SectionMethods, mention.SectionIntroduction} {
		text, ok := req.Sections[section]
		if !ok {
			continue
		}
		sectionsScanned++
		found := stages.extractor.Extract(text, section, req.PublicationID, categories)
		s.metrics.MentionsExtracted(section, len(found))
		allMentions = append(allMentions, found...)
	}

	// 2. Merge duplicates across sections.
	deduped := Deduplicate(allMentions)

	// 3-4. Classify each surviving mention, then score the novel ones.
	result := &PublicationResult{
		PublicationID: req.PublicationID,
		TotalMentions: len(allMentions),
		SectionsScanned: sectionsScanned,
		MinedAt:       time.Now(),
	}
	threshold := req.CompletenessThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = s.completenessThreshold
	}

	for _, m := range sortedMentions(deduped) {
		classified := stages.classifier.Classify(m, req.Title)
		s.metrics.DispositionCounted(m.Category, classified.Disposition)

		switch classified.Disposition {
		case mention.DispositionExcluded:
			result.Excluded = append(result.Excluded, classified)
		case mention.DispositionExisting:
			result.Existing = append(result.Existing, classified)
		case mention.DispositionNovel:
			critical, err := s.catalogRepo.CriticalFields(ctx, m.Category)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading critical fields")
			}
			result.Novel = append(result.Novel, Score(classified, s.recordFields(req, m), critical, threshold))
		}
	}

	result.DurationMs = time.Since(start).Milliseconds()
	s.metrics.ObserveMining(time.Since(start))

	s.logger.Info("publication mined",
		logging.String("publication_id", string(req.PublicationID)),
		logging.Int("mentions", result.TotalMentions),
		logging.Int("existing", len(result.Existing)),
		logging.Int("novel", len(result.Novel)),
		logging.Int("excluded", len(result.Excluded)),
		logging.Int64("duration_ms", result.DurationMs),
	)

	if useCache {
		if err := s.cache.Set(ctx, req.PublicationID, result); err != nil {
			s.logger.Warn("result cache store failed",
				logging.String("publication_id", string(req.PublicationID)),
				logging.Err(err),
			)
		}
	}
	return result, nil
}

// cacheableRequest reports whether req carries only the publication itself,
// with no parameters that would make its result wrong for other callers.
func cacheableRequest(req *MiningRequest) bool {
	return len(req.Categories) == 0 && req.CompletenessThreshold <= 0 && len(req.FieldValues) == 0
}

// recordFields assembles the attribute map scored for one novel mention: the
// fields derivable from the mention itself, overlaid with any caller-supplied
// values for the tool.
func (s *miningServiceImpl) recordFields(req *MiningRequest, m mention.ToolMention) map[string]string {
	fields := map[string]string{
		"name":          m.Name,
		"toolType":      string(m.Category),
		"publicationId": string(m.PublicationID),
		"context":       m.Context,
	}
	for k, v := range req.FieldValues[m.NormalizedName()] {
		fields[k] = v
	}
	return fields
}

func sortedMentions(deduped map[mention.MentionKey]mention.ToolMention) []mention.ToolMention {
	out := make([]mention.ToolMention, 0, len(deduped))
	for _, m := range deduped {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].NormalizedName() < out[j].NormalizedName()
	})
	return out
}

// BatchMine registers a job and processes the publications on a background
// goroutine.  Per-publication failures are counted, not fatal to the job.
func (s *miningServiceImpl) BatchMine(ctx context.Context, req *BatchMiningRequest) (*MiningJob, error) {
	if req == nil || len(req.Publications) == 0 {
		return nil, errors.Validation("batch_mining_request", "at least one publication is required")
	}
	for i := range req.Publications {
		if err := validateMiningRequest(&req.Publications[i]); err != nil {
			return nil, err
		}
	}

	job := &MiningJob{
		JobID:             string(commontypes.NewID()),
		Status:            JobStatusPending,
		TotalPublications: len(req.Publications),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	s.jobsMu.Lock()
	s.jobs[job.JobID] = job
	s.jobsMu.Unlock()

	// Detach from the request context: the job outlives the HTTP call.
	go s.runBatch(context.WithoutCancel(ctx), job.JobID, req.Publications)

	return s.snapshotJob(job.JobID), nil
}

func (s *miningServiceImpl) runBatch(ctx context.Context, jobID string, publications []MiningRequest) {
	s.updateJob(jobID, func(j *MiningJob) { j.Status = JobStatusRunning })

	for i := range publications {
		result, err := s.MinePublication(ctx, &publications[i])
		if err != nil {
			s.logger.Error("batch publication failed",
				logging.String("job_id", jobID),
				logging.String("publication_id", string(publications[i].PublicationID)),
				logging.Err(err),
			)
			s.updateJob(jobID, func(j *MiningJob) {
				j.FailedCount++
				j.ProcessedCount++
			})
			continue
		}
		s.updateJob(jobID, func(j *MiningJob) {
			j.ProcessedCount++
			j.Results = append(j.Results, result)
		})
	}

	now := time.Now()
	s.updateJob(jobID, func(j *MiningJob) {
		if j.FailedCount == j.TotalPublications {
			j.Status = JobStatusFailed
			j.ErrorMessage = "all publications failed"
		} else {
			j.Status = JobStatusCompleted
		}
		j.CompletedAt = &now
	})
}

func (s *miningServiceImpl) updateJob(jobID string, fn func(*MiningJob)) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

// snapshotJob returns a copy safe to hand out while the runner mutates state.
func (s *miningServiceImpl) snapshotJob(jobID string) *MiningJob {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	clone := *job
	clone.Results = append([]*PublicationResult(nil), job.Results...)
	return &clone
}

// GetMiningJob implements MiningService.
func (s *miningServiceImpl) GetMiningJob(_ context.Context, jobID string) (*MiningJob, error) {
	if jobID == "" {
		return nil, errors.Validation("mining_job", "job_id is required")
	}
	job := s.snapshotJob(jobID)
	if job == nil {
		return nil, errors.New(errors.ErrCodeMiningJobNotFound, fmt.Sprintf("mining job %s not found", jobID))
	}
	return job, nil
}

// ListMiningJobs implements MiningService.  Jobs are cloned while the read
// lock is held; the batch runner mutates them under the write lock.
func (s *miningServiceImpl) ListMiningJobs(_ context.Context) ([]*MiningJob, error) {
	s.jobsMu.RLock()
	clones := make([]*MiningJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		clone := *job
		clone.Results = append([]*PublicationResult(nil), job.Results...)
		clones = append(clones, &clone)
	}
	s.jobsMu.RUnlock()

	sort.Slice(clones, func(i, j int) bool { return clones[i].CreatedAt.After(clones[j].CreatedAt) })
	return clones, nil
}

var _ MiningService = (*miningServiceImpl)(nil)
