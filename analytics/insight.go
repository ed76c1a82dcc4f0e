package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
	"github.com/MohamedH1998/onbored-sub001/store"
)

var (
	ErrMissingSession = errors.New("session id is required")
	ErrFunnelNotFound = errors.New("funnel not found")
	ErrNoInteractions = errors.New("no meaningful interactions in session replay")
	ErrEmptyInsight   = errors.New("insight generator returned no insight")

	// ErrProjectMismatch means the session already has an insight under a
	// different project.
	ErrProjectMismatch = errors.New("session insight belongs to another project")
)

// InsightStore persists session insights. FindBySessionID returns nil, nil
// when no insight exists. Create returns store.ErrInsightExists when another
// insight for the same session was written first.
type InsightStore interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.SessionInsight, error)
	Create(ctx context.Context, insight *models.SessionInsight) (*models.SessionInsight, error)
}

// FunnelStore loads funnel definitions. GetFunnel returns store.ErrNotFound
// for unknown funnels.
type FunnelStore interface {
	GetFunnel(ctx context.Context, projectID, funnelID string) (*models.Funnel, error)
	StepsByFunnelID(ctx context.Context, funnelID string) ([]models.FunnelStep, error)
}

// GenerateInput is everything the insight generator sees for one session.
type GenerateInput struct {
	FunnelName  string
	RawEvents   []models.ReplayEvent
	Summary     ReplaySummary
	FunnelSteps []models.FunnelStep
}

// InsightGenerator produces insight fields for a session. A nil result with
// a nil error means the provider had nothing to say.
type InsightGenerator interface {
	Generate(ctx context.Context, in GenerateInput) (*models.InsightFields, error)
}

// ReplayLoader fetches a session's recording on demand.
type ReplayLoader func(ctx context.Context) ([]models.ReplayEvent, error)

// SessionRecordingRequest carries the recording inline or, when
// SessionReplay is empty, a LoadReplay callback that is only invoked once
// no stored insight was found.
type SessionRecordingRequest struct {
	ProjectID     string
	SessionID     string
	FunnelID      string
	SessionReplay []models.ReplayEvent
	LoadReplay    ReplayLoader
}

// InsightResult is the outcome of one pipeline run. Err carries the
// underlying error for callers that want to classify it.
type InsightResult struct {
	Success bool                   `json:"success"`
	Data    *models.SessionInsight `json:"data"`
	Cached  bool                   `json:"cached"`
	Error   string                 `json:"error,omitempty"`
	Err     error                  `json:"-"`
}

func insightFailure(err error) InsightResult {
	return InsightResult{Success: false, Error: err.Error(), Err: err}
}

// InsightPipeline turns a session recording into at most one persisted
// insight per session.
type InsightPipeline struct {
	insights  InsightStore
	funnels   FunnelStore
	generator InsightGenerator
	log       zerolog.Logger
}

func NewInsightPipeline(insights InsightStore, funnels FunnelStore, generator InsightGenerator) *InsightPipeline {
	return &InsightPipeline{
		insights:  insights,
		funnels:   funnels,
		generator: generator,
		log:       logging.With().Str("component", "insight_pipeline").Logger(),
	}
}

// ProcessSessionRecording returns the stored insight for the session if one
// exists, otherwise summarizes the replay, runs inference once and persists
// the result. It never returns a partial insight and never panics.
//
// The existence check and the create are not atomic. When a concurrent run
// wins the create, its record is returned instead of an error.
func (p *InsightPipeline) ProcessSessionRecording(ctx context.Context, req SessionRecordingRequest) (res InsightResult) {
	start := time.Now()
	log := p.log.With().
		Str("project_id", req.ProjectID).
		Str("session_id", req.SessionID).
		Str("funnel_id", req.FunnelID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Session insight pipeline panicked")
			res = insightFailure(fmt.Errorf("insight pipeline panic: %v", r))
		}
		metrics.InsightPipelineDuration.WithLabelValues(resultLabel(res)).Observe(time.Since(start).Seconds())
	}()

	if req.SessionID == "" {
		return insightFailure(ErrMissingSession)
	}

	existing, err := p.insights.FindBySessionID(ctx, req.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up existing session insight")
		return insightFailure(fmt.Errorf("failed to look up session insight: %w", err))
	}
	if existing != nil {
		if existing.ProjectID != req.ProjectID {
			log.Warn().Str("insight_id", existing.ID).Msg("Session insight exists under another project")
			return insightFailure(ErrProjectMismatch)
		}
		metrics.InsightCacheHits.Inc()
		log.Debug().Str("insight_id", existing.ID).Msg("Returning stored session insight")
		return InsightResult{Success: true, Data: existing, Cached: true}
	}

	replay := req.SessionReplay
	if len(replay) == 0 && req.LoadReplay != nil {
		replay, err = req.LoadReplay(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load session replay")
			return insightFailure(fmt.Errorf("failed to load session replay: %w", err))
		}
	}

	summary := SummarizeReplay(replay)
	if summary.Empty() {
		log.Info().Int("raw_events", len(replay)).Msg("Session replay has no meaningful interactions")
		return insightFailure(ErrNoInteractions)
	}

	funnel, err := p.funnels.GetFunnel(ctx, req.ProjectID, req.FunnelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return insightFailure(ErrFunnelNotFound)
		}
		log.Error().Err(err).Msg("Failed to load funnel")
		return insightFailure(fmt.Errorf("failed to load funnel: %w", err))
	}
	steps, err := p.funnels.StepsByFunnelID(ctx, req.FunnelID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load funnel steps")
		return insightFailure(fmt.Errorf("failed to load funnel steps: %w", err))
	}

	fields, err := p.generator.Generate(ctx, GenerateInput{
		FunnelName:  funnel.Name,
		RawEvents:   replay,
		Summary:     summary,
		FunnelSteps: steps,
	})
	if err != nil {
		metrics.InferenceCalls.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("Insight generation failed")
		return insightFailure(fmt.Errorf("failed to generate insight: %w", err))
	}
	if fields == nil {
		metrics.InferenceCalls.WithLabelValues("empty").Inc()
		log.Warn().Msg("Insight generator returned nothing")
		return insightFailure(ErrEmptyInsight)
	}
	metrics.InferenceCalls.WithLabelValues("ok").Inc()

	created, err := p.insights.Create(ctx, &models.SessionInsight{
		ID:            uuid.New().String(),
		SessionID:     req.SessionID,
		ProjectID:     req.ProjectID,
		FunnelID:      req.FunnelID,
		InsightFields: *fields,
	})
	if errors.Is(err, store.ErrInsightExists) {
		metrics.InsightConflicts.Inc()
		winner, ferr := p.insights.FindBySessionID(ctx, req.SessionID)
		if ferr != nil {
			log.Error().Err(ferr).Msg("Failed to re-fetch concurrently created insight")
			return insightFailure(fmt.Errorf("failed to re-fetch session insight: %w", ferr))
		}
		if winner == nil {
			log.Error().Msg("Concurrently created insight vanished")
			return insightFailure(fmt.Errorf("failed to persist session insight: %w", err))
		}
		if winner.ProjectID != req.ProjectID {
			return insightFailure(ErrProjectMismatch)
		}
		log.Info().Str("insight_id", winner.ID).Msg("Concurrent run created the insight first")
		return InsightResult{Success: true, Data: winner, Cached: true}
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to persist session insight")
		return insightFailure(fmt.Errorf("failed to persist session insight: %w", err))
	}

	log.Info().Str("insight_id", created.ID).Int("interactions", len(summary.Events)).Msg("Session insight created")
	return InsightResult{Success: true, Data: created}
}

func resultLabel(res InsightResult) string {
	switch {
	case res.Success && res.Cached:
		return "cached"
	case res.Success:
		return "created"
	default:
		return "failed"
	}
}
