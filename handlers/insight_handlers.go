package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MohamedH1998/onbored-sub001/analytics"
	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/models"
)

type InsightProcessor interface {
	ProcessSessionRecording(ctx context.Context, req analytics.SessionRecordingRequest) analytics.InsightResult
}

type InsightReader interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.SessionInsight, error)
}

type InsightHandlers struct {
	Events   EventStore
	Insights InsightReader
	Pipeline InsightProcessor
	// Timeout bounds a whole pipeline run, inference included.
	Timeout time.Duration
}

func NewInsightHandlers(events EventStore, insights InsightReader, pipeline InsightProcessor, timeout time.Duration) *InsightHandlers {
	return &InsightHandlers{
		Events:   events,
		Insights: insights,
		Pipeline: pipeline,
		Timeout:  timeout,
	}
}

type generateInsightRequest struct {
	FunnelID string               `json:"funnelId" binding:"required"`
	Events   []models.ReplayEvent `json:"events"`
}

// GenerateInsight runs the session insight pipeline. The recording comes
// from the request body or, when absent, from the event store once the
// pipeline has found no stored insight.
func (h *InsightHandlers) GenerateInsight(c *gin.Context) {
	projectID := c.Param("projectId")
	sessionID := c.Param("sessionId")

	var req generateInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	res := h.Pipeline.ProcessSessionRecording(ctx, analytics.SessionRecordingRequest{
		ProjectID:     projectID,
		SessionID:     sessionID,
		FunnelID:      req.FunnelID,
		SessionReplay: req.Events,
		LoadReplay: func(ctx context.Context) ([]models.ReplayEvent, error) {
			return h.Events.GetSessionReplay(ctx, projectID, sessionID)
		},
	})
	c.JSON(statusFor(res), res)
}

func (h *InsightHandlers) GetInsight(c *gin.Context) {
	projectID := c.Param("projectId")
	sessionID := c.Param("sessionId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	insight, err := h.Insights.FindBySessionID(ctx, sessionID)
	if err != nil {
		logging.Error().Err(err).Str("session_id", sessionID).Msg("Error getting session insight")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session insight"})
		return
	}
	if insight == nil || insight.ProjectID != projectID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session insight not found"})
		return
	}
	c.JSON(http.StatusOK, insight)
}

func statusFor(res analytics.InsightResult) int {
	switch {
	case res.Success && res.Cached:
		return http.StatusOK
	case res.Success:
		return http.StatusCreated
	case errors.Is(res.Err, analytics.ErrMissingSession):
		return http.StatusBadRequest
	case errors.Is(res.Err, analytics.ErrFunnelNotFound):
		return http.StatusNotFound
	case errors.Is(res.Err, analytics.ErrProjectMismatch):
		return http.StatusConflict
	case errors.Is(res.Err, analytics.ErrNoInteractions), errors.Is(res.Err, analytics.ErrEmptyInsight):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
