package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MohamedH1998/onbored-sub001/analytics"
	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
	"github.com/MohamedH1998/onbored-sub001/utils"
)

// EventStore is the slice of the ClickHouse store the handlers use.
type EventStore interface {
	InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error
	InsertReplayEvents(ctx context.Context, projectID, sessionID string, events []models.ReplayEvent) error
	GetJourneys(ctx context.Context, projectID, funnelID string, start, end time.Time) ([]models.JourneyStep, error)
	GetSessionReplay(ctx context.Context, projectID, sessionID string) ([]models.ReplayEvent, error)
	GetAccountHealth(ctx context.Context, projectID string) ([]models.AccountHealth, error)
}

type AccountReader interface {
	GetAccounts(ctx context.Context, projectID string, ids []string) ([]models.AccountRecord, error)
}

type AnalyticsHandlers struct {
	Events   EventStore
	Accounts AccountReader
}

func NewAnalyticsHandlers(events EventStore, accounts AccountReader) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Events:   events,
		Accounts: accounts,
	}
}

func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var incomingEvents []models.AnalyticsEvent
	if err := c.ShouldBindJSON(&incomingEvents); err != nil {
		logging.Warn().Err(err).Msg("Error binding incoming analytics JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incomingEvents) == 0 {
		c.Status(http.StatusOK)
		return
	}

	now := time.Now().UTC()
	eventsToInsert := make([]models.AnalyticsEvent, 0, len(incomingEvents))
	for _, event := range incomingEvents {
		if event.ProjectID == "" || event.EventType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "projectId and eventType are required on every event"})
			return
		}
		event.EventID = uuid.New().String()
		event.IPAddress = c.ClientIP()
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		eventsToInsert = append(eventsToInsert, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertAnalyticsEvents(ctx, eventsToInsert); err != nil {
		logging.Error().Err(err).Msg("Error inserting analytics events into ClickHouse")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics events"})
		return
	}

	c.Status(http.StatusOK)
}

type replayBatch struct {
	ProjectID string               `json:"projectId" binding:"required"`
	SessionID string               `json:"sessionId" binding:"required"`
	Events    []models.ReplayEvent `json:"events"`
}

func (h *AnalyticsHandlers) TrackReplay(c *gin.Context) {
	var batch replayBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertReplayEvents(ctx, batch.ProjectID, batch.SessionID, batch.Events); err != nil {
		logging.Error().Err(err).Str("session_id", batch.SessionID).Msg("Error inserting replay events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record session replay"})
		return
	}

	c.Status(http.StatusOK)
}

// GetJourneyGraph serves the funnel Sankey for a project and date range.
func (h *AnalyticsHandlers) GetJourneyGraph(c *gin.Context) {
	projectID := c.Param("projectId")
	funnelID := c.Query("funnelId")

	start, end, err := utils.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	journeys, err := h.Events.GetJourneys(ctx, projectID, funnelID, start, end)
	if err != nil {
		logging.Error().Err(err).Str("project_id", projectID).Msg("Error getting journeys")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journeys"})
		return
	}

	graph := analytics.BuildJourneyGraph(journeys)
	metrics.JourneyGraphSize.WithLabelValues("nodes").Observe(float64(len(graph.Nodes)))
	metrics.JourneyGraphSize.WithLabelValues("links").Observe(float64(len(graph.Links)))

	c.JSON(http.StatusOK, graph)
}

// GetAccountHealth serves the merged, filtered account health table.
func (h *AnalyticsHandlers) GetAccountHealth(c *gin.Context) {
	projectID := c.Param("projectId")
	filters := analytics.ParseFilters(c.Query("filters"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	health, err := h.Events.GetAccountHealth(ctx, projectID)
	if err != nil {
		logging.Error().Err(err).Str("project_id", projectID).Msg("Error getting account health")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account health"})
		return
	}

	ids := make([]string, 0, len(health))
	for _, row := range health {
		ids = append(ids, row.AccountID)
	}
	accounts, err := h.Accounts.GetAccounts(ctx, projectID, ids)
	if err != nil {
		logging.Error().Err(err).Str("project_id", projectID).Msg("Error getting accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve accounts"})
		return
	}

	rows := analytics.FilterMergedAccounts(analytics.MergeAccountData(health, accounts), filters)
	c.JSON(http.StatusOK, rows)
}
