package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MohamedH1998/onbored-sub001/database"
	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
)

// AnalyticsStore reads and writes the ClickHouse event store.
type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{
		DB: chClient,
	}
}

func (s *AnalyticsStore) InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, project_id, event_type, user_id, session_id, account_id, timestamp,
			page_path, referrer, user_agent, ip_address, duration_ms, event_data
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.ProjectID,
			event.EventType,
			event.UserID,
			event.SessionID,
			event.AccountID,
			event.Timestamp,
			event.PagePath,
			event.Referrer,
			event.UserAgent,
			event.IPAddress,
			event.DurationMs,
			string(event.EventData),
		)
		if err != nil {
			logging.Warn().Err(err).Str("event_id", event.EventID).Msg("Error appending event to batch")
		}
	}

	if err := batch.Send(); err != nil {
		metrics.StoreQueryErrors.WithLabelValues("clickhouse", "insert_events").Inc()
		return fmt.Errorf("failed to send batch: %w", err)
	}

	logging.Debug().Int("count", len(events)).Msg("Inserted analytics events")
	return nil
}

func (s *AnalyticsStore) InsertReplayEvents(ctx context.Context, projectID, sessionID string, events []models.ReplayEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO session_replay_events (project_id, session_id, seq, event_type, timestamp, data)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare replay batch insert: %w", err)
	}

	for i, ev := range events {
		if err := batch.Append(projectID, sessionID, uint32(i), uint8(ev.Type), ev.Timestamp, string(ev.Data)); err != nil {
			logging.Warn().Err(err).Str("session_id", sessionID).Int("seq", i).Msg("Error appending replay event to batch")
		}
	}

	if err := batch.Send(); err != nil {
		metrics.StoreQueryErrors.WithLabelValues("clickhouse", "insert_replay").Inc()
		return fmt.Errorf("failed to send replay batch: %w", err)
	}
	return nil
}

// GetJourneys returns the ordered funnel steps each session passed through
// in the given range. An empty funnelID covers every funnel in the project.
func (s *AnalyticsStore) GetJourneys(ctx context.Context, projectID, funnelID string, start, end time.Time) ([]models.JourneyStep, error) {
	whereClause := "WHERE project_id = ? AND event_type = ? AND timestamp >= ? AND timestamp <= ?"
	args := []interface{}{projectID, models.EventTypeFunnelStep, start, end}
	if funnelID != "" {
		whereClause += " AND JSONExtractString(event_data, 'funnel_id') = ?"
		args = append(args, funnelID)
	}

	query := fmt.Sprintf(`
		SELECT
			session_id,
			any(user_id) AS user_id,
			arrayMap(x -> x.2, arraySort(x -> x.1, groupArray((timestamp, JSONExtractString(event_data, 'step_key'))))) AS steps
		FROM analytics_events
		%s
		GROUP BY session_id
		ORDER BY min(timestamp) ASC
	`, whereClause)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("clickhouse", "journeys").Inc()
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var results []models.JourneyStep
	for rows.Next() {
		var j models.JourneyStep
		if err := rows.Scan(&j.SessionID, &j.UserID, &j.Steps); err != nil {
			logging.Warn().Err(err).Msg("Error scanning journey row")
			continue
		}
		results = append(results, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journey rows: %w", err)
	}

	return results, nil
}

// GetSessionReplay returns a session's recording in capture order.
func (s *AnalyticsStore) GetSessionReplay(ctx context.Context, projectID, sessionID string) ([]models.ReplayEvent, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT event_type, timestamp, data
		FROM session_replay_events
		WHERE project_id = ? AND session_id = ?
		ORDER BY timestamp ASC, seq ASC
	`, projectID, sessionID)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("clickhouse", "replay").Inc()
		return nil, fmt.Errorf("failed to query session replay: %w", err)
	}
	defer rows.Close()

	var events []models.ReplayEvent
	for rows.Next() {
		var (
			eventType uint8
			ts        int64
			data      string
		)
		if err := rows.Scan(&eventType, &ts, &data); err != nil {
			logging.Warn().Err(err).Str("session_id", sessionID).Msg("Error scanning replay row")
			continue
		}
		ev := models.ReplayEvent{Type: int(eventType), Timestamp: ts}
		if data != "" {
			ev.Data = []byte(data)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating replay rows: %w", err)
	}

	return events, nil
}

// GetAccountHealth returns the latest computed health record per account.
func (s *AnalyticsStore) GetAccountHealth(ctx context.Context, projectID string) ([]models.AccountHealth, error) {
	rows, err := s.DB.Conn.Query(ctx, `
		SELECT
			account_id,
			argMax(account_name, computed_at),
			argMax(health_score, computed_at),
			argMax(risk_tier, computed_at),
			argMax(trend_direction, computed_at),
			argMax(days_since_last_activity, computed_at),
			argMax(completion_rate, computed_at)
		FROM account_health
		WHERE project_id = ?
		GROUP BY account_id
		ORDER BY account_id ASC
	`, projectID)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("clickhouse", "account_health").Inc()
		return nil, fmt.Errorf("failed to query account health: %w", err)
	}
	defer rows.Close()

	var results []models.AccountHealth
	for rows.Next() {
		var (
			h    models.AccountHealth
			days *int32
		)
		if err := rows.Scan(&h.AccountID, &h.AccountName, &h.HealthScore, &h.RiskTier, &h.TrendDirection, &days, &h.CompletionRate); err != nil {
			logging.Warn().Err(err).Msg("Error scanning account health row")
			continue
		}
		if days != nil {
			d := int(*days)
			h.DaysSinceLastActivity = &d
		}
		results = append(results, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account health rows: %w", err)
	}

	return results, nil
}
