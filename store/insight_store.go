package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
)

// InsightStore persists session insights. Rows are created once and never
// updated or deleted.
type InsightStore struct {
	db *sql.DB
}

func NewInsightStore(db *sql.DB) *InsightStore {
	return &InsightStore{db: db}
}

// FindBySessionID returns nil, nil when the session has no insight yet.
func (s *InsightStore) FindBySessionID(ctx context.Context, sessionID string) (*models.SessionInsight, error) {
	insight := &models.SessionInsight{}
	var friction, recommendations []byte
	query := `
		SELECT id, session_id, project_id, funnel_id, summary, user_intent, outcome,
			drop_off_step, friction_points, recommendations, confidence, created_at
		FROM session_insights
		WHERE session_id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&insight.ID,
		&insight.SessionID,
		&insight.ProjectID,
		&insight.FunnelID,
		&insight.Summary,
		&insight.UserIntent,
		&insight.Outcome,
		&insight.DropOffStep,
		&friction,
		&recommendations,
		&insight.Confidence,
		&insight.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		metrics.StoreQueryErrors.WithLabelValues("postgres", "find_insight").Inc()
		return nil, fmt.Errorf("failed to get session insight: %w", err)
	}

	if err := json.Unmarshal(friction, &insight.FrictionPoints); err != nil {
		return nil, fmt.Errorf("failed to decode friction points: %w", err)
	}
	if err := json.Unmarshal(recommendations, &insight.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return insight, nil
}

// Create inserts the insight. It returns ErrInsightExists when the session
// already has one.
func (s *InsightStore) Create(ctx context.Context, insight *models.SessionInsight) (*models.SessionInsight, error) {
	friction, err := json.Marshal(nonNil(insight.FrictionPoints))
	if err != nil {
		return nil, fmt.Errorf("failed to encode friction points: %w", err)
	}
	recommendations, err := json.Marshal(nonNil(insight.Recommendations))
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	created := *insight
	query := `
		INSERT INTO session_insights (
			id, session_id, project_id, funnel_id, summary, user_intent, outcome,
			drop_off_step, friction_points, recommendations, confidence
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at;
	`
	err = s.db.QueryRowContext(ctx, query,
		insight.ID,
		insight.SessionID,
		insight.ProjectID,
		insight.FunnelID,
		insight.Summary,
		insight.UserIntent,
		insight.Outcome,
		insight.DropOffStep,
		string(friction),
		string(recommendations),
		insight.Confidence,
	).Scan(&created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrInsightExists
		}
		metrics.StoreQueryErrors.WithLabelValues("postgres", "create_insight").Inc()
		return nil, fmt.Errorf("failed to create session insight: %w", err)
	}

	logging.Debug().Str("insight_id", created.ID).Str("session_id", created.SessionID).Msg("Session insight stored")
	return &created, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
