package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
)

type FunnelStore struct {
	db *sql.DB
}

func NewFunnelStore(db *sql.DB) *FunnelStore {
	return &FunnelStore{db: db}
}

func (s *FunnelStore) GetFunnel(ctx context.Context, projectID, funnelID string) (*models.Funnel, error) {
	f := &models.Funnel{}
	query := `
		SELECT id, project_id, name
		FROM funnels
		WHERE id = $1 AND project_id = $2;
	`
	err := s.db.QueryRowContext(ctx, query, funnelID, projectID).Scan(&f.ID, &f.ProjectID, &f.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("funnel %q: %w", funnelID, ErrNotFound)
		}
		metrics.StoreQueryErrors.WithLabelValues("postgres", "funnel").Inc()
		return nil, fmt.Errorf("failed to get funnel: %w", err)
	}
	return f, nil
}

// StepsByFunnelID returns the funnel's steps in order.
func (s *FunnelStore) StepsByFunnelID(ctx context.Context, funnelID string) ([]models.FunnelStep, error) {
	query := `
		SELECT name, step_key, step_order, metadata
		FROM funnel_steps
		WHERE funnel_id = $1
		ORDER BY step_order ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, funnelID)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("postgres", "funnel_steps").Inc()
		return nil, fmt.Errorf("failed to query funnel steps: %w", err)
	}
	defer rows.Close()

	var steps []models.FunnelStep
	for rows.Next() {
		var (
			step     models.FunnelStep
			metadata []byte
		)
		if err := rows.Scan(&step.Name, &step.Key, &step.Order, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan funnel step: %w", err)
		}
		if len(metadata) > 0 {
			step.Metadata = metadata
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funnel steps: %w", err)
	}

	return steps, nil
}
