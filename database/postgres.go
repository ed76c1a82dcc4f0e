package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/MohamedH1998/onbored-sub001/config"
	"github.com/MohamedH1998/onbored-sub001/logging"
)

type DBClient struct {
	DB *sql.DB
}

func NewPostgresDB(cfg config.Config) (*DBClient, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	logging.Info().Msg("Connected to PostgreSQL")
	return &DBClient{DB: db}, nil
}

// EnsureSchema creates the relational tables if they are missing.
func (c *DBClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply PostgreSQL schema: %w", err)
	}
	return nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing database connection")
			return
		}
		logging.Info().Msg("PostgreSQL connection closed")
	}
}

// session_insights.session_id is unique: concurrent creates for one session
// resolve to a single row.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	plan TEXT,
	mrr NUMERIC(12, 2),
	lifecycle_stage TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS funnels (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS funnel_steps (
	funnel_id TEXT NOT NULL REFERENCES funnels(id) ON DELETE CASCADE,
	step_key TEXT NOT NULL,
	name TEXT NOT NULL,
	step_order INT NOT NULL,
	metadata JSONB,
	PRIMARY KEY (funnel_id, step_key)
);

CREATE TABLE IF NOT EXISTS session_insights (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	project_id TEXT NOT NULL,
	funnel_id TEXT NOT NULL,
	summary TEXT NOT NULL,
	user_intent TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL DEFAULT '',
	drop_off_step TEXT NOT NULL DEFAULT '',
	friction_points JSONB NOT NULL DEFAULT '[]',
	recommendations JSONB NOT NULL DEFAULT '[]',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_session_insights_project_id ON session_insights(project_id);
`
