package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/MohamedH1998/onbored-sub001/config"
	"github.com/MohamedH1998/onbored-sub001/logging"
)

type ClickHouseClient struct {
	Conn clickhouse.Conn
}

func NewClickHouseDB(cfg config.Config) (*ClickHouseClient, error) {
	if cfg.ClickHouseHost == "" || cfg.ClickHouseDB == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST or CLICKHOUSE_DB_NAME is not set")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHouseNativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "onbored-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logging.Info().Str("addr", options.Addr[0]).Msg("Connected to ClickHouse")
	return &ClickHouseClient{Conn: conn}, nil
}

// EnsureSchema creates the event tables if they are missing.
func (c *ClickHouseClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range clickHouseSchema {
		if err := c.Conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply ClickHouse schema: %w", err)
		}
	}
	return nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing ClickHouse connection")
			return
		}
		logging.Info().Msg("ClickHouse connection closed")
	}
}

var clickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS analytics_events (
		event_id String,
		project_id String,
		event_type LowCardinality(String),
		user_id String,
		session_id String,
		account_id String,
		timestamp DateTime64(3),
		page_path String,
		referrer String,
		user_agent String,
		ip_address String,
		duration_ms Int64,
		event_data String
	) ENGINE = MergeTree
	ORDER BY (project_id, session_id, timestamp)`,

	`CREATE TABLE IF NOT EXISTS session_replay_events (
		project_id String,
		session_id String,
		seq UInt32,
		event_type UInt8,
		timestamp Int64,
		data String
	) ENGINE = MergeTree
	ORDER BY (project_id, session_id, timestamp, seq)`,

	`CREATE TABLE IF NOT EXISTS account_health (
		project_id String,
		account_id String,
		account_name Nullable(String),
		health_score Float64,
		risk_tier LowCardinality(String),
		trend_direction LowCardinality(String),
		days_since_last_activity Nullable(Int32),
		completion_rate Nullable(Float64),
		computed_at DateTime
	) ENGINE = ReplacingMergeTree(computed_at)
	ORDER BY (project_id, account_id)`,
}
