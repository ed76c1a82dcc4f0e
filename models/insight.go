package models

import (
	"encoding/json"
	"time"
)

// ReplayEvent is one rrweb-style session recording event.
type ReplayEvent struct {
	Type      int             `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// InteractionEvent is a user-meaningful action distilled from a replay.
type InteractionEvent struct {
	OffsetMs int64  `json:"offsetMs"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail,omitempty"`
}

type Funnel struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

type FunnelStep struct {
	Name     string          `json:"name"`
	Key      string          `json:"key"`
	Order    int             `json:"order"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// InsightFields is what the inference provider produces for a session.
type InsightFields struct {
	Summary         string   `json:"summary"`
	UserIntent      string   `json:"user_intent"`
	Outcome         string   `json:"outcome"`
	DropOffStep     string   `json:"drop_off_step,omitempty"`
	FrictionPoints  []string `json:"friction_points"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
}

// SessionInsight is the persisted insight. At most one exists per session.
type SessionInsight struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId"`
	FunnelID  string `json:"funnelId"`
	InsightFields
	CreatedAt time.Time `json:"createdAt"`
}
