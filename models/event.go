package models

import (
	"encoding/json"
	"time"
)

// AnalyticsEvent represents a single tracked event.
type AnalyticsEvent struct {
	EventID    string          `json:"eventId"`
	ProjectID  string          `json:"projectId"`
	EventType  string          `json:"eventType"`
	UserID     string          `json:"userId"`
	SessionID  string          `json:"sessionId"`
	AccountID  string          `json:"accountId,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	PagePath   string          `json:"pagePath"`
	Referrer   string          `json:"referrer"`
	UserAgent  string          `json:"userAgent"`
	IPAddress  string          `json:"ipAddress"`
	DurationMs int64           `json:"durationMs"`
	EventData  json.RawMessage `json:"eventData,omitempty"`
}

// Event types with meaning to the derivation pipeline.
const (
	EventTypeFunnelStep = "funnel_step"
	EventTypePageView   = "page_view"
)
