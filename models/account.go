package models

// AccountRecord holds the authoritative fields kept in the relational store.
type AccountRecord struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Plan      *string  `json:"plan,omitempty"`
	MRR       *float64 `json:"mrr,omitempty"`
	Lifecycle *string  `json:"lifecycle,omitempty"`
}

// AccountHealth is the computed churn-risk record for one account.
type AccountHealth struct {
	AccountID             string   `json:"account_id"`
	AccountName           *string  `json:"account_name,omitempty"`
	HealthScore           float64  `json:"health_score"`
	RiskTier              string   `json:"risk_tier"`
	TrendDirection        string   `json:"trend_direction"`
	DaysSinceLastActivity *int     `json:"days_since_last_activity,omitempty"`
	CompletionRate        *float64 `json:"completion_rate,omitempty"`
}

// MergedAccountRow overlays optional authoritative fields on a health record.
type MergedAccountRow struct {
	AccountID             string   `json:"account_id"`
	Name                  *string  `json:"name,omitempty"`
	Plan                  *string  `json:"plan,omitempty"`
	MRR                   *float64 `json:"mrr,omitempty"`
	Lifecycle             *string  `json:"lifecycle,omitempty"`
	HealthScore           float64  `json:"health_score"`
	RiskTier              string   `json:"risk_tier"`
	TrendDirection        string   `json:"trend_direction"`
	DaysSinceLastActivity *int     `json:"days_since_last_activity,omitempty"`
	LastActivity          string   `json:"last_activity"`
	CompletionRate        *float64 `json:"completion_rate,omitempty"`
}

// AccountFilter is a column filter as sent by the dashboard table.
type AccountFilter struct {
	ID    string   `json:"id"`
	Value []string `json:"value"`
}
