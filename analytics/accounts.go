package analytics

import (
	"encoding/json"
	"strings"

	"github.com/MohamedH1998/onbored-sub001/models"
	"github.com/MohamedH1998/onbored-sub001/utils"
)

// Filter ids understood by FilterMergedAccounts.
const (
	FilterRiskTier       = "risk_tier"
	FilterLifecycle      = "lifecycle"
	FilterPlan           = "plan"
	FilterTrendDirection = "trend_direction"
)

// MergeAccountData produces one row per health record, overlaying the
// authoritative account fields when a record with the same id exists.
// Authoritative records without health data are dropped.
func MergeAccountData(health []models.AccountHealth, accounts []models.AccountRecord) []models.MergedAccountRow {
	byID := make(map[string]models.AccountRecord, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}

	rows := make([]models.MergedAccountRow, 0, len(health))
	for _, h := range health {
		row := models.MergedAccountRow{
			AccountID:             h.AccountID,
			Name:                  h.AccountName,
			HealthScore:           h.HealthScore,
			RiskTier:              h.RiskTier,
			TrendDirection:        h.TrendDirection,
			DaysSinceLastActivity: h.DaysSinceLastActivity,
			LastActivity:          utils.FormatRecency(h.DaysSinceLastActivity),
			CompletionRate:        h.CompletionRate,
		}
		if a, ok := byID[h.AccountID]; ok {
			if a.Name != "" {
				name := a.Name
				row.Name = &name
			}
			row.Plan = a.Plan
			row.MRR = a.MRR
			row.Lifecycle = a.Lifecycle
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterMergedAccounts keeps rows that satisfy every filter. A filter is
// satisfied when the row's field matches any of its values. Unknown filter
// ids are ignored.
func FilterMergedAccounts(rows []models.MergedAccountRow, filters []models.AccountFilter) []models.MergedAccountRow {
	if len(filters) == 0 {
		return rows
	}

	out := make([]models.MergedAccountRow, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, filters) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row models.MergedAccountRow, filters []models.AccountFilter) bool {
	for _, f := range filters {
		if !matches(row, f) {
			return false
		}
	}
	return true
}

func matches(row models.MergedAccountRow, f models.AccountFilter) bool {
	switch f.ID {
	case FilterRiskTier:
		return row.RiskTier != "" && contains(f.Value, row.RiskTier)
	case FilterTrendDirection:
		return row.TrendDirection != "" && contains(f.Value, row.TrendDirection)
	case FilterLifecycle:
		return row.Lifecycle != nil && contains(f.Value, *row.Lifecycle)
	case FilterPlan:
		if row.Plan == nil {
			return false
		}
		plan := strings.ToLower(*row.Plan)
		for _, v := range f.Value {
			if strings.ToLower(v) == plan {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// ParseFilters decodes the dashboard's JSON filter parameter. Anything that
// does not decode yields no filters.
func ParseFilters(raw string) []models.AccountFilter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var filters []models.AccountFilter
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil
	}
	out := filters[:0]
	for _, f := range filters {
		if f.ID != "" {
			out = append(out, f)
		}
	}
	return out
}
