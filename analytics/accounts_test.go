package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedH1998/onbored-sub001/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestMergeAccountData(t *testing.T) {
	mrr := 499.0
	health := []models.AccountHealth{
		{AccountID: "X", AccountName: strPtr("X from health"), HealthScore: 42, RiskTier: "high", TrendDirection: "down", DaysSinceLastActivity: intPtr(1)},
		{AccountID: "Z", HealthScore: 90, RiskTier: "low", TrendDirection: "up"},
	}
	accounts := []models.AccountRecord{
		{AccountID: "Z", Name: "stale", Plan: strPtr("free")},
		{AccountID: "Z", Name: "Zeta Corp", Plan: strPtr("Pro"), MRR: &mrr, Lifecycle: strPtr("customer")},
		{AccountID: "Y", Name: "Orphan"},
	}

	rows := MergeAccountData(health, accounts)
	require.Len(t, rows, 2)

	x := rows[0]
	assert.Equal(t, "X", x.AccountID)
	assert.Equal(t, "X from health", *x.Name)
	assert.Nil(t, x.Plan)
	assert.Nil(t, x.MRR)
	assert.Nil(t, x.Lifecycle)
	assert.Equal(t, 42.0, x.HealthScore)
	assert.Equal(t, "high", x.RiskTier)
	assert.Equal(t, "Yesterday", x.LastActivity)

	z := rows[1]
	assert.Equal(t, "Zeta Corp", *z.Name, "last duplicate wins")
	assert.Equal(t, "Pro", *z.Plan)
	assert.Equal(t, 499.0, *z.MRR)
	assert.Equal(t, "customer", *z.Lifecycle)
	assert.Equal(t, "No activity", z.LastActivity)

	for _, r := range rows {
		assert.NotEqual(t, "Y", r.AccountID)
	}
}

func TestMergeAccountDataEmpty(t *testing.T) {
	assert.Empty(t, MergeAccountData(nil, []models.AccountRecord{{AccountID: "Y"}}))
}

func TestFilterMergedAccounts(t *testing.T) {
	rows := []models.MergedAccountRow{
		{AccountID: "1", Plan: strPtr("pro"), RiskTier: "high", Lifecycle: strPtr("trial")},
		{AccountID: "2", Plan: strPtr("free"), RiskTier: "low", Lifecycle: strPtr("customer")},
		{AccountID: "3", RiskTier: "medium"},
		{AccountID: "4", Plan: strPtr("PRO"), RiskTier: "low", Lifecycle: strPtr("customer"), TrendDirection: "down"},
	}

	tests := []struct {
		name    string
		filters []models.AccountFilter
		want    []string
	}{
		{"plan is case-insensitive", []models.AccountFilter{{ID: FilterPlan, Value: []string{"Pro"}}}, []string{"1", "4"}},
		{"risk tier is exact", []models.AccountFilter{{ID: FilterRiskTier, Value: []string{"High"}}}, nil},
		{"any value within a filter", []models.AccountFilter{{ID: FilterRiskTier, Value: []string{"high", "medium"}}}, []string{"1", "3"}},
		{"every filter must pass", []models.AccountFilter{
			{ID: FilterPlan, Value: []string{"pro"}},
			{ID: FilterLifecycle, Value: []string{"customer"}},
		}, []string{"4"}},
		{"absent field never passes", []models.AccountFilter{{ID: FilterLifecycle, Value: []string{"trial", "customer"}}}, []string{"1", "2", "4"}},
		{"trend direction", []models.AccountFilter{{ID: FilterTrendDirection, Value: []string{"down"}}}, []string{"4"}},
		{"unknown id passes through", []models.AccountFilter{{ID: "region", Value: []string{"eu"}}}, []string{"1", "2", "3", "4"}},
		{"empty value list matches nothing", []models.AccountFilter{{ID: FilterPlan}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range FilterMergedAccounts(rows, tt.filters) {
				got = append(got, r.AccountID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterMergedAccountsNoFilters(t *testing.T) {
	rows := []models.MergedAccountRow{{AccountID: "1"}}
	assert.Equal(t, rows, FilterMergedAccounts(rows, nil))
}

func TestParseFilters(t *testing.T) {
	assert.Nil(t, ParseFilters(""))
	assert.Nil(t, ParseFilters("{not json"))
	assert.Nil(t, ParseFilters(`{"id":"plan"}`))
	assert.Equal(t,
		[]models.AccountFilter{{ID: "plan", Value: []string{"Pro", "Team"}}},
		ParseFilters(`[{"id":"plan","value":["Pro","Team"]},{"value":["x"]}]`),
	)
}
