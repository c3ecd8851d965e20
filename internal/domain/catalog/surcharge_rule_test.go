package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSurchargeRule_AppliesToDate(t *testing.T) {
	saturday := time.Date(2026, 9, 5, 14, 30, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		rule   SurchargeRule
		pickup time.Time
		want   bool
	}{
		{
			name:   "saturday flag matches saturday",
			rule:   SurchargeRule{AppliesSaturday: true},
			pickup: saturday,
			want:   true,
		},
		{
			name:   "saturday flag ignores sunday",
			rule:   SurchargeRule{AppliesSaturday: true},
			pickup: sunday,
			want:   false,
		},
		{
			name:   "specific date matches regardless of time of day",
			rule:   SurchargeRule{SpecificDate: datePtr(2026, 9, 2)},
			pickup: wednesday,
			want:   true,
		},
		{
			name:   "range is inclusive on both ends",
			rule:   SurchargeRule{StartDate: datePtr(2026, 9, 2), EndDate: datePtr(2026, 9, 2)},
			pickup: wednesday,
			want:   true,
		},
		{
			name:   "outside range does not match",
			rule:   SurchargeRule{StartDate: datePtr(2026, 9, 3), EndDate: datePtr(2026, 9, 4)},
			pickup: wednesday,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.AppliesToDate(tt.pickup))
		})
	}
}

func TestSurchargeRule_Amount(t *testing.T) {
	pct := SurchargeRule{Calculation: CalcPercentage, Percent: 15}
	// Integer division rounds down.
	assert.Equal(t, int64(14925), pct.Amount(99500))
	assert.Equal(t, int64(0), pct.Amount(5))

	fixed := SurchargeRule{Calculation: CalcFixedAmount, FixedAmountCents: 2500}
	assert.Equal(t, int64(2500), fixed.Amount(99500))
}

func TestSurchargeRule_ServiceScope(t *testing.T) {
	scoped := SurchargeRule{ServiceType: ServiceMiniMove}
	assert.True(t, scoped.AppliesToService(ServiceMiniMove))
	assert.False(t, scoped.AppliesToService(ServiceAirportTransfer))

	unscoped := SurchargeRule{}
	assert.True(t, unscoped.AppliesToService(ServiceAirportTransfer))
}

func TestApplicableSurcharges_Accumulate(t *testing.T) {
	saturday := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	rules := []SurchargeRule{
		{
			ID: uuid.New(), Name: "Weekend", Calculation: CalcPercentage, Percent: 15,
			AppliesSaturday: true, Active: true,
		},
		{
			ID: uuid.New(), Name: "Peak date", Calculation: CalcFixedAmount, FixedAmountCents: 2000,
			SpecificDate: datePtr(2026, 9, 5), Active: true,
		},
		{
			ID: uuid.New(), Name: "Inactive", Calculation: CalcFixedAmount, FixedAmountCents: 9999,
			AppliesSaturday: true, Active: false,
		},
		{
			ID: uuid.New(), Name: "Other service", Calculation: CalcFixedAmount, FixedAmountCents: 9999,
			AppliesSaturday: true, ServiceType: ServiceAirportTransfer, Active: true,
		},
	}

	applied := ApplicableSurcharges(rules, ServiceMiniMove, 10000, saturday)
	assert.Len(t, applied, 2)
	assert.Equal(t, int64(1500+2000), EvaluateSurcharges(rules, ServiceMiniMove, 10000, saturday))
}
