package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SurchargeType classifies why a date-based surcharge applies.
type SurchargeType string

const (
	SurchargeWeekend  SurchargeType = "weekend"
	SurchargeHoliday  SurchargeType = "holiday"
	SurchargePeakDate SurchargeType = "peak_date"
)

// CalculationType determines how a surcharge amount is derived.
type CalculationType string

const (
	CalcPercentage  CalculationType = "percentage"
	CalcFixedAmount CalculationType = "fixed_amount"
)

// SurchargeRule is a date- or weekday-triggered price addition. A rule
// matches on exactly one of: a specific date, an inclusive date range,
// or Saturday/Sunday flags. Rules scoped to a service type only apply
// to bookings of that type; an empty scope applies to all.
type SurchargeRule struct {
	ID               uuid.UUID
	Name             string
	Type             SurchargeType
	Calculation      CalculationType
	Percent          int64
	FixedAmountCents int64
	SpecificDate     *time.Time
	StartDate        *time.Time
	EndDate          *time.Time
	AppliesSaturday  bool
	AppliesSunday    bool
	ServiceType      ServiceType // empty = all services
	Active           bool
}

// AppliesToDate reports whether the rule matches the given pickup date.
// Only the date portion is considered; times are ignored.
func (r SurchargeRule) AppliesToDate(pickup time.Time) bool {
	day := truncateToDay(pickup)

	if r.SpecificDate != nil && truncateToDay(*r.SpecificDate).Equal(day) {
		return true
	}
	if r.StartDate != nil && r.EndDate != nil {
		start := truncateToDay(*r.StartDate)
		end := truncateToDay(*r.EndDate)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}
	switch pickup.Weekday() {
	case time.Saturday:
		if r.AppliesSaturday {
			return true
		}
	case time.Sunday:
		if r.AppliesSunday {
			return true
		}
	}
	return false
}

// AppliesToService reports whether the rule is in scope for the service type.
func (r SurchargeRule) AppliesToService(st ServiceType) bool {
	return r.ServiceType == "" || r.ServiceType == st
}

// Amount computes the surcharge in cents for the given base amount.
// Percentage amounts round down.
func (r SurchargeRule) Amount(baseCents int64) int64 {
	switch r.Calculation {
	case CalcPercentage:
		return baseCents * r.Percent / 100
	case CalcFixedAmount:
		return r.FixedAmountCents
	}
	return 0
}

// AppliedSurcharge pairs a matched rule with the amount it contributes.
type AppliedSurcharge struct {
	Rule        SurchargeRule
	AmountCents int64
}

// ApplicableSurcharges returns every active rule matching the pickup
// date and service type, with its computed amount. Rules accumulate
// additively; there is no implicit mutual exclusion between weekend,
// holiday and peak-date rules.
func ApplicableSurcharges(rules []SurchargeRule, st ServiceType, baseCents int64, pickup time.Time) []AppliedSurcharge {
	var applied []AppliedSurcharge
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if !r.AppliesToService(st) {
			continue
		}
		if r.AppliesToDate(pickup) {
			applied = append(applied, AppliedSurcharge{Rule: r, AmountCents: r.Amount(baseCents)})
		}
	}
	return applied
}

// EvaluateSurcharges sums all applicable surcharges for the pickup date.
func EvaluateSurcharges(rules []SurchargeRule, st ServiceType, baseCents int64, pickup time.Time) int64 {
	var total int64
	for _, a := range ApplicableSurcharges(rules, st, baseCents, pickup) {
		total += a.AmountCents
	}
	return total
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
