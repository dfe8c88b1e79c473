package analytics

import (
	"math"
	"time"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

const day = 24 * time.Hour

// Aggregate derives a metrics snapshot for one unit from its static fields
// and the records of the recent window ending at now.
//
// Malformed values never fail the pass: negative or non-finite population or
// mass count as zero, and records that are negative, non-finite, undated,
// foreign to the unit or outside the window are left out of every sum.
func Aggregate(unit models.ProductionUnit, records models.UnitRecords, params Params, now time.Time) models.MetricsSnapshot {
	population := max(unit.Population, 0)
	avgMass := 0.0
	if nonNegative(unit.AverageMassKg) {
		avgMass = unit.AverageMassKg
	}

	snapshot := models.MetricsSnapshot{
		UnitID:        unit.ID,
		FarmID:        unit.FarmID,
		Status:        unit.Status,
		TakenAt:       now,
		DaysInCycle:   DaysInCycle(unit.IntroducedAt, now),
		Population:    population,
		AverageMassKg: avgMass,
		BiomassKg:     float64(population) * avgMass,
	}

	if snapshot.DaysInCycle > 0 {
		snapshot.DailyGrowthGPerDay = ((avgMass - params.JuvenileMassKg) / float64(snapshot.DaysInCycle)) * 1000
	}

	window := newWindow(unit.ID, now, params.windowDays())

	feedKg := 0.0
	for _, f := range records.Feedings {
		if window.contains(f.UnitID, f.Date) && nonNegative(f.QuantityKg) {
			feedKg += f.QuantityKg
		}
	}

	costs := 0.0
	for _, c := range records.Costs {
		if window.contains(c.UnitID, c.Date) && nonNegative(c.Amount) {
			costs += c.Amount
		}
	}

	deaths := 0
	for _, h := range records.Health {
		if window.contains(h.UnitID, h.Date) && h.Mortality >= 0 {
			deaths += h.Mortality
		}
	}

	effectiveDays := min(params.windowDays(), snapshot.DaysInCycle)
	gainedKg := float64(population) * (snapshot.DailyGrowthGPerDay / 1000) * float64(effectiveDays)
	if gainedKg > 0 {
		snapshot.FCR = feedKg / gainedKg
	}
	snapshot.FeedEfficiencyIndex = FeedEfficiencyIndex(snapshot.FCR)

	if denominator := population + deaths; denominator > 0 {
		snapshot.MortalityRate = float64(deaths) / float64(denominator) * 100
	}

	if snapshot.BiomassKg > 0 {
		snapshot.CostPerKg = (costs + feedKg*params.FeedUnitPrice) / snapshot.BiomassKg
	}

	return snapshot
}

// nonNegative reports whether v is a finite measurement of zero or more.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// finite rejects NaN and both infinities.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DaysInCycle counts whole days since introduction, never negative.
func DaysInCycle(introducedAt, now time.Time) int {
	if introducedAt.IsZero() || !now.After(introducedAt) {
		return 0
	}
	return int(now.Sub(introducedAt) / day)
}

// FeedEfficiencyIndex is the inverse of FCR scaled to 100; 0 when FCR is undefined.
func FeedEfficiencyIndex(fcr float64) float64 {
	if fcr <= 0 {
		return 0
	}
	return (1 / fcr) * 100
}

// recordWindow filters records to one unit and a date range.
type recordWindow struct {
	unitID string
	start  time.Time
	end    time.Time
}

func newWindow(unitID string, now time.Time, days int) recordWindow {
	return recordWindow{
		unitID: unitID,
		start:  now.Add(-time.Duration(days) * day),
		end:    now,
	}
}

// contains accepts records without a unit ID as belonging to the unit, since
// record sources queried per unit may omit it.
func (w recordWindow) contains(unitID string, date time.Time) bool {
	if date.IsZero() {
		return false
	}
	if unitID != "" && unitID != w.unitID {
		return false
	}
	return !date.Before(w.start) && !date.After(w.end)
}
