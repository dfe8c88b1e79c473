package analytics

import (
	"math"
	"slices"
	"time"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// Family is a tracked metric family.
type Family = models.TrendFamily

const (
	FamilyFCR         Family = "fcr"
	FamilyMortality   Family = "mortality"
	FamilyTemperature Family = "temperature"
	FamilyOxygen      Family = "oxygen"
	FamilyCost        Family = "cost"
	FamilyGrowth      Family = "growth"
)

// Direction is the sign of a trend once the dead-band is applied.
type Direction = models.TrendDirection

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// minTrendPoints is the shortest series that yields a trend.
const minTrendPoints = 3

type familySpec struct {
	recent   int
	deadBand float64
	relative bool // deadBand is a fraction of the prior mean
}

var familySpecs = map[Family]familySpec{
	FamilyFCR:         {recent: 3, deadBand: 0.1},
	FamilyMortality:   {recent: 3, deadBand: 3},
	FamilyTemperature: {recent: 3, deadBand: 2},
	FamilyOxygen:      {recent: 3, deadBand: 1},
	FamilyCost:        {recent: 3, deadBand: 0.1, relative: true},
	FamilyGrowth:      {recent: 3, deadBand: 1},
}

// Trend types are shared with the report models.
type (
	Trend    = models.Trend
	TrendSet = models.TrendSet
)

// AnalyzeSeries splits a chronological series into prior and recent parts and
// classifies the change between their means. It reports false when the
// series is too short.
func AnalyzeSeries(family Family, values []float64) (Trend, bool) {
	if len(values) < minTrendPoints {
		return Trend{}, false
	}

	spec, ok := familySpecs[family]
	if !ok {
		spec = familySpec{recent: minTrendPoints}
	}
	recentSize := min(spec.recent, len(values)-1)
	split := len(values) - recentSize

	t := Trend{Family: family, Points: len(values)}
	t.PriorSum = sum(values[:split])
	t.RecentSum = sum(values[split:])
	t.PriorMean = t.PriorSum / float64(split)
	t.RecentMean = t.RecentSum / float64(recentSize)
	t.Delta = t.RecentMean - t.PriorMean
	t.Magnitude = math.Abs(t.Delta)

	band := spec.deadBand
	if spec.relative {
		band = spec.deadBand * math.Abs(t.PriorMean)
	}
	t.Direction = classify(t.Delta, band)

	return t, true
}

func classify(delta, band float64) Direction {
	switch {
	case delta > band:
		return DirectionIncreasing
	case delta < -band:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

// AnalyzeUnit builds every family series for one unit and analyzes them.
// history holds the unit's previous snapshots, oldest first.
func AnalyzeUnit(unit models.ProductionUnit, records models.UnitRecords, history []models.MetricsSnapshot, snapshot models.MetricsSnapshot, params Params, now time.Time) TrendSet {
	window := newWindow(unit.ID, now, params.windowDays())
	trends := TrendSet{}

	add := func(family Family, values []float64) {
		if t, ok := AnalyzeSeries(family, values); ok {
			trends[family] = t
		}
	}

	add(FamilyFCR, fcrSeries(records.Feedings, snapshot, window))
	add(FamilyMortality, mortalitySeries(records.Health, window))
	add(FamilyTemperature, readingSeries(records.Water, window, func(r models.WaterQualityReading) *float64 { return r.TemperatureC }))
	add(FamilyOxygen, readingSeries(records.Water, window, func(r models.WaterQualityReading) *float64 { return r.DissolvedOxygen }))
	add(FamilyCost, costSeries(records.Costs, window))
	add(FamilyGrowth, growthSeries(unit, history, snapshot, params))

	return trends
}

// fcrSeries divides each day's feed by the biomass the unit gains per day.
func fcrSeries(feedings []models.FeedingRecord, snapshot models.MetricsSnapshot, window recordWindow) []float64 {
	dailyGainKg := float64(snapshot.Population) * snapshot.DailyGrowthGPerDay / 1000
	if dailyGainKg <= 0 {
		return nil
	}

	bins := dailyBins{}
	for _, f := range feedings {
		if window.contains(f.UnitID, f.Date) && nonNegative(f.QuantityKg) {
			bins.add(f.Date, f.QuantityKg)
		}
	}

	feed := bins.values()
	series := make([]float64, len(feed))
	for i, kg := range feed {
		series[i] = kg / dailyGainKg
	}
	return series
}

func mortalitySeries(observations []models.HealthObservation, window recordWindow) []float64 {
	kept := make([]models.HealthObservation, 0, len(observations))
	for _, h := range observations {
		if window.contains(h.UnitID, h.Date) && h.Mortality >= 0 {
			kept = append(kept, h)
		}
	}
	slices.SortStableFunc(kept, func(a, b models.HealthObservation) int { return a.Date.Compare(b.Date) })

	series := make([]float64, len(kept))
	for i, h := range kept {
		series[i] = float64(h.Mortality)
	}
	return series
}

func readingSeries(readings []models.WaterQualityReading, window recordWindow, value func(models.WaterQualityReading) *float64) []float64 {
	kept := windowReadings(readings, window)
	series := make([]float64, 0, len(kept))
	for _, r := range kept {
		if v := value(r); v != nil && finite(*v) {
			series = append(series, *v)
		}
	}
	return series
}

func costSeries(costs []models.CostEntry, window recordWindow) []float64 {
	bins := dailyBins{}
	for _, c := range costs {
		if window.contains(c.UnitID, c.Date) && nonNegative(c.Amount) {
			bins.add(c.Date, c.Amount)
		}
	}
	return bins.values()
}

// growthSeries tracks average mass as a percentage of the harvest target
// across stored snapshots and the current one.
func growthSeries(unit models.ProductionUnit, history []models.MetricsSnapshot, snapshot models.MetricsSnapshot, params Params) []float64 {
	target := targetMass(unit, params)
	if target <= 0 || len(history) == 0 {
		return nil
	}

	series := make([]float64, 0, len(history)+1)
	for _, h := range history {
		if h.UnitID != unit.ID || !nonNegative(h.AverageMassKg) {
			continue
		}
		series = append(series, h.AverageMassKg/target*100)
	}
	return append(series, snapshot.AverageMassKg/target*100)
}

// windowReadings returns the unit's readings inside the window, oldest first.
func windowReadings(readings []models.WaterQualityReading, window recordWindow) []models.WaterQualityReading {
	kept := make([]models.WaterQualityReading, 0, len(readings))
	for _, r := range readings {
		if window.contains(r.UnitID, r.Date) {
			kept = append(kept, r)
		}
	}
	slices.SortStableFunc(kept, func(a, b models.WaterQualityReading) int { return a.Date.Compare(b.Date) })
	return kept
}

func targetMass(unit models.ProductionUnit, params Params) float64 {
	if unit.TargetMassKg > 0 {
		return unit.TargetMassKg
	}
	return params.TargetMassKg
}

// dailyBins sums values per calendar day.
type dailyBins map[time.Time]float64

func (d dailyBins) add(at time.Time, v float64) {
	y, m, dd := at.Date()
	d[time.Date(y, m, dd, 0, 0, 0, 0, at.Location())] += v
}

// values returns the daily totals in chronological order.
func (d dailyBins) values() []float64 {
	days := make([]time.Time, 0, len(d))
	for k := range d {
		days = append(days, k)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	out := make([]float64, len(days))
	for i, k := range days {
		out[i] = d[k]
	}
	return out
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
