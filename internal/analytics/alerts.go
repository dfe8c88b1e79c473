package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// Alert thresholds.
const (
	fcrAlertThreshold     = 2.3
	fcrHighThreshold      = 2.5
	fcrBaseline           = 2.0
	fcrDegradationRatio   = 1.1
	mortalityDeltaTrigger = 3.0
	mortalityAlertObs     = 2
	mortalityRecentFloor  = 5.0
	mortalityCritical     = 15.0
	mortalityHigh         = 8.0
	tempDeltaTrigger      = 2.0
	oxygenDropTrigger     = -1.0
	oxygenCriticalMgL     = 5.0
	waterProblemTrigger   = 0.4
	waterProblemCritical  = 0.6
	costAlertThreshold    = 4.5
	costHighThreshold     = 6.0
	costBaseline          = 4.0
	harvestReadyRatio     = 0.9
)

// Recommended actions attached to each rule. Codes are stable so a phrasing
// collaborator can localize them.
var ruleActions = map[models.AlertRule][]models.RecommendedAction{
	models.RuleFCRDegradation: {
		{Code: "review_feed_ration", Text: "Review the daily feed ration against current biomass"},
		{Code: "check_feed_quality", Text: "Check feed quality and storage conditions"},
		{Code: "observe_appetite", Text: "Observe appetite at each feeding and reduce uneaten feed"},
	},
	models.RuleMortalityRisk: {
		{Code: "inspect_stock", Text: "Inspect the stock for disease symptoms"},
		{Code: "isolate_affected", Text: "Isolate affected individuals where possible"},
		{Code: "contact_veterinarian", Text: "Contact a veterinarian for diagnosis"},
		{Code: "verify_water_quality", Text: "Verify water quality parameters"},
	},
	models.RuleWaterQuality: {
		{Code: "increase_aeration", Text: "Increase aeration to restore dissolved oxygen"},
		{Code: "partial_water_exchange", Text: "Perform a partial water exchange"},
		{Code: "reduce_feeding", Text: "Reduce feeding until parameters stabilize"},
		{Code: "retest_water", Text: "Re-test water within 12 hours"},
	},
	models.RuleCostOverrun: {
		{Code: "audit_expenses", Text: "Audit recent expenses for this unit"},
		{Code: "optimize_feed_cost", Text: "Compare feed suppliers and prices"},
		{Code: "review_stocking_density", Text: "Review stocking density against production targets"},
	},
	models.RuleHarvestReadiness: {
		{Code: "plan_harvest", Text: "Plan the harvest date and logistics"},
		{Code: "contact_buyers", Text: "Contact buyers to secure sale prices"},
		{Code: "fast_before_harvest", Text: "Schedule pre-harvest fasting"},
	},
}

// ruleOrder keeps alerts of equal severity in a fixed order.
var ruleOrder = map[models.AlertRule]int{
	models.RuleMortalityRisk:    0,
	models.RuleWaterQuality:     1,
	models.RuleFCRDegradation:   2,
	models.RuleCostOverrun:      3,
	models.RuleHarvestReadiness: 4,
}

// GenerateAlerts applies every alert rule to one unit. Rules are independent;
// each can emit at most one alert. The result is ordered by severity, most
// severe first.
func GenerateAlerts(unit models.ProductionUnit, snapshot models.MetricsSnapshot, trends TrendSet, records models.UnitRecords, params Params, now time.Time) []models.PredictiveAlert {
	window := newWindow(unit.ID, now, params.windowDays())
	salePrice := salePricePerKg(records.Sales, window, params)

	var alerts []models.PredictiveAlert
	for _, rule := range []func() (models.PredictiveAlert, bool){
		func() (models.PredictiveAlert, bool) { return fcrAlert(snapshot, trends, params) },
		func() (models.PredictiveAlert, bool) {
			return mortalityAlert(snapshot, trends, records.Health, window, salePrice)
		},
		func() (models.PredictiveAlert, bool) { return waterAlert(trends, records.Water, window) },
		func() (models.PredictiveAlert, bool) { return costAlert(snapshot) },
		func() (models.PredictiveAlert, bool) { return harvestAlert(unit, snapshot, params, salePrice) },
	} {
		alert, ok := rule()
		if !ok {
			continue
		}
		alert.ID = uuid.NewString()
		alert.FarmID = unit.FarmID
		alert.UnitID = unit.ID
		alert.Actions = slices.Clone(ruleActions[alert.Rule])
		alert.Status = models.AlertActive
		alert.CreatedAt = now
		alerts = append(alerts, alert)
	}

	slices.SortStableFunc(alerts, func(a, b models.PredictiveAlert) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(ruleOrder[a.Rule], ruleOrder[b.Rule])
	})
	return alerts
}

func fcrAlert(snapshot models.MetricsSnapshot, trends TrendSet, params Params) (models.PredictiveAlert, bool) {
	t, ok := trends[FamilyFCR]
	if !ok {
		return models.PredictiveAlert{}, false
	}

	// Daily feed over daily gain equals extrapolated weekly feed over weekly growth.
	projected := t.RecentMean
	current := snapshot.FCR
	if projected <= fcrAlertThreshold || projected < current*fcrDegradationRatio {
		return models.PredictiveAlert{}, false
	}

	severity := models.SeverityMedium
	if projected > fcrHighThreshold {
		severity = models.SeverityHigh
	}

	dailyGainKg := float64(snapshot.Population) * snapshot.DailyGrowthGPerDay / 1000
	recentFeedKg := t.RecentSum * dailyGainKg

	return models.PredictiveAlert{
		Rule:            models.RuleFCRDegradation,
		Category:        models.CategoryPerformance,
		Severity:        severity,
		Title:           "Feed conversion is degrading",
		Message:         fmt.Sprintf("Projected FCR %.2f against current %.2f; feed is turning into less growth.", projected, current),
		Confidence:      math.Min(0.85, math.Max(0.6, 1-math.Abs(projected-current)/2)),
		Timeframe:       "next 7 days",
		EstimatedImpact: round2((projected - fcrBaseline) * recentFeedKg * params.FeedUnitPrice),
	}, true
}

func mortalityAlert(snapshot models.MetricsSnapshot, trends TrendSet, observations []models.HealthObservation, window recordWindow, salePrice float64) (models.PredictiveAlert, bool) {
	alertCount := 0
	windowDeaths := 0.0
	windowObs := 0
	for _, h := range observations {
		if !window.contains(h.UnitID, h.Date) || h.Mortality < 0 {
			continue
		}
		windowObs++
		windowDeaths += float64(h.Mortality)
		if h.Status == models.HealthAlert {
			alertCount++
		}
	}

	t, hasTrend := trends[FamilyMortality]
	recentDeaths, recentMean := windowDeaths, 0.0
	if hasTrend {
		recentDeaths, recentMean = t.RecentSum, t.RecentMean
	} else if windowObs > 0 {
		recentMean = windowDeaths / float64(windowObs)
	}

	rising := hasTrend && t.Delta > mortalityDeltaTrigger
	flagged := alertCount >= mortalityAlertObs && recentDeaths > mortalityRecentFloor
	if !rising && !flagged {
		return models.PredictiveAlert{}, false
	}

	projectedWeekly := recentMean * 7
	severity, timeframe := models.SeverityMedium, "next 7 days"
	switch {
	case projectedWeekly > mortalityCritical:
		severity, timeframe = models.SeverityCritical, "next 72 hours"
	case projectedWeekly > mortalityHigh:
		severity = models.SeverityHigh
	}

	return models.PredictiveAlert{
		Rule:            models.RuleMortalityRisk,
		Category:        models.CategoryHealth,
		Severity:        severity,
		Title:           "Mortality risk rising",
		Message:         fmt.Sprintf("About %.0f deaths projected over the next week (%d alert observations in the window).", projectedWeekly, alertCount),
		Confidence:      math.Min(0.9, 0.7+float64(alertCount)*0.1),
		Timeframe:       timeframe,
		EstimatedImpact: round2(projectedWeekly * snapshot.AverageMassKg * salePrice),
	}, true
}

func waterAlert(trends TrendSet, readings []models.WaterQualityReading, window recordWindow) (models.PredictiveAlert, bool) {
	kept := windowReadings(readings, window)
	if len(kept) < minTrendPoints {
		return models.PredictiveAlert{}, false
	}

	problems := 0
	for _, r := range kept {
		if r.Status == models.ReadingWarning || r.Status == models.ReadingCritical {
			problems++
		}
	}
	fraction := float64(problems) / float64(len(kept))

	temp, hasTemp := trends[FamilyTemperature]
	oxygen, hasOxygen := trends[FamilyOxygen]

	tempSwing := hasTemp && temp.Magnitude > tempDeltaTrigger
	oxygenDrop := hasOxygen && oxygen.Delta < oxygenDropTrigger
	if !tempSwing && !oxygenDrop && fraction <= waterProblemTrigger {
		return models.PredictiveAlert{}, false
	}

	severity, timeframe := models.SeverityMedium, "next 48 hours"
	switch {
	case fraction > waterProblemCritical || (hasOxygen && oxygen.RecentMean < oxygenCriticalMgL):
		severity, timeframe = models.SeverityCritical, "next 24 hours"
	case fraction > waterProblemTrigger:
		severity = models.SeverityHigh
	}

	message := fmt.Sprintf("%.0f%% of recent readings are outside the optimal range.", fraction*100)
	if tempSwing {
		message += fmt.Sprintf(" Temperature moved %.1f°C.", temp.Delta)
	}
	if oxygenDrop {
		message += fmt.Sprintf(" Dissolved oxygen fell %.1f mg/L.", -oxygen.Delta)
	}

	return models.PredictiveAlert{
		Rule:       models.RuleWaterQuality,
		Category:   models.CategoryHealth,
		Severity:   severity,
		Title:      "Water quality degrading",
		Message:    message,
		Confidence: math.Min(0.85, 0.6+fraction),
		Timeframe:  timeframe,
	}, true
}

func costAlert(snapshot models.MetricsSnapshot) (models.PredictiveAlert, bool) {
	if snapshot.CostPerKg <= costAlertThreshold {
		return models.PredictiveAlert{}, false
	}

	severity := models.SeverityMedium
	if snapshot.CostPerKg > costHighThreshold {
		severity = models.SeverityHigh
	}

	return models.PredictiveAlert{
		Rule:            models.RuleCostOverrun,
		Category:        models.CategoryFinancial,
		Severity:        severity,
		Title:           "Production cost above target",
		Message:         fmt.Sprintf("Cost per kg is %.2f, above the %.2f limit.", snapshot.CostPerKg, costAlertThreshold),
		Confidence:      0.8,
		Timeframe:       "current cycle",
		EstimatedImpact: round2((snapshot.CostPerKg - costBaseline) * snapshot.BiomassKg),
	}, true
}

func harvestAlert(unit models.ProductionUnit, snapshot models.MetricsSnapshot, params Params, salePrice float64) (models.PredictiveAlert, bool) {
	target := targetMass(unit, params)
	if target <= 0 || snapshot.AverageMassKg < harvestReadyRatio*target {
		return models.PredictiveAlert{}, false
	}

	reached := snapshot.AverageMassKg >= target
	severity, confidence, timeframe := models.SeverityLow, 0.8, "next 14 days"
	title := "Approaching harvest weight"
	if reached {
		severity, confidence, timeframe = models.SeverityMedium, 0.95, "now"
		title = "Harvest weight reached"
	}

	return models.PredictiveAlert{
		Rule:            models.RuleHarvestReadiness,
		Category:        models.CategoryPredictive,
		Severity:        severity,
		Title:           title,
		Message:         fmt.Sprintf("Average mass %.2f kg of %.2f kg target (%.0f%%).", snapshot.AverageMassKg, target, snapshot.AverageMassKg/target*100),
		Confidence:      confidence,
		Timeframe:       timeframe,
		EstimatedImpact: round2(float64(snapshot.Population) * snapshot.AverageMassKg * salePrice),
	}, true
}

// salePricePerKg prefers the mean price of recent sales over the configured one.
func salePricePerKg(sales []models.SaleRecord, window recordWindow, params Params) float64 {
	total, count := 0.0, 0
	for _, s := range sales {
		if window.contains(s.UnitID, s.Date) && s.PricePerKg > 0 && finite(s.PricePerKg) {
			total += s.PricePerKg
			count++
		}
	}
	if count == 0 {
		return params.SalePricePerKg
	}
	return total / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
