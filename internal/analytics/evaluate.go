package analytics

import (
	"time"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// UnitEvaluation is everything the engine derives for one unit in one pass.
type UnitEvaluation struct {
	Unit      models.ProductionUnit
	Snapshot  models.MetricsSnapshot
	Breakdown models.ScoreBreakdown
	Trends    TrendSet
	Alerts    []models.PredictiveAlert
}

// EvaluateUnit runs both branches of the engine for one unit: aggregation and
// scoring, then trend analysis and alerting on the same snapshot.
func EvaluateUnit(unit models.ProductionUnit, records models.UnitRecords, history []models.MetricsSnapshot, params Params, now time.Time) UnitEvaluation {
	snapshot := Aggregate(unit, records, params, now)
	breakdown := ScoreBreakdownFor(snapshot, params.TargetFCR)
	snapshot.Score = breakdown.Score

	trends := AnalyzeUnit(unit, records, history, snapshot, params, now)

	return UnitEvaluation{
		Unit:      unit,
		Snapshot:  snapshot,
		Breakdown: breakdown,
		Trends:    trends,
		Alerts:    GenerateAlerts(unit, snapshot, trends, records, params, now),
	}
}

// CompareBatch ranks the active units among evals and benchmarks them.
func CompareBatch(evals []UnitEvaluation) ([]models.ComparisonResult, models.Benchmark) {
	batch := make([]ScoredUnit, 0, len(evals))
	for _, e := range evals {
		if e.Snapshot.Status != models.UnitStatusActive {
			continue
		}
		batch = append(batch, ScoredUnit{Snapshot: e.Snapshot, Score: e.Snapshot.Score})
	}
	return Rank(batch), Benchmark(batch)
}

// UnitInput is the raw material for evaluating one unit. History holds prior
// snapshots of the unit, oldest first.
type UnitInput struct {
	Unit    models.ProductionUnit    `json:"unit"`
	Records models.UnitRecords       `json:"records"`
	History []models.MetricsSnapshot `json:"history,omitempty"`
}

// EvaluateBatch evaluates every input and compares the active units. The
// report lists snapshots, unit details and alerts in input order.
func EvaluateBatch(farmID string, inputs []UnitInput, params Params, now time.Time) models.BatchReport {
	report := models.BatchReport{
		FarmID:      farmID,
		GeneratedAt: now,
		Snapshots:   make([]models.MetricsSnapshot, 0, len(inputs)),
		Units:       make([]models.UnitDetail, 0, len(inputs)),
		Alerts:      []models.PredictiveAlert{},
	}

	evals := make([]UnitEvaluation, 0, len(inputs))
	for _, in := range inputs {
		eval := EvaluateUnit(in.Unit, in.Records, in.History, params, now)
		evals = append(evals, eval)
		report.Snapshots = append(report.Snapshots, eval.Snapshot)
		report.Units = append(report.Units, models.UnitDetail{
			UnitID:    eval.Snapshot.UnitID,
			Breakdown: eval.Breakdown,
			Trends:    eval.Trends,
		})
		report.Alerts = append(report.Alerts, eval.Alerts...)
	}
	report.Comparisons, report.Benchmark = CompareBatch(evals)
	return report
}
