package models

import "time"

// MetricsSnapshot is the derived, point-in-time view of one production unit.
// Snapshots are never updated; each aggregation pass stores a new one.
type MetricsSnapshot struct {
	UnitID              string     `bson:"unit_id" json:"unit_id"`
	FarmID              string     `bson:"farm_id" json:"farm_id"`
	Status              UnitStatus `bson:"status" json:"status"`
	TakenAt             time.Time  `bson:"taken_at" json:"taken_at"`
	DaysInCycle         int        `bson:"days_in_cycle" json:"days_in_cycle"`
	Population          int        `bson:"population" json:"population"`
	AverageMassKg       float64    `bson:"average_mass_kg" json:"average_mass_kg"`
	DailyGrowthGPerDay  float64    `bson:"daily_growth_g_per_day" json:"daily_growth_g_per_day"`
	BiomassKg           float64    `bson:"biomass_kg" json:"biomass_kg"`
	FCR                 float64    `bson:"fcr" json:"fcr"`
	FeedEfficiencyIndex float64    `bson:"feed_efficiency_index" json:"feed_efficiency_index"`
	MortalityRate       float64    `bson:"mortality_rate" json:"mortality_rate"`
	CostPerKg           float64    `bson:"cost_per_kg" json:"cost_per_kg"`
	Score               int        `bson:"score" json:"score"`
}

// ScoreBreakdown lists each term that moved a score away from 100.
type ScoreBreakdown struct {
	Base             float64 `json:"base"`
	FCRPenalty       float64 `json:"fcr_penalty"`
	FCRBonus         float64 `json:"fcr_bonus"`
	MortalityPenalty float64 `json:"mortality_penalty"`
	GrowthBonus      float64 `json:"growth_bonus"`
	GrowthPenalty    float64 `json:"growth_penalty"`
	Raw              float64 `json:"raw"`
	Score            int     `json:"score"`
}

// ComparisonResult is the standing of one unit within a comparison batch.
type ComparisonResult struct {
	UnitID       string   `json:"unit_id"`
	Score        int      `json:"score"`
	Rank         int      `json:"rank"`
	Percentile   int      `json:"percentile"`
	BetterThan   int      `json:"better_than"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Benchmark aggregates the active units of one batch.
type Benchmark struct {
	UnitCount       int     `json:"unit_count"`
	AvgFCR          float64 `json:"avg_fcr"`
	AvgMortality    float64 `json:"avg_mortality"`
	AvgGrowth       float64 `json:"avg_growth"`
	AvgScore        float64 `json:"avg_score"`
	BestPerformer   string  `json:"best_performer,omitempty"`
	TotalBiomassKg  float64 `json:"total_biomass_kg"`
	TotalPopulation int     `json:"total_population"`
}

// UnitFailure records a unit that could not be evaluated in a batch.
type UnitFailure struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

// UnitDetail carries what a unit's score and alerts were derived from.
type UnitDetail struct {
	UnitID    string         `json:"unit_id"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Trends    TrendSet       `json:"trends"`
}

// BatchReport is the output of one evaluation pass over a farm.
type BatchReport struct {
	FarmID      string             `json:"farm_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Snapshots   []MetricsSnapshot  `json:"snapshots"`
	Units       []UnitDetail       `json:"units"`
	Comparisons []ComparisonResult `json:"comparisons"`
	Benchmark   Benchmark          `json:"benchmark"`
	Alerts      []PredictiveAlert  `json:"alerts"`
	Failures    []UnitFailure      `json:"failures,omitempty"`
}
