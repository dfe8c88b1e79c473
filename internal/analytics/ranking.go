package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// ScoredUnit pairs a snapshot with its performance score.
type ScoredUnit struct {
	Snapshot models.MetricsSnapshot
	Score    int
}

// Strength and improvement tags, in the order they are reported.
const (
	TagExcellentFCR     = "excellent FCR"
	TagLowMortality     = "very low mortality"
	TagFastGrowth       = "fast growth"
	TagExcellentOverall = "excellent overall performance"
	TagOptimizeFeed     = "optimize feed efficiency"
	TagReduceMortality  = "reduce mortality"
	TagAccelerateGrowth = "accelerate growth"
	TagControlCosts     = "control production costs"
)

// singleUnitPercentile is reported when a batch holds a single unit.
const singleUnitPercentile = 100

// Rank orders a batch by score and returns one result per unit, best first.
//
// Equal scores are ordered by unit ID so a batch ranks the same way whatever
// order its units were fetched in.
func Rank(batch []ScoredUnit) []models.ComparisonResult {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ordered := make([]ScoredUnit, n)
	copy(ordered, batch)
	slices.SortStableFunc(ordered, func(a, b ScoredUnit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Snapshot.UnitID, b.Snapshot.UnitID)
	})

	results := make([]models.ComparisonResult, n)
	for i, unit := range ordered {
		rank := i + 1
		results[i] = models.ComparisonResult{
			UnitID:       unit.Snapshot.UnitID,
			Score:        unit.Score,
			Rank:         rank,
			Percentile:   Percentile(rank, n),
			BetterThan:   BetterThan(rank, n),
			Strengths:    StrengthTags(unit.Snapshot, unit.Score),
			Improvements: ImprovementTags(unit.Snapshot),
		}
	}
	return results
}

// Percentile places a rank within a batch of n units. A batch of one reports
// singleUnitPercentile.
func Percentile(rank, n int) int {
	if n <= 1 {
		return singleUnitPercentile
	}
	return int(math.Round(float64(n-rank) / float64(n-1) * 100))
}

// BetterThan is the share of the batch, in percent, ranked below rank.
func BetterThan(rank, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(float64(n-rank) / float64(n) * 100))
}

// StrengthTags lists what a unit does well. Tags are independent. An
// undefined FCR (zero) earns no FCR tag.
func StrengthTags(s models.MetricsSnapshot, score int) []string {
	tags := []string{}
	if s.FCR > 0 && s.FCR <= 1.9 {
		tags = append(tags, TagExcellentFCR)
	}
	if s.MortalityRate <= 3 {
		tags = append(tags, TagLowMortality)
	}
	if s.DailyGrowthGPerDay >= 15 {
		tags = append(tags, TagFastGrowth)
	}
	if score >= 85 {
		tags = append(tags, TagExcellentOverall)
	}
	return tags
}

// ImprovementTags lists where a unit should improve. Tags are independent.
func ImprovementTags(s models.MetricsSnapshot) []string {
	tags := []string{}
	if s.FCR > 2.2 {
		tags = append(tags, TagOptimizeFeed)
	}
	if s.MortalityRate > 7 {
		tags = append(tags, TagReduceMortality)
	}
	if s.DailyGrowthGPerDay < 10 {
		tags = append(tags, TagAccelerateGrowth)
	}
	if s.CostPerKg > 4.5 {
		tags = append(tags, TagControlCosts)
	}
	return tags
}

// Benchmark averages the active units of a batch. Without active units every
// figure is zero.
func Benchmark(batch []ScoredUnit) models.Benchmark {
	var (
		b         models.Benchmark
		fcr       float64
		mortality float64
		growth    float64
		score     float64
		bestScore = -1
	)

	for _, unit := range batch {
		s := unit.Snapshot
		if s.Status != models.UnitStatusActive {
			continue
		}
		b.UnitCount++
		fcr += s.FCR
		mortality += s.MortalityRate
		growth += s.DailyGrowthGPerDay
		score += float64(unit.Score)
		b.TotalBiomassKg += s.BiomassKg
		b.TotalPopulation += s.Population

		if unit.Score > bestScore || (unit.Score == bestScore && s.UnitID < b.BestPerformer) {
			bestScore = unit.Score
			b.BestPerformer = s.UnitID
		}
	}

	if b.UnitCount == 0 {
		return models.Benchmark{}
	}

	count := float64(b.UnitCount)
	b.AvgFCR = fcr / count
	b.AvgMortality = mortality / count
	b.AvgGrowth = growth / count
	b.AvgScore = score / count
	return b
}
