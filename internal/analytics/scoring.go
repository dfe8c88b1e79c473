package analytics

import (
	"math"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// Scoring rules. Each term depends on a single metric so every point lost or
// gained can be traced back to it.
const (
	baseScore = 100.0

	fcrPenaltyAbove  = 2.0
	fcrPenaltyRate   = 15.0
	defaultTargetFCR = 1.8
	fcrBonusRate     = 5.0

	mortalityPenaltyAbove = 5.0
	mortalityPenaltyRate  = 3.0

	growthBonusAbove   = 15.0
	growthBonusRate    = 0.5
	growthPenaltyBelow = 10.0
	growthPenaltyRate  = 2.0

	minScore = 0.0
	maxScore = 100.0
)

// Score maps a snapshot to an integer performance score in [0, 100].
func Score(snapshot models.MetricsSnapshot) int {
	return ScoreBreakdown(snapshot).Score
}

// ScoreBreakdown computes the score together with each contributing term,
// rewarding FCR below the default target.
func ScoreBreakdown(snapshot models.MetricsSnapshot) models.ScoreBreakdown {
	return ScoreBreakdownFor(snapshot, defaultTargetFCR)
}

// ScoreBreakdownFor is ScoreBreakdown with the FCR bonus earned below
// targetFCR. A target at or above the penalty threshold, or not positive,
// falls back to the default.
func ScoreBreakdownFor(snapshot models.MetricsSnapshot, targetFCR float64) models.ScoreBreakdown {
	if !(targetFCR > 0 && targetFCR <= fcrPenaltyAbove) {
		targetFCR = defaultTargetFCR
	}
	b := models.ScoreBreakdown{Base: baseScore}

	fcr := snapshot.FCR
	if fcr > fcrPenaltyAbove {
		b.FCRPenalty = (fcr - fcrPenaltyAbove) * fcrPenaltyRate
	}
	if fcr < targetFCR {
		b.FCRBonus = (targetFCR - fcr) * fcrBonusRate
	}

	if snapshot.MortalityRate > mortalityPenaltyAbove {
		b.MortalityPenalty = (snapshot.MortalityRate - mortalityPenaltyAbove) * mortalityPenaltyRate
	}

	growth := snapshot.DailyGrowthGPerDay
	if growth > growthBonusAbove {
		b.GrowthBonus = (growth - growthBonusAbove) * growthBonusRate
	}
	if growth < growthPenaltyBelow {
		b.GrowthPenalty = (growthPenaltyBelow - growth) * growthPenaltyRate
	}

	b.Raw = b.Base - b.FCRPenalty + b.FCRBonus - b.MortalityPenalty + b.GrowthBonus - b.GrowthPenalty
	b.Score = clampScore(b.Raw)
	return b
}

func clampScore(raw float64) int {
	if math.IsNaN(raw) {
		return int(minScore)
	}
	return int(math.Round(math.Min(maxScore, math.Max(minScore, raw))))
}
