// Package analytics turns raw operational records into per-unit metrics,
// scores, rankings, trends and predictive alerts.
//
// Every function in this package is pure: inputs are explicit arguments and
// nothing is read from or written to shared state, so callers may evaluate
// farms and units concurrently.
package analytics

import "time"

// Params holds the farm-specific constants injected into the engine.
type Params struct {
	TargetFCR        float64 // kg feed per kg gained
	TargetMassKg     float64 // harvest mass used when a unit has none of its own
	JuvenileMassKg   float64 // assumed mass at introduction
	FeedUnitPrice    float64 // price per kg of feed
	SalePricePerKg   float64 // fallback sale price when no recent sales exist
	RecentWindowDays int
}

// DefaultParams returns the constants used when a farm configures nothing.
func DefaultParams() Params {
	return Params{
		TargetFCR:        1.8,
		TargetMassKg:     1.0,
		JuvenileMassKg:   0.05,
		FeedUnitPrice:    1.2,
		SalePricePerKg:   6.0,
		RecentWindowDays: 30,
	}
}

func (p Params) windowDays() int {
	if p.RecentWindowDays <= 0 {
		return 30
	}
	return p.RecentWindowDays
}

// WindowStart is the start of the recent window ending at now. Record
// sources should return at least the records dated from there to now.
func (p Params) WindowStart(now time.Time) time.Time {
	return now.Add(-time.Duration(p.windowDays()) * day)
}
