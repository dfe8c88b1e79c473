package models

import (
	"fmt"
	"time"
)

// AlertCategory groups alerts by concern.
type AlertCategory string

const (
	CategoryPerformance AlertCategory = "performance"
	CategoryHealth      AlertCategory = "health"
	CategoryFinancial   AlertCategory = "financial"
	CategoryPredictive  AlertCategory = "predictive"
)

// Severity grades how urgently an alert needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// AlertRule identifies the rule that produced an alert.
type AlertRule string

const (
	RuleFCRDegradation   AlertRule = "fcr_degradation"
	RuleMortalityRisk    AlertRule = "mortality_risk"
	RuleWaterQuality     AlertRule = "water_quality"
	RuleCostOverrun      AlertRule = "cost_overrun"
	RuleHarvestReadiness AlertRule = "harvest_readiness"
)

// RecommendedAction is an enumerable recommendation with its default wording.
type RecommendedAction struct {
	Code string `bson:"code" json:"code"`
	Text string `bson:"text" json:"text"`
}

// PredictiveAlert is a graded warning raised before a threshold is breached.
type PredictiveAlert struct {
	ID              string              `bson:"_id" json:"id"`
	FarmID          string              `bson:"farm_id" json:"farm_id"`
	UnitID          string              `bson:"unit_id" json:"unit_id"`
	Rule            AlertRule           `bson:"rule" json:"rule"`
	Category        AlertCategory       `bson:"category" json:"category"`
	Severity        Severity            `bson:"severity" json:"severity"`
	Title           string              `bson:"title" json:"title"`
	Message         string              `bson:"message" json:"message"`
	Actions         []RecommendedAction `bson:"actions" json:"actions"`
	Confidence      float64             `bson:"confidence" json:"confidence"`
	Timeframe       string              `bson:"timeframe" json:"timeframe"`
	EstimatedImpact float64             `bson:"estimated_impact" json:"estimated_impact"`
	Status          AlertStatus         `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
	AcknowledgedAt  *time.Time          `bson:"acknowledged_at,omitempty" json:"acknowledged_at,omitempty"`
	ResolvedAt      *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}

// Acknowledge moves an active alert to acknowledged.
func (a *PredictiveAlert) Acknowledge(at time.Time) error {
	if a.Status != AlertActive {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, AlertAcknowledged)
	}
	a.Status = AlertAcknowledged
	a.AcknowledgedAt = &at
	return nil
}

// Resolve moves an acknowledged alert to resolved.
func (a *PredictiveAlert) Resolve(at time.Time) error {
	if a.Status != AlertAcknowledged {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, AlertResolved)
	}
	a.Status = AlertResolved
	a.ResolvedAt = &at
	return nil
}
