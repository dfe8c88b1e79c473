package models

import "time"

// UnitStatus is the lifecycle status of a production unit.
type UnitStatus string

const (
	UnitStatusEmpty       UnitStatus = "empty"
	UnitStatusActive      UnitStatus = "active"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// ProductionUnit is one monitored population, e.g. a tank or a pond.
type ProductionUnit struct {
	ID            string     `bson:"_id" json:"id"`
	FarmID        string     `bson:"farm_id" json:"farm_id"`
	Name          string     `bson:"name" json:"name"`
	Species       string     `bson:"species" json:"species"`
	Population    int        `bson:"population" json:"population"`
	AverageMassKg float64    `bson:"average_mass_kg" json:"average_mass_kg"`
	TargetMassKg  float64    `bson:"target_mass_kg,omitempty" json:"target_mass_kg,omitempty"`
	IntroducedAt  time.Time  `bson:"introduced_at" json:"introduced_at"`
	Status        UnitStatus `bson:"status" json:"status"`
}

// IsActive reports whether the unit currently holds a live population.
func (u ProductionUnit) IsActive() bool {
	return u.Status == UnitStatusActive
}

// FeedingRecord captures one feeding session.
type FeedingRecord struct {
	UnitID     string    `json:"unit_id"`
	Date       time.Time `json:"date"`
	QuantityKg float64   `json:"quantity_kg"`
	Appetite   int       `json:"appetite,omitempty"` // 1 (poor) .. 5 (excellent), 0 when not rated
}

// ReadingStatus classifies a water-quality reading.
type ReadingStatus string

const (
	ReadingOptimal  ReadingStatus = "optimal"
	ReadingWarning  ReadingStatus = "warning"
	ReadingCritical ReadingStatus = "critical"
)

// WaterQualityReading captures one water sample. Parameters that were not
// measured are nil.
type WaterQualityReading struct {
	UnitID          string        `json:"unit_id"`
	Date            time.Time     `json:"date"`
	TemperatureC    *float64      `json:"temperature_c,omitempty"`
	PH              *float64      `json:"ph,omitempty"`
	DissolvedOxygen *float64      `json:"dissolved_oxygen,omitempty"` // mg/L
	Turbidity       *float64      `json:"turbidity,omitempty"`
	Status          ReadingStatus `json:"status"`
}

// HealthStatus classifies a health observation.
type HealthStatus string

const (
	HealthNormal  HealthStatus = "normal"
	HealthWarning HealthStatus = "warning"
	HealthAlert   HealthStatus = "alert"
)

// HealthObservation captures mortality and health checks.
type HealthObservation struct {
	UnitID    string       `json:"unit_id"`
	Date      time.Time    `json:"date"`
	Mortality int          `json:"mortality"`
	Cause     string       `json:"cause,omitempty"`
	Status    HealthStatus `json:"status"`
}

// CostEntry captures operating expenses attributed to a unit.
type CostEntry struct {
	UnitID   string    `json:"unit_id"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category,omitempty"`
}

// SaleRecord captures a harvest sale.
type SaleRecord struct {
	UnitID     string    `json:"unit_id"`
	Date       time.Time `json:"date"`
	QuantityKg float64   `json:"quantity_kg"`
	PricePerKg float64   `json:"price_per_kg"`
}

// UnitRecords bundles the raw records of one unit over a date range.
type UnitRecords struct {
	Feedings []FeedingRecord       `json:"feedings,omitempty"`
	Water    []WaterQualityReading `json:"water,omitempty"`
	Health   []HealthObservation   `json:"health,omitempty"`
	Costs    []CostEntry           `json:"costs,omitempty"`
	Sales    []SaleRecord          `json:"sales,omitempty"`
}
