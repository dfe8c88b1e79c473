package models

// TrendFamily names a tracked metric family.
type TrendFamily string

// TrendDirection is the sign of a trend once its dead band is applied.
type TrendDirection string

// Trend compares the trailing entries of a series with the entries before them.
type Trend struct {
	Family     TrendFamily    `json:"family"`
	Direction  TrendDirection `json:"direction"`
	Magnitude  float64        `json:"magnitude"`
	Delta      float64        `json:"delta"`
	RecentMean float64        `json:"recent_mean"`
	PriorMean  float64        `json:"prior_mean"`
	RecentSum  float64        `json:"recent_sum"`
	PriorSum   float64        `json:"prior_sum"`
	Points     int            `json:"points"`
}

// TrendSet holds the trends found for one unit. A missing family means there
// was not enough data to tell.
type TrendSet map[TrendFamily]Trend
