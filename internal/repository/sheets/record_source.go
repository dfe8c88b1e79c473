package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// Sheet ranges holding raw records. Column A is always the unit ID and
// column B the record date (YYYY-MM-DD).
const (
	FeedingRange = "Feeding!A:D" // unit, date, quantity kg, appetite 1-5
	WaterRange   = "Water!A:G"   // unit, date, temperature, pH, oxygen, turbidity, status
	HealthRange  = "Health!A:E"  // unit, date, mortality, cause, status
	CostsRange   = "Costs!A:D"   // unit, date, amount, category
	SalesRange   = "Sales!A:D"   // unit, date, quantity kg, price per kg
)

// RecordSource reads typed raw records of production units out of the spreadsheet.
type RecordSource struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecordSource wires a record source on top of a sheet repository.
func NewRecordSource(repo Repository, logger *zap.Logger) *RecordSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordSource{repo: repo, logger: logger}
}

// FarmRecords returns the records of every unit in unitIDs dated within
// [start, end], both days inclusive. Each range is read once whatever the
// number of units. Rows that cannot be parsed are skipped; units without rows
// get empty records.
func (s *RecordSource) FarmRecords(ctx context.Context, unitIDs []string, start, end time.Time) (map[string]models.UnitRecords, error) {
	if len(unitIDs) == 0 {
		return map[string]models.UnitRecords{}, nil
	}

	f := rowFilter{units: make(map[string]struct{}, len(unitIDs)), from: startOfDay(start), to: end}
	for _, id := range unitIDs {
		f.units[id] = struct{}{}
	}

	var (
		feedings map[string][]models.FeedingRecord
		water    map[string][]models.WaterQualityReading
		health   map[string][]models.HealthObservation
		costs    map[string][]models.CostEntry
		sales    map[string][]models.SaleRecord
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		feedings, err = readRows(ctx, s, FeedingRange, f, parseFeeding)
		return err
	})
	g.Go(func() (err error) {
		water, err = readRows(ctx, s, WaterRange, f, parseWater)
		return err
	})
	g.Go(func() (err error) {
		health, err = readRows(ctx, s, HealthRange, f, parseHealth)
		return err
	})
	g.Go(func() (err error) {
		costs, err = readRows(ctx, s, CostsRange, f, parseCost)
		return err
	})
	g.Go(func() (err error) {
		sales, err = readRows(ctx, s, SalesRange, f, parseSale)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load records of %d units: %w", len(unitIDs), err)
	}

	out := make(map[string]models.UnitRecords, len(unitIDs))
	for _, id := range unitIDs {
		out[id] = models.UnitRecords{
			Feedings: feedings[id],
			Water:    water[id],
			Health:   health[id],
			Costs:    costs[id],
			Sales:    sales[id],
		}
	}
	return out, nil
}

// UnitRecords is FarmRecords for a single unit.
func (s *RecordSource) UnitRecords(ctx context.Context, unitID string, start, end time.Time) (models.UnitRecords, error) {
	records, err := s.FarmRecords(ctx, []string{unitID}, start, end)
	if err != nil {
		return models.UnitRecords{}, fmt.Errorf("load records for unit %s: %w", unitID, err)
	}
	return records[unitID], nil
}

// rowFilter keeps rows of the wanted units dated within [from, to].
type rowFilter struct {
	units    map[string]struct{}
	from, to time.Time
}

func (f rowFilter) wants(unitID string) bool {
	_, ok := f.units[unitID]
	return ok
}

func (f rowFilter) contains(t time.Time) bool {
	return !t.Before(f.from) && !t.After(f.to)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type rowParser[T any] func(unitID string, date time.Time, row []interface{}) (T, error)

func readRows[T any](ctx context.Context, s *RecordSource, sheetRange string, f rowFilter, parse rowParser[T]) (map[string][]T, error) {
	rows, err := s.repo.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]T)
	for i, row := range rows {
		unitID := cell(row, 0)
		if !f.wants(unitID) {
			continue
		}

		date, err := parseDate(cell(row, 1))
		if err != nil {
			s.logger.Debug("skip row with invalid date", zap.String("range", sheetRange), zap.Int("row", i+1), zap.Error(err))
			continue
		}
		if !f.contains(date) {
			continue
		}

		record, err := parse(unitID, date, row)
		if err != nil {
			s.logger.Debug("skip malformed row", zap.String("range", sheetRange), zap.Int("row", i+1), zap.Error(err))
			continue
		}
		out[unitID] = append(out[unitID], record)
	}
	return out, nil
}

func parseFeeding(unitID string, date time.Time, row []interface{}) (models.FeedingRecord, error) {
	qty, err := parseFloat(cell(row, 2))
	if err != nil {
		return models.FeedingRecord{}, fmt.Errorf("quantity: %w", err)
	}

	record := models.FeedingRecord{UnitID: unitID, Date: date, QuantityKg: qty}
	if raw := cell(row, 3); raw != "" {
		if record.Appetite, err = parseInt(raw); err != nil {
			return models.FeedingRecord{}, fmt.Errorf("appetite: %w", err)
		}
	}
	return record, nil
}

func parseWater(unitID string, date time.Time, row []interface{}) (models.WaterQualityReading, error) {
	reading := models.WaterQualityReading{
		UnitID: unitID,
		Date:   date,
		Status: models.ReadingStatus(strings.ToLower(cell(row, 6))),
	}

	fields := []struct {
		name string
		dst  **float64
		col  int
	}{
		{"temperature", &reading.TemperatureC, 2},
		{"ph", &reading.PH, 3},
		{"oxygen", &reading.DissolvedOxygen, 4},
		{"turbidity", &reading.Turbidity, 5},
	}
	for _, f := range fields {
		v, err := parseOptionalFloat(cell(row, f.col))
		if err != nil {
			return models.WaterQualityReading{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return reading, nil
}

func parseHealth(unitID string, date time.Time, row []interface{}) (models.HealthObservation, error) {
	deaths, err := parseInt(cell(row, 2))
	if err != nil {
		return models.HealthObservation{}, fmt.Errorf("mortality: %w", err)
	}
	return models.HealthObservation{
		UnitID:    unitID,
		Date:      date,
		Mortality: deaths,
		Cause:     cell(row, 3),
		Status:    models.HealthStatus(strings.ToLower(cell(row, 4))),
	}, nil
}

func parseCost(unitID string, date time.Time, row []interface{}) (models.CostEntry, error) {
	amount, err := parseFloat(cell(row, 2))
	if err != nil {
		return models.CostEntry{}, fmt.Errorf("amount: %w", err)
	}
	return models.CostEntry{UnitID: unitID, Date: date, Amount: amount, Category: cell(row, 3)}, nil
}

func parseSale(unitID string, date time.Time, row []interface{}) (models.SaleRecord, error) {
	qty, err := parseFloat(cell(row, 2))
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := parseFloat(cell(row, 3))
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("price: %w", err)
	}
	return models.SaleRecord{UnitID: unitID, Date: date, QuantityKg: qty, PricePerKg: price}, nil
}
