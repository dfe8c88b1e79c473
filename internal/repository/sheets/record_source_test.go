package sheets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

type fakeRepository struct {
	ranges map[string][][]interface{}
	err    error

	mu    sync.Mutex
	reads map[string]int
}

func (f *fakeRepository) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	f.mu.Lock()
	if f.reads == nil {
		f.reads = map[string]int{}
	}
	f.reads[sheetRange]++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.ranges[sheetRange], nil
}

func day(d int) time.Time {
	return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestUnitRecords(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		FeedingRange: {
			{"unit_id", "date", "quantity_kg", "appetite"},
			{"T1", "2026-06-10", "12.5", "4"},
			{"T1", "2026-06-11T08:00:00", "11"},
			{"T2", "2026-06-11", "40"},
			{"T1", "2026-05-01", "9"},
			{"T1", "yesterday", "9"},
			{"T1", "2026-06-12", "lots"},
		},
		WaterRange: {
			{"T1", "2026-06-10", "27.5", "", "6.2", "", "Optimal"},
			{"T1", "2026-06-11", "28", "7.1", "bad"},
		},
		HealthRange: {
			{"T1", "2026-06-10", "3", "predation", "Warning"},
			{"T1", "2026-06-11", "2.5"},
		},
		CostsRange: {
			{"T1", "2026-06-10", "150.75", "feed"},
		},
		SalesRange: {
			{"T1", "2026-06-12", "80", "6.5"},
			{"T1", "2026-06-12", "80"},
		},
	}}
	source := NewRecordSource(repo, nil)

	records, err := source.UnitRecords(context.Background(), "T1", day(1).Add(9*time.Hour), day(15))
	require.NoError(t, err)

	require.Len(t, records.Feedings, 2)
	assert.Equal(t, models.FeedingRecord{UnitID: "T1", Date: day(10), QuantityKg: 12.5, Appetite: 4}, records.Feedings[0])
	assert.Equal(t, day(11), records.Feedings[1].Date)
	assert.Zero(t, records.Feedings[1].Appetite)

	require.Len(t, records.Water, 1)
	reading := records.Water[0]
	require.NotNil(t, reading.TemperatureC)
	assert.InDelta(t, 27.5, *reading.TemperatureC, 1e-9)
	assert.Nil(t, reading.PH)
	require.NotNil(t, reading.DissolvedOxygen)
	assert.InDelta(t, 6.2, *reading.DissolvedOxygen, 1e-9)
	assert.Equal(t, models.ReadingOptimal, reading.Status)

	require.Len(t, records.Health, 1)
	assert.Equal(t, 3, records.Health[0].Mortality)
	assert.Equal(t, "predation", records.Health[0].Cause)
	assert.Equal(t, models.HealthWarning, records.Health[0].Status)

	require.Len(t, records.Costs, 1)
	assert.InDelta(t, 150.75, records.Costs[0].Amount, 1e-9)

	require.Len(t, records.Sales, 1)
	assert.InDelta(t, 6.5, records.Sales[0].PricePerKg, 1e-9)
}

func TestUnitRecordsSkipsNonFiniteNumbers(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		FeedingRange: {
			{"T1", "2026-06-08", "Inf"},
			{"T1", "2026-06-09", "NaN"},
			{"T1", "2026-06-10", "1e400"},
			{"T1", "2026-06-11", "12"},
		},
		WaterRange: {
			{"T1", "2026-06-10", "-Inf", "7", "6", "", "optimal"},
			{"T1", "2026-06-11", "27", "7", "6", "", "optimal"},
		},
		CostsRange: {
			{"T1", "2026-06-10", "+Inf", "feed"},
		},
	}}
	source := NewRecordSource(repo, nil)

	records, err := source.UnitRecords(context.Background(), "T1", day(1), day(15))
	require.NoError(t, err)

	require.Len(t, records.Feedings, 1)
	assert.InDelta(t, 12.0, records.Feedings[0].QuantityKg, 1e-9)
	require.Len(t, records.Water, 1)
	assert.Equal(t, day(11), records.Water[0].Date)
	assert.Empty(t, records.Costs)
}

func TestFarmRecords(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		FeedingRange: {
			{"T1", "2026-06-10", "12"},
			{"T2", "2026-06-10", "30"},
			{"T2", "2026-06-11", "31"},
			{"X9", "2026-06-11", "99"},
		},
		HealthRange: {
			{"T2", "2026-06-10", "4", "", "alert"},
		},
	}}
	source := NewRecordSource(repo, nil)

	records, err := source.FarmRecords(context.Background(), []string{"T1", "T2", "T3"}, day(1), day(15))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Len(t, records["T1"].Feedings, 1)
	assert.Len(t, records["T2"].Feedings, 2)
	assert.Len(t, records["T2"].Health, 1)
	assert.Empty(t, records["T3"].Feedings)
	assert.NotContains(t, records, "X9")

	t.Run("each range is read once per call", func(t *testing.T) {
		assert.Equal(t, map[string]int{
			FeedingRange: 1,
			WaterRange:   1,
			HealthRange:  1,
			CostsRange:   1,
			SalesRange:   1,
		}, repo.reads)
	})

	t.Run("no units reads nothing", func(t *testing.T) {
		empty := &fakeRepository{}
		records, err := NewRecordSource(empty, nil).FarmRecords(context.Background(), nil, day(1), day(15))
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, empty.reads)
	})
}

func TestUnitRecordsUnformattedNumbers(t *testing.T) {
	repo := &fakeRepository{ranges: map[string][][]interface{}{
		HealthRange: {
			{"T1", "2026-06-10", float64(1000000), "flood", "alert"},
		},
		SalesRange: {
			{"T1", "2026-06-10", 250.5, 6.25},
		},
	}}

	records, err := NewRecordSource(repo, nil).UnitRecords(context.Background(), "T1", day(1), day(15))
	require.NoError(t, err)

	require.Len(t, records.Health, 1)
	assert.Equal(t, 1000000, records.Health[0].Mortality)
	require.Len(t, records.Sales, 1)
	assert.InDelta(t, 250.5, records.Sales[0].QuantityKg, 1e-9)
}

func TestUnitRecordsReadFailure(t *testing.T) {
	source := NewRecordSource(&fakeRepository{err: errors.New("quota exceeded")}, nil)

	_, err := source.UnitRecords(context.Background(), "T1", day(1), day(15))
	require.Error(t, err)
	assert.ErrorContains(t, err, "unit T1")
	assert.ErrorContains(t, err, "quota exceeded")
}
