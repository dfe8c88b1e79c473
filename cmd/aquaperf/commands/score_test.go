package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

const farmInput = `{
  "farm_id": "F1",
  "now": "2026-06-30T00:00:00Z",
  "units": [
    {
      "unit": {"id": "T1", "farm_id": "F1", "population": 1000, "average_mass_kg": 0.3,
               "introduced_at": "2026-04-01T00:00:00Z", "status": "active"},
      "records": {
        "feedings": [
          {"unit_id": "T1", "date": "2026-06-20T00:00:00Z", "quantity_kg": 12},
          {"unit_id": "T1", "date": "2026-06-21T00:00:00Z", "quantity_kg": 12}
        ]
      }
    },
    {
      "unit": {"id": "T2", "farm_id": "F1", "status": "empty", "introduced_at": "2026-04-01T00:00:00Z"},
      "records": {}
    }
  ]
}`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "farm.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreJSON(t *testing.T) {
	out, err := runRoot(t, "score", "--input", writeInput(t, farmInput))
	require.NoError(t, err)

	var report models.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "F1", report.FarmID)
	require.Len(t, report.Snapshots, 2)
	assert.Equal(t, "T1", report.Snapshots[0].UnitID)
	require.Len(t, report.Comparisons, 1)
	assert.Equal(t, "T1", report.Comparisons[0].UnitID)
	assert.Equal(t, 1, report.Comparisons[0].Rank)
	assert.Equal(t, "T1", report.Benchmark.BestPerformer)
	require.Len(t, report.Units, 2)
	assert.Equal(t, report.Snapshots[0].Score, report.Units[0].Breakdown.Score)
}

func TestScoreNowFlagOverridesFile(t *testing.T) {
	out, err := runRoot(t, "score", "--input", writeInput(t, farmInput), "--now", "2026-07-15T00:00:00Z")
	require.NoError(t, err)

	var report models.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2026, report.GeneratedAt.Year())
	assert.Equal(t, 15, report.GeneratedAt.Day())
}

func TestScoreTable(t *testing.T) {
	out, err := runRoot(t, "score", "--input", writeInput(t, farmInput), "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "T2")
	assert.Contains(t, out, "best: T1")
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing input flag", []string{"score"}},
		{"unknown format", []string{"score", "--input", writeInput(t, farmInput), "--format", "xml"}},
		{"unknown field", []string{"score", "--input", writeInput(t, `{"farm": "F1"}`)}},
		{"bad now", []string{"score", "--input", writeInput(t, farmInput), "--now", "tomorrow"}},
		{"missing file", []string{"score", "--input", filepath.Join(t.TempDir(), "nope.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
