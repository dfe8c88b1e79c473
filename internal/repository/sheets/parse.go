package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if v, ok := row[i].(float64); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(dateLayout, value)
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(value)
}

// parseFloat accepts finite numbers only; "NaN", "Inf" and overflowing
// values are rejected.
func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite numeric value %q", value)
	}
	return v, nil
}

// parseOptionalFloat returns nil for a blank cell.
func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
