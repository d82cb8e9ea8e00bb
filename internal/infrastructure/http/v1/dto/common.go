// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"mfgplan/internal/core/apperror"
	"mfgplan/internal/core/types"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// parseDate parses an optional date field. Empty means not set.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid date").
			WithDetail("field", field).
			WithDetail("value", *raw)
	}
	return &t, nil
}

// parseRange parses the fromDate and toDate fields.
func parseRange(from, to *string) (*time.Time, *time.Time, error) {
	f, err := parseDate("fromDate", from)
	if err != nil {
		return nil, nil, err
	}
	t, err := parseDate("toDate", to)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CoverageDays converts a coverage into a JSON-safe number. Unbounded coverage
// becomes infiniteDays.
func CoverageDays(c types.Coverage, infiniteDays float64) float64 {
	return c.Capped(infiniteDays)
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
