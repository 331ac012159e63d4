package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/store"
)

var nowFn = time.Now

// Summary aggregates the closed shifts inside a reporting window.
type Summary struct {
	ShiftCount    int     `json:"shift_count"`
	TotalEarnings float64 `json:"total_earnings"`
	TotalMiles    int     `json:"total_miles"`
	TotalHours    float64 `json:"total_hours"`
	AvgHourlyRate float64 `json:"avg_hourly_rate"`
}

// Period is a half-open reporting window. A nil bound leaves that side
// unbounded.
type Period struct {
	Start *time.Time
	End   *time.Time
}

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// ParsePeriod maps the period query parameters onto a window. "month"
// covers the current UTC calendar month, "all" is unbounded, and
// "custom" reads explicit start/end bounds.
func ParsePeriod(period, start, end string) (Period, error) {
	switch period {
	case "", "month":
		now := nowFn().UTC()
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		return Period{Start: &from, End: &to}, nil
	case "all":
		return Period{}, nil
	case "custom":
		from, err := parseBound("start", start)
		if err != nil {
			return Period{}, err
		}
		to, err := parseBound("end", end)
		if err != nil {
			return Period{}, err
		}
		if from != nil && to != nil && to.Before(*from) {
			return Period{}, apperror.Validation("start must not be after end")
		}
		if to != nil {
			// Bounds are inclusive dates; the window end is exclusive.
			bumped := to.Add(24 * time.Hour)
			to = &bumped
		}
		return Period{Start: from, End: to}, nil
	default:
		return Period{}, apperror.Validation("unknown period %q", period)
	}
}

func parseBound(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, dateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation("invalid %s date: %q", name, raw)
}

type Service struct {
	store store.Provider
}

func NewService(provider store.Provider) *Service {
	return &Service{store: provider}
}

// Compute folds the closed shifts whose worked interval overlaps the
// window into a single summary.
func (s *Service) Compute(ctx context.Context, sessionID string, p Period) (Summary, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	query := `
		SELECT COALESCE(day_total, 0), COALESCE(miles_driven, 0), COALESCE(hours_worked, 0)
		FROM shifts WHERE end_time IS NOT NULL`
	var clauses []string
	var args []any
	if p.End != nil {
		args = append(args, p.End.UTC())
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if p.Start != nil {
		args = append(args, p.Start.UTC())
		clauses = append(clauses, fmt.Sprintf("end_time > $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	var sum Summary
	for rows.Next() {
		var dayTotal, hours float64
		var miles int
		if err := rows.Scan(&dayTotal, &miles, &hours); err != nil {
			return Summary{}, err
		}
		sum.ShiftCount++
		sum.TotalEarnings += dayTotal
		sum.TotalMiles += miles
		sum.TotalHours += hours
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if sum.TotalHours > 0 {
		sum.AvgHourlyRate = sum.TotalEarnings / sum.TotalHours
	}
	return sum, nil
}
