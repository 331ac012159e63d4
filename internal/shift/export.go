package shift

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/dylan-park/LastMile/internal/apperror"
)

// The CSV header is a committed external contract.
var csvHeader = []string{
	"ID", "Start Time", "End Time", "Odometer Start", "Odometer End",
	"Earnings", "Tips", "Gas Cost", "Hours Worked", "Miles Driven",
	"Day Total", "Hourly Pay", "Notes",
}

const csvTimeLayout = "2006-01-02 15:04:05"

var exportTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseExportBound parses an optional start/end query parameter. Empty
// means unbounded; anything else must be a timestamp.
func ParseExportBound(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range exportTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation("invalid %s timestamp: %q", name, raw)
}

// Export serializes the session's closed shifts with start_time inside
// the inclusive [start, end] window, newest first. An empty selection
// still produces the header row.
func (s *Service) Export(ctx context.Context, sessionID string, start, end *time.Time) ([]byte, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE end_time IS NOT NULL`
	var args []any
	if start != nil {
		args = append(args, start.UTC())
		query += ` AND start_time >= $1`
	}
	if end != nil {
		args = append(args, end.UTC())
		query += ` AND start_time <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		if err := w.Write(csvRecord(sh)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func csvRecord(sh Shift) []string {
	return []string{
		sh.ID,
		sh.StartTime.UTC().Format(csvTimeLayout),
		formatTime(sh.EndTime),
		strconv.Itoa(sh.OdometerStart),
		formatInt(sh.OdometerEnd),
		formatFloat(sh.Earnings),
		formatFloat(sh.Tips),
		formatFloat(sh.GasCost),
		formatFloatPtr(sh.HoursWorked),
		formatInt(sh.MilesDriven),
		formatFloat(sh.DayTotal),
		formatFloatPtr(sh.HourlyPay),
		stringOrEmpty(sh.Notes),
	}
}

// Shortest round-trip float formatting keeps odometer and money values
// re-importable without loss.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatTime(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.UTC().Format(csvTimeLayout)
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
