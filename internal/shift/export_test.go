package shift

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/dylan-park/LastMile/internal/apperror"
)

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return records
}

func TestExportEmptySessionIsHeaderOnly(t *testing.T) {
	p := testProvider(t)
	svc := NewService(p)

	data, err := svc.Export(context.Background(), "s1", nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records := parseCSV(t, data)
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
	if records[0][0] != "ID" || records[0][1] != "Start Time" || records[0][len(records[0])-1] != "Notes" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestExportRowsAndRoundTrip(t *testing.T) {
	p := testProvider(t)
	svc := NewService(p)
	sh := closedShift(t, svc, time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), 163000, 163120)
	if _, err := svc.Update(context.Background(), "s1", sh.ID, UpdateShiftRequest{Earnings: floatPtr(47.13)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	data, err := svc.Export(context.Background(), "s1", nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records := parseCSV(t, data)
	if len(records) != 2 {
		t.Fatalf("expected one data row, got %d", len(records)-1)
	}

	row := records[1]
	if row[1] != "2026-08-01 09:00:00" || row[2] != "2026-08-01 17:00:00" {
		t.Fatalf("unexpected timestamps: %v", row[1:3])
	}

	// Odometer and money fields survive parsing exactly.
	if v, err := strconv.Atoi(row[3]); err != nil || v != 163000 {
		t.Fatalf("odometer start: %v %v", row[3], err)
	}
	if v, err := strconv.Atoi(row[4]); err != nil || v != 163120 {
		t.Fatalf("odometer end: %v %v", row[4], err)
	}
	if v, err := strconv.ParseFloat(row[5], 64); err != nil || v != 47.13 {
		t.Fatalf("earnings: %v %v", row[5], err)
	}
}

func TestExportQuotesNotes(t *testing.T) {
	p := testProvider(t)
	svc := NewService(p)
	sh := closedShift(t, svc, time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), 1000, 1100)
	if _, err := svc.Update(context.Background(), "s1", sh.ID, UpdateShiftRequest{
		Notes: strPtr(`late start, "double" orders` + "\nsecond line"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	data, err := svc.Export(context.Background(), "s1", nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records := parseCSV(t, data)
	got := records[1][len(records[1])-1]
	want := `late start, "double" orders` + "\nsecond line"
	if got != want {
		t.Fatalf("notes mangled by quoting: %q", got)
	}
}

func TestExportDateBounds(t *testing.T) {
	p := testProvider(t)
	svc := NewService(p)
	closedShift(t, svc, time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), 1000, 1100)
	closedShift(t, svc, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), 1100, 1200)

	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	data, err := svc.Export(context.Background(), "s1", &start, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := len(parseCSV(t, data)) - 1; got != 1 {
		t.Fatalf("expected 1 row after start bound, got %d", got)
	}

	// A start past every shift still yields the header.
	start = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err = svc.Export(context.Background(), "s1", &start, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := len(parseCSV(t, data)); got != 1 {
		t.Fatalf("expected header only, got %d rows", got)
	}
}

func TestExportExcludesActiveShift(t *testing.T) {
	p := testProvider(t)
	svc := NewService(p)
	setNow(t, time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	if _, err := svc.Start(context.Background(), "s1", StartShiftRequest{OdometerStart: intPtr(100)}); err != nil {
		t.Fatalf("start: %v", err)
	}

	data, err := svc.Export(context.Background(), "s1", nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := len(parseCSV(t, data)); got != 1 {
		t.Fatalf("active shift leaked into export")
	}
}

func TestParseExportBound(t *testing.T) {
	if b, err := ParseExportBound("start", ""); err != nil || b != nil {
		t.Fatalf("empty bound should be unbounded: %v %v", b, err)
	}
	if b, err := ParseExportBound("start", "2026-08-01"); err != nil || b == nil {
		t.Fatalf("date-only bound: %v %v", b, err)
	}
	if b, err := ParseExportBound("start", "2026-08-01T09:30:00Z"); err != nil || !b.Equal(time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 bound: %v %v", b, err)
	}
	_, err := ParseExportBound("start", "next tuesday")
	expectKind(t, err, apperror.KindValidation)
}
