package shift

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/store"
)

var nowFn = time.Now

type Service struct {
	store store.Provider
}

func NewService(provider store.Provider) *Service {
	return &Service{store: provider}
}

const shiftColumns = `id, start_time, end_time, hours_worked, odometer_start, odometer_end, miles_driven, earnings, tips, gas_cost, day_total, hourly_pay, notes`

var sortColumns = map[string]string{
	"start_time":     "start_time",
	"end_time":       "end_time",
	"hours_worked":   "hours_worked",
	"odometer_start": "odometer_start",
	"odometer_end":   "odometer_end",
	"miles_driven":   "miles_driven",
	"earnings":       "earnings",
	"tips":           "tips",
	"gas_cost":       "gas_cost",
	"day_total":      "day_total",
}

// Start opens a new shift. At most one shift per session may be active,
// checked inside the same transaction as the insert.
func (s *Service) Start(ctx context.Context, sessionID string, req StartShiftRequest) (Shift, error) {
	if req.OdometerStart == nil {
		return Shift{}, apperror.Validation("odometer_start is required")
	}
	if *req.OdometerStart < 0 {
		return Shift{}, apperror.Validation("odometer reading must be non-negative, got %d", *req.OdometerStart)
	}

	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Shift{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Shift{}, err
	}
	defer tx.Rollback()

	var active int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM shifts WHERE end_time IS NULL`).Scan(&active); err != nil {
		return Shift{}, err
	}
	if active > 0 {
		return Shift{}, apperror.Conflict("active shift already exists")
	}

	created := Shift{
		ID:            uuid.NewString(),
		StartTime:     nowFn().UTC().Truncate(time.Second),
		OdometerStart: *req.OdometerStart,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO shifts (id, start_time, odometer_start, earnings, tips, gas_cost, day_total)
		VALUES ($1,$2,$3,0,0,0,0)
	`, created.ID, created.StartTime, created.OdometerStart)
	if err != nil {
		return Shift{}, err
	}
	if err := tx.Commit(); err != nil {
		return Shift{}, err
	}
	return created, nil
}

// End closes a shift: records the final odometer and money fields and
// computes every derived column in the same update.
func (s *Service) End(ctx context.Context, sessionID, id string, req EndShiftRequest) (Shift, error) {
	if req.OdometerEnd == nil {
		return Shift{}, apperror.Validation("odometer_end is required")
	}

	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Shift{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Shift{}, err
	}
	defer tx.Rollback()

	sh, err := getShift(ctx, tx, id)
	if err != nil {
		return Shift{}, err
	}

	if err := validateOdometer(sh.OdometerStart, *req.OdometerEnd); err != nil {
		return Shift{}, err
	}

	earnings := valueOr(req.Earnings, 0)
	tips := valueOr(req.Tips, 0)
	gasCost := valueOr(req.GasCost, 0)
	if err := validateMonetaryValues(earnings, tips, gasCost); err != nil {
		return Shift{}, err
	}
	notes := sanitizeNotes(req.Notes)

	now := nowFn().UTC().Truncate(time.Second)
	miles := calculateMiles(sh.OdometerStart, *req.OdometerEnd)
	hours := calculateHours(sh.StartTime, now)
	dayTotal := calculateDayTotal(earnings, tips, gasCost)
	hourlyPay := calculateHourlyPay(dayTotal, hours)

	_, err = tx.ExecContext(ctx, `
		UPDATE shifts
		SET end_time=$1, odometer_end=$2, miles_driven=$3, hours_worked=$4,
		    earnings=$5, tips=$6, gas_cost=$7, day_total=$8, hourly_pay=$9, notes=$10
		WHERE id=$11
	`, now, *req.OdometerEnd, miles, hours, earnings, tips, gasCost, dayTotal, ptrOrNil(hourlyPay), ptrOrNil(notes), id)
	if err != nil {
		return Shift{}, err
	}

	updated, err := getShift(ctx, tx, id)
	if err != nil {
		return Shift{}, err
	}
	if err := tx.Commit(); err != nil {
		return Shift{}, err
	}
	return updated, nil
}

// Update merges a field patch into the stored record, rejects anything
// that would break a record invariant, and recomputes the derived
// columns. A rejected edit leaves the row exactly as it was.
func (s *Service) Update(ctx context.Context, sessionID, id string, patch UpdateShiftRequest) (Shift, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Shift{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Shift{}, err
	}
	defer tx.Rollback()

	sh, err := getShift(ctx, tx, id)
	if err != nil {
		return Shift{}, err
	}

	startTime := sh.StartTime
	if patch.StartTime != nil {
		startTime = patch.StartTime.UTC().Truncate(time.Second)
	}
	endTime := sh.EndTime
	if patch.EndTime != nil {
		t := patch.EndTime.UTC().Truncate(time.Second)
		endTime = &t
	}
	odometerStart := sh.OdometerStart
	if patch.OdometerStart != nil {
		odometerStart = *patch.OdometerStart
	}
	odometerEnd := sh.OdometerEnd
	if patch.OdometerEnd != nil {
		odometerEnd = patch.OdometerEnd
	}
	earnings := valueOr(patch.Earnings, sh.Earnings)
	tips := valueOr(patch.Tips, sh.Tips)
	gasCost := valueOr(patch.GasCost, sh.GasCost)
	notes := sh.Notes
	if patch.Notes != nil {
		notes = sanitizeNotes(patch.Notes)
	}

	if odometerStart < 0 {
		return Shift{}, apperror.Validation("odometer reading must be non-negative, got %d", odometerStart)
	}
	if err := validateMonetaryValues(earnings, tips, gasCost); err != nil {
		return Shift{}, err
	}
	if odometerEnd != nil {
		if err := validateOdometer(odometerStart, *odometerEnd); err != nil {
			return Shift{}, err
		}
	}
	if endTime != nil {
		if err := validateTimes(startTime, *endTime, patch.EndTime != nil); err != nil {
			return Shift{}, err
		}
	}

	var miles *int
	if odometerEnd != nil {
		m := calculateMiles(odometerStart, *odometerEnd)
		miles = &m
	}
	var hours *float64
	if endTime != nil {
		h := calculateHours(startTime, *endTime)
		hours = &h
	}
	dayTotal := calculateDayTotal(earnings, tips, gasCost)
	var hourlyPay *float64
	if hours != nil {
		hourlyPay = calculateHourlyPay(dayTotal, *hours)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shifts
		SET start_time=$1, end_time=$2, odometer_start=$3, odometer_end=$4,
		    miles_driven=$5, hours_worked=$6, earnings=$7, tips=$8, gas_cost=$9,
		    day_total=$10, hourly_pay=$11, notes=$12
		WHERE id=$13
	`, startTime, ptrOrNil(endTime), odometerStart, ptrOrNil(odometerEnd),
		ptrOrNil(miles), ptrOrNil(hours), earnings, tips, gasCost,
		dayTotal, ptrOrNil(hourlyPay), ptrOrNil(notes), id)
	if err != nil {
		return Shift{}, err
	}

	updated, err := getShift(ctx, tx, id)
	if err != nil {
		return Shift{}, err
	}
	if err := tx.Commit(); err != nil {
		return Shift{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, sessionID, id string) error {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM shifts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("shift not found")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, sessionID, id string) (Shift, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return Shift{}, err
	}
	return getShift(ctx, db, id)
}

// Active returns the session's open shift, or nil when every shift is
// closed.
func (s *Service) Active(ctx context.Context, sessionID string) (*Shift, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE end_time IS NULL
		ORDER BY start_time DESC LIMIT 1
	`)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// List returns shifts matching the filter, newest first unless the
// caller picks another sort.
func (s *Service) List(ctx context.Context, sessionID string, f ListFilter) ([]Shift, error) {
	db, err := s.store.DB(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts`
	var clauses []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(COALESCE(notes,'')) LIKE $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, f.From.UTC())
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, f.To.UTC())
		clauses = append(clauses, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	sortCol, ok := sortColumns[f.Sort]
	if !ok {
		sortCol = "start_time"
	}
	direction := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		direction = "ASC"
	}
	query += " ORDER BY " + sortCol + " " + direction

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getShift(ctx context.Context, q store.Querier, id string) (Shift, error) {
	row := q.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id=$1`, id)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Shift{}, apperror.NotFound("shift not found")
	}
	return sh, err
}

func scanShift(row rowScanner) (Shift, error) {
	var sh Shift
	var endTime sql.NullTime
	var hours, hourlyPay sql.NullFloat64
	var odometerEnd, miles sql.NullInt64
	var notes sql.NullString

	err := row.Scan(&sh.ID, &sh.StartTime, &endTime, &hours, &sh.OdometerStart,
		&odometerEnd, &miles, &sh.Earnings, &sh.Tips, &sh.GasCost, &sh.DayTotal,
		&hourlyPay, &notes)
	if err != nil {
		return Shift{}, err
	}

	sh.StartTime = sh.StartTime.UTC()
	if endTime.Valid {
		t := endTime.Time.UTC()
		sh.EndTime = &t
	}
	if hours.Valid {
		sh.HoursWorked = &hours.Float64
	}
	if odometerEnd.Valid {
		v := int(odometerEnd.Int64)
		sh.OdometerEnd = &v
	}
	if miles.Valid {
		v := int(miles.Int64)
		sh.MilesDriven = &v
	}
	if hourlyPay.Valid {
		sh.HourlyPay = &hourlyPay.Float64
	}
	if notes.Valid {
		sh.Notes = &notes.String
	}
	return sh, nil
}

func valueOr[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}

// The driver needs typed NULLs, not typed nil pointers wrapped in any.

func ptrOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
