package shift

import "time"

// Shift is one work period. A shift with no end time is the session's
// active shift; there is at most one. The derived columns (hours_worked,
// miles_driven, day_total, hourly_pay) are recomputed on every accepted
// mutation, never patched directly.
type Shift struct {
	ID            string     `json:"id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	HoursWorked   *float64   `json:"hours_worked"`
	OdometerStart int        `json:"odometer_start"`
	OdometerEnd   *int       `json:"odometer_end"`
	MilesDriven   *int       `json:"miles_driven"`
	Earnings      float64    `json:"earnings"`
	Tips          float64    `json:"tips"`
	GasCost       float64    `json:"gas_cost"`
	DayTotal      float64    `json:"day_total"`
	HourlyPay     *float64   `json:"hourly_pay"`
	Notes         *string    `json:"notes"`
}

type StartShiftRequest struct {
	OdometerStart *int `json:"odometer_start"`
}

type EndShiftRequest struct {
	OdometerEnd *int     `json:"odometer_end"`
	Earnings    *float64 `json:"earnings"`
	Tips        *float64 `json:"tips"`
	GasCost     *float64 `json:"gas_cost"`
	Notes       *string  `json:"notes"`
}

// UpdateShiftRequest patches individual fields; absent fields keep their
// current values.
type UpdateShiftRequest struct {
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	OdometerStart *int       `json:"odometer_start"`
	OdometerEnd   *int       `json:"odometer_end"`
	Earnings      *float64   `json:"earnings"`
	Tips          *float64   `json:"tips"`
	GasCost       *float64   `json:"gas_cost"`
	Notes         *string    `json:"notes"`
}

// ListFilter narrows and orders the shift listing.
type ListFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
	Sort   string
	Order  string
}
