package shift

import (
	"strings"
	"time"

	"github.com/dylan-park/LastMile/internal/apperror"
)

func validateOdometer(start, end int) error {
	if end < start {
		return apperror.Validation("invalid odometer reading: end (%d) must be greater than or equal to start (%d)", end, start)
	}
	return nil
}

func validateMonetary(name string, value float64) error {
	if value < 0 {
		return apperror.Validation("invalid monetary value: %s must be non-negative", name)
	}
	return nil
}

func validateMonetaryValues(earnings, tips, gasCost float64) error {
	if err := validateMonetary("earnings", earnings); err != nil {
		return err
	}
	if err := validateMonetary("tips", tips); err != nil {
		return err
	}
	return validateMonetary("gas_cost", gasCost)
}

// validateTimes enforces the one datetime invariant: when both ends are
// set, end must be strictly after start. The message names whichever side
// the caller just edited.
func validateTimes(start, end time.Time, endEdited bool) error {
	if end.After(start) {
		return nil
	}
	if endEdited {
		return apperror.Validation("end time must be after start time")
	}
	return apperror.Validation("start time must be before end time")
}

// sanitizeNotes trims whitespace; an effectively empty note is stored as
// no note at all.
func sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Derived-field arithmetic from the shift's raw columns.

func calculateMiles(odometerStart, odometerEnd int) int {
	return odometerEnd - odometerStart
}

func calculateHours(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / 3600
}

func calculateDayTotal(earnings, tips, gasCost float64) float64 {
	return earnings + tips - gasCost
}

func calculateHourlyPay(dayTotal, hoursWorked float64) *float64 {
	if hoursWorked <= 0 {
		return nil
	}
	pay := dayTotal / hoursWorked
	return &pay
}
