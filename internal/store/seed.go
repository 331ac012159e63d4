package store

import (
	"context"
	"database/sql"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	seedStartingOdometer = 163000
	seedDays             = 90
	seedShiftProbability = 0.7
)

// Every new session is seeded from the same PRNG seed, so two fresh
// sessions always start from an identical dataset.
const seedSource = 163

type seedMaintenance struct {
	name            string
	interval        int
	maxRandomOffset int
	notes           string
}

var seedMaintenanceConfigs = []seedMaintenance{
	{name: "Oil Change", interval: 3000, maxRandomOffset: 2900, notes: "Synthetic"},
	{name: "Tire Rotation", interval: 5000, maxRandomOffset: 4900},
	{name: "Brake Inspection", interval: 10000, maxRandomOffset: 9900},
}

// SeedDemoData fills a freshly created session database with ninety days
// of plausible delivery shifts and a starter set of maintenance items.
func SeedDemoData(ctx context.Context, db *sql.DB, now time.Time) error {
	rng := rand.New(rand.NewSource(seedSource))

	odometer, err := seedShifts(ctx, db, rng, now)
	if err != nil {
		return err
	}
	return seedMaintenanceItems(ctx, db, rng, odometer)
}

func seedShifts(ctx context.Context, db *sql.DB, rng *rand.Rand, now time.Time) (int, error) {
	odometer := seedStartingOdometer
	day := now.AddDate(0, 0, -seedDays)

	for !day.After(now) {
		if rng.Float64() < seedShiftProbability {
			var err error
			odometer, err = insertSeedShift(ctx, db, rng, day, odometer)
			if err != nil {
				return 0, err
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return odometer, nil
}

func insertSeedShift(ctx context.Context, db *sql.DB, rng *rand.Rand, day time.Time, odometer int) (int, error) {
	startHour := 7 + rng.Intn(8)
	startMinute := rng.Intn(60)
	hoursWorked := round2(7.0 + rng.Float64()*1.75)
	miles := 80 + rng.Intn(81)
	earnings := round2(30.0 + rng.Float64()*30.0)
	tips := round2(35.0 + rng.Float64()*50.0)
	gasCost := round2(float64(miles) * (0.08 + rng.Float64()*0.07))

	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, time.UTC)
	end := start.Add(time.Duration(hoursWorked * float64(time.Hour))).Truncate(time.Second)
	odometerEnd := odometer + miles
	dayTotal := round2(earnings + tips - gasCost)
	hourlyPay := round2(dayTotal / hoursWorked)

	_, err := db.ExecContext(ctx, `
		INSERT INTO shifts (id, start_time, end_time, hours_worked, odometer_start, odometer_end, miles_driven, earnings, tips, gas_cost, day_total, hourly_pay, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NULL)
	`, uuid.NewString(), start, end, hoursWorked, odometer, odometerEnd, miles, earnings, tips, gasCost, dayTotal, hourlyPay)
	if err != nil {
		return 0, err
	}
	return odometerEnd, nil
}

func seedMaintenanceItems(ctx context.Context, db *sql.DB, rng *rand.Rand, currentMileage int) error {
	for _, cfg := range seedMaintenanceConfigs {
		lastService := currentMileage - (100 + rng.Intn(cfg.maxRandomOffset-100))

		var notes any
		if cfg.notes != "" {
			notes = cfg.notes
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO maintenance_items (id, name, mileage_interval, last_service_mileage, enabled, notes)
			VALUES ($1,$2,$3,$4,TRUE,$5)
		`, uuid.NewString(), cfg.name, cfg.interval, lastService, notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
